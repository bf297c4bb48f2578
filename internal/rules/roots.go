package rules

import "github.com/born-ml/chainrules/internal/ir"

// Roots reuse their output:
//
//	d(√x)/dx  = 1/(2√x)
//	d(∛x)/dx  = 1/(3∛x²)
func rootRules() []*Rule {
	return []*Rule{
		scalarRule(Sig("sqrt", dNum), nil,
			call(ir.OpSqrt, x()),
			ir.Inv(ir.Mul(c(2), omega()))),
		scalarRule(Sig("cbrt", dNum), nil,
			call(ir.OpCbrt, x()),
			ir.Inv(ir.Mul(c(3), sq(omega())))),
	}
}
