package rules

import "github.com/born-ml/chainrules/internal/ir"

// Hyperbolic functions:
//
//	d(sinh(x))/dx = cosh(x)
//	d(cosh(x))/dx = sinh(x)
//	d(tanh(x))/dx = 1 - tanh(x)²
func hyperbolicRules() []*Rule {
	return []*Rule{
		scalarRule(Sig("cosh", dNum), nil,
			call(ir.OpCosh, x()),
			call(ir.OpSinh, x())),
		scalarRule(Sig("sinh", dNum), nil,
			call(ir.OpSinh, x()),
			call(ir.OpCosh, x())),
		scalarRule(Sig("tanh", dNum), nil,
			call(ir.OpTanh, x()),
			ir.Sub(one(), sq(omega()))),
	}
}
