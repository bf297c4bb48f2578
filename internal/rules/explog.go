package rules

import "github.com/born-ml/chainrules/internal/ir"

func expLogRules() []*Rule {
	return []*Rule{
		// d(exp(x))/dx = exp(x)
		scalarRule(Sig("exp", dNum), nil,
			call(ir.OpExp, x()),
			omega()),
		scalarRule(Sig("exp10", dNum), nil,
			call(ir.OpExp10, x()),
			ir.Mul(omega(), call(ir.OpLog, c(10)))),
		scalarRule(Sig("exp2", dNum), nil,
			call(ir.OpExp2, x()),
			ir.Mul(omega(), call(ir.OpLog, c(2)))),
		// d(expm1(x))/dx = exp(x), not Ω + 1: the sum loses precision near 0.
		scalarRule(Sig("expm1", dNum), nil,
			call(ir.OpExpm1, x()),
			call(ir.OpExp, x())),

		// d(log(x))/dx = 1/x
		scalarRule(Sig("log", dNum), nil,
			call(ir.OpLog, x()),
			ir.Inv(x())),
		scalarRule(Sig("log10", dNum), nil,
			call(ir.OpLog10, x()),
			ir.Div(ir.Inv(x()), call(ir.OpLog, c(10)))),
		scalarRule(Sig("log1p", dNum), nil,
			call(ir.OpLog1p, x()),
			ir.Inv(ir.Add(x(), one()))),
		scalarRule(Sig("log2", dNum), nil,
			call(ir.OpLog2, x()),
			ir.Div(ir.Inv(x()), call(ir.OpLog, c(2)))),
	}
}
