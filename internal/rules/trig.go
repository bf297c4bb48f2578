package rules

import "github.com/born-ml/chainrules/internal/ir"

// sin and cos share one sincos evaluation:
//
//	d(sin(x))/dx = cos(x)
//	d(cos(x))/dx = -sin(x)
//
// tan reuses its output: d(tan(x))/dx = 1 + tan(x)².
func trigRules() []*Rule {
	return []*Rule{
		scalarRule(Sig("sin", dNum),
			setup(let2("sinx", "cosx", call(ir.OpSinCos, x()))),
			ref("sinx"),
			ref("cosx")),
		scalarRule(Sig("cos", dNum),
			setup(let2("sinx", "cosx", call(ir.OpSinCos, x()))),
			ref("cosx"),
			ir.Neg(ref("sinx"))),
		scalarRule(Sig("tan", dNum), nil,
			call(ir.OpTan, x()),
			ir.Add(one(), sq(omega()))),
	}
}

// Inverse functions:
//
//	d(acos(x))/dx = -1/√(1-x²)
//	d(asin(x))/dx =  1/√(1-x²)
//	d(atan(x))/dx =  1/(1+x²)
//
// Two-argument atan(y, x) with u = x²+y²:
//
//	∂/∂y = x/u, ∂/∂x = -y/u
func inverseTrigRules() []*Rule {
	return []*Rule{
		scalarRule(Sig("acos", dNum), nil,
			call(ir.OpAcos, x()),
			ir.Neg(ir.Inv(call(ir.OpSqrt, ir.Sub(one(), sq(x())))))),
		scalarRule(Sig("asin", dNum), nil,
			call(ir.OpAsin, x()),
			ir.Inv(call(ir.OpSqrt, ir.Sub(one(), sq(x()))))),
		scalarRule(Sig("atan", dNum), nil,
			call(ir.OpAtan, x()),
			ir.Inv(ir.Add(one(), sq(x())))),
		scalarRule(Sig("atan", dReal, dReal),
			setup(let("u", ir.Add(sq(y()), sq(x())))),
			call(ir.OpAtan2, x(), y()),
			ir.Div(y(), ref("u")),
			ir.Neg(ir.Div(x(), ref("u")))),
	}
}
