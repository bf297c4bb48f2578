package rules

import (
	"math"

	"github.com/born-ml/chainrules/internal/ir"
)

func arithRules() []*Rule {
	return []*Rule{
		// n-ary +: the tangent is the sum of tangents, the cotangent is
		// broadcast to every slot.
		stamp(&Rule{
			Sig:          VarSig("+", dNum),
			Primal:       ir.Add(ir.Args(0)),
			Forward:      ir.Add(ir.Tangents(0)),
			PullbackRest: ct(),
			PartialsRest: one(),
		}, 1),
		scalarRule(Sig("-", dNum, dNum), nil,
			ir.Sub(x(), y()),
			one(), c(-1)),
		scalarRule(Sig("-", dNum), nil,
			ir.Neg(x()),
			c(-1)),

		// x*y: dΩ = dx·y + x·dy, (x̄, ȳ) = (dΩ·conj(y), conj(x)·dΩ).
		customRule(Sig("*", dNum, dNum), nil,
			ir.Mul(x(), y()),
			call(ir.OpMuladd, dt(0), y(), ir.Mul(x(), dt(1))),
			ir.Mul(ct(), ir.Conj(y())),
			ir.Mul(ir.Conj(x()), ct())).withPartials(y(), x()),
		customRule(Sig("*", dNum, dNum, dNum), nil,
			ir.Mul(x(), y(), z()),
			ir.Add(ir.Mul(dt(0), y(), z()), ir.Mul(x(), dt(1), z()), ir.Mul(x(), y(), dt(2))),
			ir.Mul(ct(), ir.Conj(ir.Mul(y(), z()))),
			ir.Mul(ir.Conj(x()), ct(), ir.Conj(z())),
			ir.Mul(ir.Conj(ir.Mul(x(), y())), ct())).withPartials(ir.Mul(y(), z()), ir.Mul(x(), z()), ir.Mul(x(), y())),
		// Four or more factors: the pullback splits off the first three.
		stamp(&Rule{
			Sig:     VarSig("*", dNum, dNum, dNum, dNum),
			Primal:  ir.Mul(ir.Args(0)),
			Forward: ir.Add(ir.Each(0, ir.Mul(ir.SlotTangent(), ir.Others(0)))),
			Split:   &Split{Head: 3, Callee: ir.OpMul},
		}, 1),

		scalarRule(Sig("/", dNum, dNum), nil,
			ir.Div(x(), y()),
			ir.Div(one(), y()),
			ir.Neg(ir.Div(omega(), y()))),
		// x \ y = y / x
		scalarRule(Sig(`\`, dNum, dNum), nil,
			ir.Div(y(), x()),
			ir.Neg(ir.Div(omega(), x())),
			ir.Div(one(), x())),
		scalarRule(Sig("inv", dNum), nil,
			ir.Inv(x()),
			ir.Neg(sq(omega()))),

		scalarRule(Sig("muladd", dNum, dNum, dNum), nil,
			call(ir.OpMuladd, x(), y(), z()),
			y(), x(), one()),
		scalarRule(Sig("fma", dNum, dNum, dNum), nil,
			call(ir.OpFma, x(), y(), z()),
			y(), x(), one()),

		scalarRule(Sig("max", dReal, dReal),
			setup(let("gt", call(ir.OpGt, x(), y()))),
			call(ir.OpMax, x(), y()),
			ref("gt"), ir.Not(ref("gt"))),
		scalarRule(Sig("min", dReal, dReal),
			setup(let("gt", call(ir.OpGt, x(), y()))),
			call(ir.OpMin, x(), y()),
			ir.Not(ref("gt")), ref("gt")),

		// mod is discontinuous where x/y is an integer; both partials are
		// NaN there.
		scalarRule(Sig("mod", dReal, dReal),
			setup(
				let("u", ir.Div(x(), y())),
				let("isint", call(ir.OpIsInteger, ref("u"))),
			),
			call(ir.OpMod, x(), y()),
			ifelse(ref("isint"), c(math.NaN()), one()),
			ifelse(ref("isint"), c(math.NaN()), ir.Neg(call(ir.OpFloor, ref("u"))))),
		// The rounding mode takes no tangent.
		scalarRule(Sig("rem2pi", dReal, dDisc), nil,
			call(ir.OpRem2Pi, x(), y()),
			one(), nil),

		scalarRule(Sig("deg2rad", dNum), nil,
			call(ir.OpDeg2Rad, x()),
			call(ir.OpDeg2Rad, one())),
		scalarRule(Sig("rad2deg", dNum), nil,
			call(ir.OpRad2Deg, x()),
			call(ir.OpRad2Deg, one())),
	}
}
