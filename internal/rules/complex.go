package rules

import "github.com/born-ml/chainrules/internal/ir"

// realValued marks a rule whose output is real for complex inputs too.
func realValued(r *Rule) *Rule {
	r.Codomain = dReal
	return r
}

// Magnitude, phase and conjugation. These are not holomorphic, so the
// complex rules spell out forward and pullback bodies instead of partials.
//
// Wherever a magnitude appears as a denominator it is replaced by 1 at
// exactly zero. The numerator keeps its natural value, so the zero argument
// yields a finite subgradient and never a NaN.
func complexRules() []*Rule {
	return []*Rule{
		// abs: Ω = |x|, dΩ = realdot(sign(x), dx), x̄ = sign(x)·Re(dΩ).
		customRule(Sig("abs", dReal),
			setup(let("signx", call(ir.OpSign, x()))),
			call(ir.OpAbs, x()),
			realDot(ref("signx"), dt(0)),
			ir.Mul(ref("signx"), ir.Re(ct()))).
			withPartials(ref("signx")),
		realValued(customRule(Sig("abs", dCpx),
			setup(let("signx", ir.Div(x(), nonzero(x(), omega())))),
			call(ir.OpAbs, x()),
			realDot(ref("signx"), dt(0)),
			ir.Mul(ref("signx"), ir.Re(ct())))),

		// abs2: Ω = |x|², dΩ = 2·realdot(x, dx), x̄ = 2·Re(dΩ)·x.
		scalarRule(Sig("abs2", dReal), nil,
			call(ir.OpAbs2, x()),
			ir.Mul(c(2), x())),
		realValued(customRule(Sig("abs2", dCpx), nil,
			call(ir.OpAbs2, x()),
			ir.Mul(c(2), realDot(x(), dt(0))),
			ir.Mul(c(2), ir.Re(ct()), x()))),

		customRule(Sig("conj", dNum), nil,
			ir.Conj(x()),
			ir.Conj(dt(0)),
			ir.Conj(ct())),

		// real: x̄ = Re(dΩ) embedded back into the argument's number type.
		realValued(customRule(Sig("real", dNum), nil,
			ir.Re(x()),
			ir.Re(dt(0)),
			ir.Add(ir.Re(ct()), ir.Mul(c(0), x())))),
		realValued(customRule(Sig("imag", dNum), nil,
			ir.Im(x()),
			ir.Im(dt(0)),
			ir.Mul(ir.Re(ct()), ir.I()))),

		// angle: dΩ = Im(conj(x)·dx)/|x|².
		customRule(Sig("angle", dReal), nil,
			call(ir.OpAngle, x()),
			ir.Div(imagConjTimes(x(), dt(0)), nonzero(x(), call(ir.OpAbs2, x()))),
			ir.Div(ir.Add(ir.Neg(ir.Im(ct())), ir.Mul(ir.I(), ir.Re(ct()))), nonzero(x(), x()))),
		realValued(customRule(Sig("angle", dCpx),
			setup(let("n", nonzero(x(), call(ir.OpAbs2, x())))),
			call(ir.OpAngle, x()),
			ir.Div(imagConjTimes(x(), dt(0)), ref("n")),
			ir.Div(ir.Mul(ir.Add(ir.Neg(ir.Im(x())), ir.Mul(ir.I(), ir.Re(x()))), ir.Re(ct())), ref("n")))),

		// sign: Ω = x/|x|, dΩ = Ω·i·Im(conj(Ω)·dx)/|x|.
		customRule(Sig("sign", dReal),
			setup(let("n", nonzero(x(), call(ir.OpAbs, x())))),
			call(ir.OpSign, x()),
			ir.Mul(omega(), ir.Div(imagConjTimes(omega(), dt(0)), ref("n")), ir.I()),
			ir.Mul(omega(), ir.Div(imagConjTimes(omega(), ct()), ref("n")), ir.I())),
		customRule(Sig("sign", dCpx),
			setup(let("n", nonzero(x(), call(ir.OpAbs, x())))),
			ir.Div(x(), ref("n")),
			ir.Mul(omega(), ir.Div(imagConjTimes(omega(), dt(0)), ref("n")), ir.I()),
			ir.Mul(omega(), ir.Div(imagConjTimes(omega(), ct()), ref("n")), ir.I())),

		// hypot(x) = |x|.
		realValued(customRule(Sig("hypot", dNum),
			setup(let("n", nonzero(omega(), omega()))),
			call(ir.OpHypot, x()),
			ir.Div(realDot(x(), dt(0)), ref("n")),
			ir.Mul(ct(), ir.Div(x(), ref("n"))))),
		scalarRule(Sig("hypot", dReal, dReal), nil,
			call(ir.OpHypot, x(), y()),
			ir.Div(x(), omega()),
			ir.Div(y(), omega())),
	}
}
