package rules

import (
	"math"

	"github.com/born-ml/chainrules/internal/ir"
)

// powerRules declares x^p for real and for general arguments.
//
// With yox = x^(p-1) computed once and reused for the primal:
//
//	Ω    = x^p at x = 0, else yox·x
//	∂/∂x = p·yox, except at x = 0 with p ≥ 0 where it is 1 (p = 1),
//	       +Inf (0 < p < 1) or 0
//	∂/∂p = Ω·log(x), and 0 at x = 0 with p ≥ 0
//
// Real arguments use log|x| so a negative base never leaves the reals. The
// forward body only reads ∂/∂p when the exponent carries a tangent, which
// skips the logarithm for the common constant-exponent case.
func powerRules() []*Rule {
	return []*Rule{
		powerRule(Sig("^", dReal, dReal), call(ir.OpLog, call(ir.OpAbs, x()))),
		powerRule(Sig("^", dNum, dNum), call(ir.OpLog, x())),
	}
}

func powerRule(sig Signature, logx *ir.Node) *Rule {
	// Away from the origin, or with a negative exponent, the textbook
	// partials hold.
	regular := func() *ir.Node {
		return call(ir.OpOr, ir.Not(ir.IsZero(x())), call(ir.OpLt, y(), c(0)))
	}
	r := customRule(sig,
		setup(
			let("yox", ir.Pow(x(), ir.Sub(y(), one()))),
			let("xp", ifelse(ir.IsZero(x()), ir.Pow(x(), y()), ir.Mul(ref("yox"), x()))),
			let("gx", ifelse(regular(),
				ir.Mul(y(), ref("yox")),
				ifelse(call(ir.OpIsOne, y()),
					one(),
					ifelse(call(ir.OpAnd, call(ir.OpLt, c(0), y()), call(ir.OpLt, y(), one())),
						c(math.Inf(1)),
						c(0))))),
			let("gp", ifelse(regular(), ir.Mul(ref("xp"), logx), c(0))),
		),
		ref("xp"),
		ir.Cond(call(ir.OpIsNoTangent, dt(1)),
			ir.Mul(ref("gx"), dt(0)),
			call(ir.OpMuladd, ref("gx"), dt(0), ir.Mul(ref("gp"), dt(1)))),
		ir.Mul(ir.Conj(ref("gx")), ct()),
		ir.Mul(ir.Conj(ref("gp")), ct()),
	)
	return r.withPartials(ref("gx"), ref("gp"))
}
