package rules

import (
	"path/filepath"
	"runtime"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/scalar"
)

// Domain shorthands for declarations.
const (
	dNum  = scalar.Number
	dReal = scalar.Real
	dCpx  = scalar.Complex
	dDisc = scalar.Discrete
)

// scalarRule declares a rule from its primal and its partial derivatives
// ∂Ω/∂xᵢ. The forward body is Σ ∂ᵢ·dxᵢ and pullback i is dΩ·conj(∂ᵢ),
// the holomorphic convention. A nil partial marks a non-differentiable slot.
func scalarRule(sig Signature, setup []ir.Binding, primal *ir.Node, partials ...*ir.Node) *Rule {
	terms := make([]*ir.Node, 0, len(partials))
	pullback := make([]*ir.Node, len(partials))
	for i, p := range partials {
		if p == nil {
			continue
		}
		terms = append(terms, ir.Mul(ir.Clone(p), dt(i)))
		pullback[i] = ir.Mul(ct(), ir.Conj(ir.Clone(p)))
	}
	forward := terms[0]
	if len(terms) > 1 {
		forward = ir.Add(terms...)
	}
	r := &Rule{
		Sig:      sig,
		Setup:    setup,
		Primal:   primal,
		Forward:  forward,
		Pullback: pullback,
		Partials: partials,
	}
	return stamp(r, 2)
}

// customRule declares a rule with hand-written forward and pullback bodies.
func customRule(sig Signature, setup []ir.Binding, primal, forward *ir.Node, pullback ...*ir.Node) *Rule {
	r := &Rule{
		Sig:      sig,
		Setup:    setup,
		Primal:   primal,
		Forward:  forward,
		Pullback: pullback,
	}
	return stamp(r, 2)
}

// withPartials attaches the output-derivative fast path to a custom rule.
func (r *Rule) withPartials(ps ...*ir.Node) *Rule {
	r.Partials = ps
	for _, p := range ps {
		ir.StampPos(p, r.Pos)
	}
	return r
}

// stamp records the declaring file and line on r and on every node of its
// bodies.
func stamp(r *Rule, skip int) *Rule {
	if _, file, line, ok := runtime.Caller(skip); ok {
		r.Pos = ir.Pos{File: filepath.Base(file), Line: line}
	}
	for _, n := range r.Bodies() {
		ir.StampPos(n, r.Pos)
	}
	return r
}

// setup builds a binding list.
func setup(bs ...ir.Binding) []ir.Binding { return bs }

func let(name string, expr *ir.Node) ir.Binding {
	return ir.Binding{Names: []string{name}, Expr: expr}
}

func let2(a, b string, expr *ir.Node) ir.Binding {
	return ir.Binding{Names: []string{a, b}, Expr: expr}
}

// Leaf shorthands. Each call returns a fresh node.
func x() *ir.Node { return ir.Arg(0) }
func y() *ir.Node { return ir.Arg(1) }
func z() *ir.Node { return ir.Arg(2) }
func dt(i int) *ir.Node { return ir.Tangent(i) }
func ct() *ir.Node { return ir.Cotangent() }
func omega() *ir.Node { return ir.Primal() }
func ref(name string) *ir.Node { return ir.Ref(name) }
func one() *ir.Node { return ir.C(1) }
func c(v float64) *ir.Node { return ir.C(v) }
func call(op ir.Op, args ...*ir.Node) *ir.Node {
	return ir.Call(op, args...)
}

func sq(n *ir.Node) *ir.Node { return ir.Pow(n, c(2)) }

// ifelse is the eager, type-stable branch.
func ifelse(cond, a, b *ir.Node) *ir.Node { return ir.Select(cond, a, b) }

// nonzero substitutes 1 for a denominator that is exactly zero.
func nonzero(of, den *ir.Node) *ir.Node {
	return ifelse(ir.IsZero(of), one(), den)
}

// realDot is Re(conj(a)·b) spelled in real arithmetic.
func realDot(a, b *ir.Node) *ir.Node {
	return ir.Add(ir.Mul(ir.Re(a), ir.Re(b)), ir.Mul(ir.Im(a), ir.Im(b)))
}

// imagConjTimes is Im(conj(a)·b) spelled in real arithmetic.
func imagConjTimes(a, b *ir.Node) *ir.Node {
	return ir.Sub(ir.Mul(ir.Re(a), ir.Im(b)), ir.Mul(ir.Im(a), ir.Re(b)))
}
