package rules

import (
	"fmt"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/kernels"
	"github.com/born-ml/chainrules/internal/scalar"
)

// Rule is the declaration of one function's derivatives.
//
// Bodies are ir trees over the call's arguments (Arg), their tangents
// (Tangent), the output cotangent (Cotangent), the primal output (Primal)
// and the names bound in Setup (Ref).
//
//   - Setup is evaluated at most once per invocation and shared by every
//     body. Reverse rules bind all of it before handing out the pullback.
//   - Forward computes the output tangent.
//   - Pullback holds one body per leading argument; a nil entry yields the
//     no-tangent placeholder. Variadic rules evaluate PullbackRest for the
//     remaining slots with SlotArg and SlotTangent bound.
//   - Partials, when set, are the raw partial derivatives in argument order
//     (PartialsRest for variadic slots).
//   - Split replaces Pullback with the recursive composition used by n-ary
//     products.
type Rule struct {
	Sig      Signature
	Codomain scalar.Domain // Real when the output is real for every input, else Number

	Setup   []ir.Binding
	Primal  *ir.Node
	Forward *ir.Node

	Pullback     []*ir.Node
	PullbackRest *ir.Node

	Partials     []*ir.Node
	PartialsRest *ir.Node

	Split *Split

	Pos ir.Pos
}

// Split composes the pullback of an n-ary call from two smaller calls of
// the same catalogue: Callee over the first Head arguments, then Callee over
// (that result, remaining arguments...). The tail pullback runs first and
// the two cotangent tuples are concatenated in argument order.
type Split struct {
	Head   int
	Callee ir.Op
}

// Key is the rule's catalogue key.
func (r *Rule) Key() string {
	return r.Sig.Key()
}

// HasPartials reports whether the rule offers the output-derivative fast
// path.
func (r *Rule) HasPartials() bool {
	return len(r.Partials) > 0 || r.PartialsRest != nil
}

// Bodies returns every expression tree of the rule in a fixed order: setup,
// primal, forward, pullbacks, partials. Nil entries are skipped.
func (r *Rule) Bodies() []*ir.Node {
	var out []*ir.Node
	add := func(n *ir.Node) {
		if n != nil {
			out = append(out, n)
		}
	}
	for _, b := range r.Setup {
		add(b.Expr)
	}
	add(r.Primal)
	add(r.Forward)
	for _, n := range r.Pullback {
		add(n)
	}
	add(r.PullbackRest)
	for _, n := range r.Partials {
		add(n)
	}
	add(r.PartialsRest)
	return out
}

// Rewrite returns a deep copy of r with every body passed through
// ir.Rewrite(body, f). r is not modified.
func (r *Rule) Rewrite(f func(*ir.Node) *ir.Node) *Rule {
	cp := *r
	cp.Sig.Args = append([]scalar.Domain(nil), r.Sig.Args...)
	if r.Setup != nil {
		cp.Setup = make([]ir.Binding, len(r.Setup))
		for i, b := range r.Setup {
			cp.Setup[i] = ir.Binding{
				Names: append([]string(nil), b.Names...),
				Expr:  ir.Rewrite(b.Expr, f),
			}
		}
	}
	cp.Primal = ir.Rewrite(r.Primal, f)
	cp.Forward = ir.Rewrite(r.Forward, f)
	cp.Pullback = rewriteAll(r.Pullback, f)
	cp.PullbackRest = ir.Rewrite(r.PullbackRest, f)
	cp.Partials = rewriteAll(r.Partials, f)
	cp.PartialsRest = ir.Rewrite(r.PartialsRest, f)
	if r.Split != nil {
		s := *r.Split
		cp.Split = &s
	}
	return &cp
}

func rewriteAll(ns []*ir.Node, f func(*ir.Node) *ir.Node) []*ir.Node {
	if ns == nil {
		return nil
	}
	out := make([]*ir.Node, len(ns))
	for i, n := range ns {
		out[i] = ir.Rewrite(n, f)
	}
	return out
}

// Check verifies that the rule is well formed: every body is present where
// the protocol needs one, every operator has a kernel and a valid operand
// count, and setup names are bound before use.
func (r *Rule) Check() error {
	fail := func(part, details string, err error) error {
		return &RuleError{Key: r.Key(), Part: part, Details: details, Err: err}
	}
	if r.Primal == nil || r.Forward == nil {
		return fail("", "primal and forward bodies are required", ErrMalformed)
	}
	n := len(r.Sig.Args)
	switch {
	case r.Split != nil:
		if !r.Sig.Variadic || r.Split.Head < 2 || r.Split.Head >= n {
			return fail("split", fmt.Sprintf("head %d does not fit %d arguments", r.Split.Head, n), ErrMalformed)
		}
		if r.Split.Callee.Func() != r.Sig.Func {
			return fail("split", fmt.Sprintf("callee %v does not compute %s", r.Split.Callee, r.Sig.Func), ErrMalformed)
		}
	case r.Sig.Variadic:
		if len(r.Pullback) > n || r.PullbackRest == nil {
			return fail("pullback", "variadic rule needs a rest body", ErrMalformed)
		}
	default:
		if len(r.Pullback) != n {
			return fail("pullback", fmt.Sprintf("%d bodies for %d arguments", len(r.Pullback), n), ErrArity)
		}
	}
	if len(r.Partials) > 0 && !r.Sig.Variadic && len(r.Partials) != n {
		return fail("partials", fmt.Sprintf("%d partials for %d arguments", len(r.Partials), n), ErrArity)
	}
	for i, d := range r.Sig.Args {
		if d == scalar.Discrete && i < len(r.Pullback) && r.Pullback[i] != nil {
			return fail(fmt.Sprintf("pullback[%d]", i), "discrete argument takes no cotangent", ErrMalformed)
		}
	}

	bound := map[string]bool{}
	for i, b := range r.Setup {
		part := fmt.Sprintf("setup[%d]", i)
		if len(b.Names) == 0 || len(b.Names) > 2 || b.Expr == nil {
			return fail(part, "binding needs one or two names and an expression", ErrMalformed)
		}
		if len(b.Names) == 2 {
			if _, ok := kernels.LookupPair(b.Expr.Op); !ok || len(b.Expr.Args) != 1 {
				return fail(part, fmt.Sprintf("%v does not yield a pair", b.Expr.Op), ErrMalformed)
			}
			if err := checkNode(b.Expr.Args[0], bound); err != nil {
				return fail(part, err.Error(), ErrMalformed)
			}
		} else if err := checkNode(b.Expr, bound); err != nil {
			return fail(part, err.Error(), ErrMalformed)
		}
		for _, name := range b.Names {
			if bound[name] {
				return fail(part, fmt.Sprintf("%q bound twice", name), ErrMalformed)
			}
			bound[name] = true
		}
	}
	for i, body := range r.Bodies()[len(r.Setup):] {
		if err := checkNode(body, bound); err != nil {
			return fail(fmt.Sprintf("body[%d]", i), err.Error(), ErrMalformed)
		}
	}
	return nil
}

func checkNode(n *ir.Node, bound map[string]bool) error {
	var err error
	ir.Inspect(n, func(n *ir.Node) bool {
		if err != nil {
			return false
		}
		switch {
		case n.Op == ir.OpRef:
			if !bound[n.Name] {
				err = fmt.Errorf("%w: %q", ErrUnbound, n.Name)
			}
		case n.Op.Class() == ir.Leaf:
			if !n.Op.Valid() {
				err = fmt.Errorf("invalid operator %v", n.Op)
			}
		case n.Op.Class() == ir.Structural:
			if len(n.Args) != n.Op.Arity() {
				err = fmt.Errorf("%v takes %d operands, got %d", n.Op, n.Op.Arity(), len(n.Args))
			}
		default:
			if _, ok := kernels.Lookup(n.Op); !ok {
				err = fmt.Errorf("%v has no kernel", n.Op)
				break
			}
			if a := n.Op.Arity(); a != ir.Variadic && a != len(n.Args) {
				err = fmt.Errorf("%v takes %d operands, got %d", n.Op, a, len(n.Args))
			}
		}
		return true
	})
	return err
}
