package rules

import (
	"fmt"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/kernels"
	"github.com/born-ml/chainrules/internal/scalar"
)

// env is the evaluation state of one rule invocation.
//
// Setup names are bound lazily on first reference and memoized, so a name is
// never computed twice. A reverse rule forces every name before the pullback
// escapes; from then on refs is only read.
type env struct {
	key      string
	d        scalar.Domain
	setup    []ir.Binding
	primal   *ir.Node
	args     []scalar.Value
	tangents []scalar.Value // nil outside forward bodies
	ct       scalar.Value
	hasCT    bool

	refs    map[string]scalar.Value
	busy    map[int]bool
	omega   scalar.Value
	omegaOK bool
	inOmega bool
	slot    int
}

func newEnv(r *Rule, d scalar.Domain, args []scalar.Value) *env {
	return &env{
		key:    r.Key(),
		d:      d,
		setup:  r.Setup,
		primal: r.Primal,
		args:   args,
		refs:   make(map[string]scalar.Value, len(r.Setup)+1),
		slot:   -1,
	}
}

// child returns a copy sharing the frozen setup state, for pullback calls.
func (e *env) child() *env {
	cp := *e
	cp.busy = nil
	return &cp
}

func (e *env) errorf(format string, args ...any) error {
	return &RuleError{Key: e.key, Details: fmt.Sprintf(format, args...), Err: ErrMalformed}
}

// bindAll forces every setup name and Ω.
func (e *env) bindAll() error {
	for i := range e.setup {
		if err := e.bind(i); err != nil {
			return err
		}
	}
	_, err := e.primalValue()
	return err
}

func (e *env) bind(i int) error {
	b := e.setup[i]
	if _, done := e.refs[b.Names[0]]; done {
		return nil
	}
	if e.busy == nil {
		e.busy = map[int]bool{}
	}
	if e.busy[i] {
		return e.errorf("setup %q depends on itself", b.Names[0])
	}
	e.busy[i] = true
	defer delete(e.busy, i)

	if len(b.Names) == 2 {
		pair, ok := kernels.LookupPair(b.Expr.Op)
		if !ok || len(b.Expr.Args) != 1 {
			return e.errorf("setup %v does not yield a pair", b.Expr.Op)
		}
		x, err := e.eval(b.Expr.Args[0])
		if err != nil {
			return err
		}
		first, second := pair(e.d, x)
		e.refs[b.Names[0]], e.refs[b.Names[1]] = first, second
		return nil
	}
	v, err := e.eval(b.Expr)
	if err != nil {
		return err
	}
	e.refs[b.Names[0]] = v
	return nil
}

func (e *env) ref(name string) (scalar.Value, error) {
	if v, ok := e.refs[name]; ok {
		return v, nil
	}
	for i, b := range e.setup {
		for _, n := range b.Names {
			if n == name {
				if err := e.bind(i); err != nil {
					return scalar.Value{}, err
				}
				return e.refs[name], nil
			}
		}
	}
	return scalar.Value{}, &RuleError{Key: e.key, Details: name, Err: ErrUnbound}
}

func (e *env) primalValue() (scalar.Value, error) {
	if e.omegaOK {
		return e.omega, nil
	}
	if e.inOmega {
		return scalar.Value{}, e.errorf("primal depends on itself")
	}
	e.inOmega = true
	v, err := e.eval(e.primal)
	e.inOmega = false
	if err != nil {
		return scalar.Value{}, err
	}
	e.omega, e.omegaOK = v, true
	return v, nil
}

// setPrimal pins Ω to a caller-supplied value.
func (e *env) setPrimal(v scalar.Value) {
	e.omega, e.omegaOK = v, true
}

func (e *env) eval(n *ir.Node) (scalar.Value, error) {
	if n == nil {
		return scalar.None(), nil
	}
	switch n.Op {
	case ir.OpConst:
		return scalar.Of(n.Const), nil
	case ir.OpArg:
		if n.Index < 0 || n.Index >= len(e.args) {
			return scalar.Value{}, e.errorf("argument %d of %d", n.Index, len(e.args))
		}
		return e.args[n.Index], nil
	case ir.OpTangent:
		if e.tangents == nil {
			return scalar.Value{}, e.errorf("tangent read outside a forward body")
		}
		if n.Index < 0 || n.Index >= len(e.tangents) {
			return scalar.Value{}, e.errorf("tangent %d of %d", n.Index, len(e.tangents))
		}
		return e.tangents[n.Index], nil
	case ir.OpCotangent:
		if !e.hasCT {
			return scalar.Value{}, e.errorf("cotangent read outside a pullback")
		}
		return e.ct, nil
	case ir.OpRef:
		return e.ref(n.Name)
	case ir.OpPrimal:
		return e.primalValue()
	case ir.OpSlotArg:
		if e.slot < 0 {
			return scalar.Value{}, e.errorf("slot argument read outside a per-slot body")
		}
		return e.args[e.slot], nil
	case ir.OpSlotTangent:
		if e.slot < 0 || e.tangents == nil {
			return scalar.Value{}, e.errorf("slot tangent read outside a per-slot forward body")
		}
		return e.tangents[e.slot], nil
	case ir.OpArgs, ir.OpTangents, ir.OpOthers, ir.OpEach:
		return scalar.Value{}, e.errorf("%v spread outside a variadic operator", n.Op)
	case ir.OpSelect:
		return e.sel(n)
	case ir.OpCond:
		if len(n.Args) != 3 {
			return scalar.Value{}, e.errorf("if takes 3 operands")
		}
		c, err := e.eval(n.Args[0])
		if err != nil {
			return scalar.Value{}, err
		}
		if c.Truth() {
			return e.eval(n.Args[1])
		}
		return e.eval(n.Args[2])
	}

	f, ok := kernels.Lookup(n.Op)
	if !ok {
		return scalar.Value{}, e.errorf("%v has no kernel", n.Op)
	}
	var ops []scalar.Value
	var err error
	if n.Op.Arity() == ir.Variadic {
		ops, err = e.spread(n.Args)
	} else {
		ops, err = e.operands(n.Args)
	}
	if err != nil {
		return scalar.Value{}, err
	}
	if a := n.Op.Arity(); a != ir.Variadic && a != len(ops) {
		return scalar.Value{}, e.errorf("%v takes %d operands, got %d", n.Op, a, len(ops))
	}
	return f(e.d, ops), nil
}

// sel is the eager if-else: every operand is evaluated.
func (e *env) sel(n *ir.Node) (scalar.Value, error) {
	if len(n.Args) != 3 {
		return scalar.Value{}, e.errorf("ifelse takes 3 operands")
	}
	ops, err := e.operands(n.Args)
	if err != nil {
		return scalar.Value{}, err
	}
	if ops[0].Truth() {
		return ops[1], nil
	}
	return ops[2], nil
}

func (e *env) operands(ns []*ir.Node) ([]scalar.Value, error) {
	out := make([]scalar.Value, len(ns))
	for i, a := range ns {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// spread evaluates operands of a variadic operator, expanding Args,
// Tangents, Others and Each in place.
func (e *env) spread(ns []*ir.Node) ([]scalar.Value, error) {
	out := make([]scalar.Value, 0, len(ns))
	for _, a := range ns {
		switch a.Op {
		case ir.OpArgs:
			out = append(out, tail(e.args, a.Index)...)
		case ir.OpTangents:
			if e.tangents == nil {
				return nil, e.errorf("tangents read outside a forward body")
			}
			out = append(out, tail(e.tangents, a.Index)...)
		case ir.OpOthers:
			for k := a.Index; k < len(e.args); k++ {
				if k != e.slot {
					out = append(out, e.args[k])
				}
			}
		case ir.OpEach:
			if len(a.Args) != 1 {
				return nil, e.errorf("each takes one body")
			}
			saved := e.slot
			for k := a.Index; k < len(e.args); k++ {
				e.slot = k
				v, err := e.eval(a.Args[0])
				if err != nil {
					e.slot = saved
					return nil, err
				}
				out = append(out, v)
			}
			e.slot = saved
		default:
			v, err := e.eval(a)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func tail(vs []scalar.Value, from int) []scalar.Value {
	if from >= len(vs) {
		return nil
	}
	return vs[from:]
}
