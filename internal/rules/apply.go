package rules

import (
	"fmt"

	"github.com/born-ml/chainrules/internal/scalar"
)

// ForwardRule pushes argument tangents through one call.
type ForwardRule struct {
	rule *Rule
	call Signature
}

// ReverseRule computes a call's primal and its pullback.
type ReverseRule struct {
	rule *Rule
	call Signature
	cat  *Catalogue
}

// PartialsRule returns raw partial derivatives for a known primal.
type PartialsRule struct {
	rule *Rule
	call Signature
}

// Pullback maps an output cotangent to one cotangent per argument, in
// argument order. Non-differentiable slots hold the no-tangent placeholder.
// A Pullback holds no mutable state and may be called any number of times,
// concurrently.
type Pullback func(ct scalar.Value) ([]scalar.Value, error)

// Apply calls the pullback.
func (p Pullback) Apply(ct scalar.Value) ([]scalar.Value, error) {
	return p(ct)
}

// Rule returns the dispatched rule.
func (f ForwardRule) Rule() *Rule { return f.rule }

// Rule returns the dispatched rule.
func (r ReverseRule) Rule() *Rule { return r.rule }

// Rule returns the dispatched rule.
func (p PartialsRule) Rule() *Rule { return p.rule }

// checkArgs validates argument values against the call signature.
func checkArgs(key string, call Signature, args []scalar.Value) error {
	if len(args) != len(call.Args) {
		return &RuleError{
			Key:     key,
			Details: fmt.Sprintf("call declares %d arguments, got %d", len(call.Args), len(args)),
			Err:     ErrArity,
		}
	}
	for i, v := range args {
		d := call.Args[i]
		if v.IsSentinel() {
			return &RuleError{Key: key, Details: fmt.Sprintf("argument %d is %v", i, v), Err: ErrDomain}
		}
		if (d == scalar.Real || d == scalar.Discrete) && v.Im() != 0 {
			return &RuleError{Key: key, Details: fmt.Sprintf("argument %d (%v) is not %v", i, v, d), Err: ErrDomain}
		}
	}
	return nil
}

// Apply returns the primal result and the output tangent for the given
// argument tangents. Unchanged arguments take scalar.Zero().
func (f ForwardRule) Apply(tangents []scalar.Value, args ...scalar.Value) (scalar.Value, scalar.Value, error) {
	if err := checkArgs(f.rule.Key(), f.call, args); err != nil {
		return scalar.Value{}, scalar.Value{}, err
	}
	if len(tangents) != len(args) {
		return scalar.Value{}, scalar.Value{}, &RuleError{
			Key:     f.rule.Key(),
			Details: fmt.Sprintf("%d tangents for %d arguments", len(tangents), len(args)),
			Err:     ErrArity,
		}
	}
	e := newEnv(f.rule, f.call.EvalDomain(), args)
	e.tangents = tangents
	omega, err := e.primalValue()
	if err != nil {
		return scalar.Value{}, scalar.Value{}, err
	}
	dOmega, err := e.eval(f.rule.Forward)
	if err != nil {
		return scalar.Value{}, scalar.Value{}, err
	}
	return omega, dOmega, nil
}

// Apply returns the primal result and its pullback.
func (r ReverseRule) Apply(args ...scalar.Value) (scalar.Value, Pullback, error) {
	if err := checkArgs(r.rule.Key(), r.call, args); err != nil {
		return scalar.Value{}, nil, err
	}
	if r.rule.Split != nil {
		return r.split(args)
	}
	frozen := newEnv(r.rule, r.call.EvalDomain(), args)
	if err := frozen.bindAll(); err != nil {
		return scalar.Value{}, nil, err
	}
	rule := r.rule
	pb := func(ct scalar.Value) ([]scalar.Value, error) {
		e := frozen.child()
		e.ct, e.hasCT = ct, true
		out := make([]scalar.Value, len(args))
		for i := range args {
			if !r.call.Args[i].Differentiable() {
				out[i] = scalar.None()
				continue
			}
			body := rule.PullbackRest
			if i < len(rule.Pullback) {
				body = rule.Pullback[i]
			} else {
				e.slot = i
			}
			v, err := e.eval(body)
			e.slot = -1
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return frozen.omega, pb, nil
}

// split runs the recursive n-ary composition: the head call over the first
// Head arguments, then the tail call over (head result, rest...). The tail
// pullback runs first; its cotangent for the head result feeds the head
// pullback.
func (r ReverseRule) split(args []scalar.Value) (scalar.Value, Pullback, error) {
	s := r.rule.Split
	fn := s.Callee.Func()
	headCall := Call(fn, r.call.Args[:s.Head]...)
	head, ok := r.cat.Reverse(headCall)
	if !ok {
		return scalar.Value{}, nil, &RuleError{Key: r.rule.Key(), Part: "split", Details: headCall.Key(), Err: ErrNoRule}
	}
	tailDomains := append([]scalar.Domain{headCall.EvalDomain()}, r.call.Args[s.Head:]...)
	tailCall := Call(fn, tailDomains...)
	tail, ok := r.cat.Reverse(tailCall)
	if !ok {
		return scalar.Value{}, nil, &RuleError{Key: r.rule.Key(), Part: "split", Details: tailCall.Key(), Err: ErrNoRule}
	}

	headOmega, headBack, err := head.Apply(args[:s.Head]...)
	if err != nil {
		return scalar.Value{}, nil, err
	}
	tailArgs := append([]scalar.Value{headOmega}, args[s.Head:]...)
	omega, tailBack, err := tail.Apply(tailArgs...)
	if err != nil {
		return scalar.Value{}, nil, err
	}
	pb := func(ct scalar.Value) ([]scalar.Value, error) {
		dTail, err := tailBack(ct)
		if err != nil {
			return nil, err
		}
		dHead, err := headBack(dTail[0])
		if err != nil {
			return nil, err
		}
		out := make([]scalar.Value, 0, len(args))
		out = append(out, dHead...)
		return append(out, dTail[1:]...), nil
	}
	return omega, pb, nil
}

// Apply returns one partial derivative per argument, in argument order,
// given the already computed primal output. Non-differentiable slots hold
// the no-tangent placeholder.
func (p PartialsRule) Apply(primal scalar.Value, args ...scalar.Value) ([]scalar.Value, error) {
	if err := checkArgs(p.rule.Key(), p.call, args); err != nil {
		return nil, err
	}
	e := newEnv(p.rule, p.call.EvalDomain(), args)
	e.setPrimal(primal)
	out := make([]scalar.Value, len(args))
	for i := range args {
		if !p.call.Args[i].Differentiable() {
			out[i] = scalar.None()
			continue
		}
		body := p.rule.PartialsRest
		if i < len(p.rule.Partials) {
			body = p.rule.Partials[i]
		} else {
			e.slot = i
		}
		v, err := e.eval(body)
		e.slot = -1
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
