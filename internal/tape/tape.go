// Package tape is a minimal scalar reverse-mode engine built on the rule
// registry.
//
// Usage:
//
//	t := tape.New(registry.LookupReverse)
//	x := t.Real(2)
//	y, _ := t.Apply("sin", x)
//	z, _ := t.Apply("*", x, y)
//	grads, _ := t.Backward(z, scalar.Float(1))
//	dx := grads.Of(x)
package tape

import (
	"errors"
	"fmt"

	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/scalar"
)

// ErrForeignVar is returned when a Var from another tape is passed in.
var ErrForeignVar = errors.New("variable belongs to another tape")

// Source resolves reverse rules. Both (*registry.Registry).LookupReverse and
// (*rules.Catalogue).Reverse satisfy it.
type Source func(call rules.Signature) (rules.ReverseRule, bool)

// Var is a value recorded on a tape.
type Var struct {
	id     int
	tape   *Tape
	value  scalar.Value
	domain scalar.Domain
}

// Value returns the primal value.
func (v Var) Value() scalar.Value { return v.value }

// Domain returns the domain the value is tagged with.
func (v Var) Domain() scalar.Domain { return v.domain }

// operation is one recorded call.
type operation struct {
	key      string
	inputs   []Var
	output   int
	pullback rules.Pullback
}

// Tape records calls during the forward pass and propagates cotangents
// during the backward pass.
type Tape struct {
	src        Source
	operations []operation // Recorded operations (in execution order)
	vars       int
	recording  bool
}

// New creates a recording tape resolving rules through src.
func New(src Source) *Tape {
	return &Tape{
		src:        src,
		operations: make([]operation, 0, 16),
		recording:  true,
	}
}

// StartRecording enables operation recording.
func (t *Tape) StartRecording() { t.recording = true }

// StopRecording disables operation recording. Calls still evaluate but
// their results are constants for Backward.
func (t *Tape) StopRecording() { t.recording = false }

// IsRecording returns true if the tape is currently recording operations.
func (t *Tape) IsRecording() bool { return t.recording }

// NumOps returns the number of recorded operations.
func (t *Tape) NumOps() int { return len(t.operations) }

// Clear resets the tape, removing all recorded operations. Vars created
// before Clear can still be read but no longer receive gradients.
func (t *Tape) Clear() {
	t.operations = t.operations[:0]
}

func (t *Tape) newVar(v scalar.Value, d scalar.Domain) Var {
	t.vars++
	return Var{id: t.vars, tape: t, value: v, domain: d}
}

// Real creates a real input.
func (t *Tape) Real(x float64) Var {
	return t.newVar(scalar.Float(x), scalar.Real)
}

// Complex creates a complex input.
func (t *Tape) Complex(c complex128) Var {
	return t.newVar(scalar.Of(c), scalar.Complex)
}

// Discrete creates a non-differentiable input such as a rounding mode.
func (t *Tape) Discrete(n int) Var {
	return t.newVar(scalar.Float(float64(n)), scalar.Discrete)
}

// Apply evaluates fn on args through its reverse rule and records the call.
func (t *Tape) Apply(fn string, args ...Var) (Var, error) {
	domains := make([]scalar.Domain, len(args))
	values := make([]scalar.Value, len(args))
	for i, a := range args {
		if a.tape != t {
			return Var{}, fmt.Errorf("tape: %s argument %d: %w", fn, i, ErrForeignVar)
		}
		domains[i] = a.domain
		values[i] = a.value
	}
	call := rules.Call(fn, domains...)
	rr, ok := t.src(call)
	if !ok {
		return Var{}, fmt.Errorf("tape: %s: %w", call.Key(), rules.ErrNoRule)
	}
	omega, pb, err := rr.Apply(values...)
	if err != nil {
		return Var{}, fmt.Errorf("tape: %w", err)
	}
	d := call.EvalDomain()
	if rr.Rule().Codomain == scalar.Real {
		d = scalar.Real
	}
	out := t.newVar(scalar.Project(d, omega), d)
	if t.recording {
		t.operations = append(t.operations, operation{
			key:      rr.Rule().Key(),
			inputs:   append([]Var(nil), args...),
			output:   out.id,
			pullback: pb,
		})
	}
	return out, nil
}

// Gradients maps recorded variables to their accumulated cotangents.
type Gradients map[int]scalar.Value

// Of returns the cotangent of v, or Zero if none reached it.
func (g Gradients) Of(v Var) scalar.Value {
	return g[v.id]
}

// Backward seeds out with seed and walks the tape in reverse, accumulating
// cotangents for every variable the seed reaches. Cotangents are projected
// onto the domain of the variable receiving them.
func (t *Tape) Backward(out Var, seed scalar.Value) (Gradients, error) {
	if out.tape != t {
		return nil, fmt.Errorf("tape: backward: %w", ErrForeignVar)
	}

	// Stop recording during backward pass
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	grads := Gradients{out.id: scalar.Project(out.domain, seed)}
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		ct, ok := grads[op.output]
		if !ok || ct.IsSentinel() {
			continue
		}
		inGrads, err := op.pullback(ct)
		if err != nil {
			return nil, fmt.Errorf("tape: backward through %s: %w", op.key, err)
		}
		accumulate(grads, op.inputs, inGrads)
	}
	return grads, nil
}

// accumulate adds input cotangents, summing over repeated uses.
func accumulate(grads Gradients, inputs []Var, inGrads []scalar.Value) {
	for j, in := range inputs {
		if j >= len(inGrads) {
			break
		}
		g := scalar.Project(in.domain, inGrads[j])
		if g.IsSentinel() {
			continue
		}
		if existing, ok := grads[in.id]; ok && !existing.IsSentinel() {
			grads[in.id] = scalar.Of(existing.C() + g.C())
		} else {
			grads[in.id] = g
		}
	}
}
