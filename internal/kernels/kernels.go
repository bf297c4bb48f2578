// Package kernels implements the numeric meaning of every ir arithmetic and
// predicate operator.
//
// Each operator has one kernel. Standard operators are backed by math and
// math/cmplx; relaxed (fast) operators trade accuracy and special-value
// handling for speed and are backed by go-highway's polynomial
// approximations for real arguments.
//
// The domain passed to a kernel is the call-site evaluation domain: Real
// selects real semantics (sqrt(-1) is NaN), Complex selects complex ones
// (sqrt(-1) is i). Kernels never inspect the runtime shape of their operands
// to decide this.
package kernels

import (
	"errors"
	"fmt"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/scalar"
)

// ErrNoKernel is returned for operators that are not computed by a kernel
// (leaves and structural operators) or are unknown.
var ErrNoKernel = errors.New("no kernel for operator")

// Func computes an operator over already-evaluated operands.
type Func func(d scalar.Domain, args []scalar.Value) scalar.Value

// PairFunc computes an operator that yields two values (sincos).
type PairFunc func(d scalar.Domain, x scalar.Value) (scalar.Value, scalar.Value)

var (
	table     = map[ir.Op]Func{}
	pairTable = map[ir.Op]PairFunc{}
)

func register(op ir.Op, f Func) {
	if _, dup := table[op]; dup {
		panic(fmt.Sprintf("kernels: duplicate kernel for %v", op))
	}
	table[op] = f
}

func registerPair(op ir.Op, f PairFunc) {
	pairTable[op] = f
}

// Lookup returns the kernel for op.
func Lookup(op ir.Op) (Func, bool) {
	f, ok := table[op]
	return f, ok
}

// LookupPair returns the pair kernel for op.
func LookupPair(op ir.Op) (PairFunc, bool) {
	f, ok := pairTable[op]
	return f, ok
}

// Apply evaluates op on args.
func Apply(op ir.Op, d scalar.Domain, args ...scalar.Value) (scalar.Value, error) {
	f, ok := table[op]
	if !ok {
		return scalar.Value{}, fmt.Errorf("%w: %v", ErrNoKernel, op)
	}
	if n := op.Arity(); n != ir.Variadic && n != len(args) {
		return scalar.Value{}, fmt.Errorf("kernels: %v takes %d operands, got %d", op, n, len(args))
	}
	return f(d, args), nil
}

// Has reports whether op is computed by a kernel.
func Has(op ir.Op) bool {
	if _, ok := table[op]; ok {
		return true
	}
	_, ok := pairTable[op]
	return ok
}
