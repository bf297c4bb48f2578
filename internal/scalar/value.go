// Package scalar defines the values exchanged between differentiation rules
// and the engine that calls them.
//
// A Value is either a real or complex number (carried as complex128) or one of
// two absorbing sentinels:
//   - Zero: a tangent or cotangent known to be zero
//   - None: the placeholder for an argument slot that takes no sensitivity
//
// The zero Value is the Zero sentinel, so an unset tangent never needs to be
// spelled out by callers.
package scalar

import (
	"fmt"
	"math"
	"math/cmplx"
)

type kind uint8

const (
	kindZero kind = iota
	kindNone
	kindNumber
)

// Value is a scalar number or a zero/no-tangent sentinel.
type Value struct {
	c    complex128
	kind kind
}

// Of wraps a complex number.
func Of(c complex128) Value {
	return Value{c: c, kind: kindNumber}
}

// Float wraps a real number.
func Float(x float64) Value {
	return Value{c: complex(x, 0), kind: kindNumber}
}

// Cmplx builds re + im*i.
func Cmplx(re, im float64) Value {
	return Value{c: complex(re, im), kind: kindNumber}
}

// Bool returns 1 for true and 0 for false. Predicates in rule bodies
// evaluate to these values.
func Bool(b bool) Value {
	if b {
		return Float(1)
	}
	return Float(0)
}

// Zero returns the absorbing zero tangent.
func Zero() Value {
	return Value{}
}

// None returns the no-tangent placeholder used for non-differentiable slots.
func None() Value {
	return Value{kind: kindNone}
}

// IsSentinel reports whether v is Zero or None.
func (v Value) IsSentinel() bool {
	return v.kind != kindNumber
}

// IsNone reports whether v is the no-tangent placeholder.
func (v Value) IsNone() bool {
	return v.kind == kindNone
}

// C returns the numeric value; sentinels read as 0.
func (v Value) C() complex128 {
	if v.kind != kindNumber {
		return 0
	}
	return v.c
}

// Re returns the real part; sentinels read as 0.
func (v Value) Re() float64 {
	return real(v.C())
}

// Im returns the imaginary part; sentinels read as 0.
func (v Value) Im() float64 {
	return imag(v.C())
}

// IsZero reports whether v is numerically zero. Sentinels are zero.
func (v Value) IsZero() bool {
	return v.C() == 0
}

// IsNaN reports whether either component of v is NaN.
func (v Value) IsNaN() bool {
	return cmplx.IsNaN(v.C())
}

// Truth interprets v as a predicate result.
func (v Value) Truth() bool {
	return v.Re() != 0
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case kindZero:
		return "ZeroTangent"
	case kindNone:
		return "NoTangent"
	}
	if imag(v.c) == 0 {
		return fmt.Sprint(real(v.c))
	}
	return fmt.Sprint(v.c)
}

// RealDot is the real inner product Re(conj(a)*b). It is the contraction
// used to pair cotangents with tangents.
func RealDot(a, b Value) float64 {
	return a.Re()*b.Re() + a.Im()*b.Im()
}

// Project fits a raw cotangent onto an argument of the given domain. It is
// the caller-side projection step: rules are free to return complex
// cotangents for real arguments and the engine discards the imaginary part
// here.
func Project(d Domain, v Value) Value {
	if v.IsSentinel() {
		return v
	}
	switch d {
	case Real:
		return Float(real(v.c))
	case Discrete:
		return None()
	}
	return v
}

// Close reports whether a and b agree within abs + rel*max(|a|,|b|).
// Sentinels compare as 0; two NaNs are never close.
func Close(a, b Value, abs, rel float64) bool {
	d := cmplx.Abs(a.C() - b.C())
	if math.IsNaN(d) {
		return false
	}
	scale := math.Max(cmplx.Abs(a.C()), cmplx.Abs(b.C()))
	return d <= abs+rel*scale
}
