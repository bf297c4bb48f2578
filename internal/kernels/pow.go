package kernels

import (
	"math"
	"math/cmplx"

	"github.com/born-ml/chainrules/internal/scalar"
)

// maxIntegral bounds exponents treated as integers; beyond it float64 can no
// longer represent every integer.
const maxIntegral = 1 << 53

// integral reports whether c is a real integer and returns it.
func integral(c complex128) (int64, bool) {
	re := real(c)
	if imag(c) != 0 || math.IsInf(re, 0) || math.IsNaN(re) || re != math.Trunc(re) {
		return 0, false
	}
	if math.Abs(re) > maxIntegral {
		return 0, false
	}
	return int64(re), true
}

// pow computes x^p. Integer exponents use repeated squaring in the argument's
// own arithmetic, so negative real bases never take a complex detour.
// Non-integer exponents use the general real power (NaN for negative bases)
// or the principal complex power.
func pow(d scalar.Domain, x, p complex128) complex128 {
	if n, ok := integral(p); ok {
		if d == scalar.Real {
			return complex(powiF(real(x), n), 0)
		}
		return powiC(x, n)
	}
	if d == scalar.Real {
		return complex(math.Pow(real(x), real(p)), 0)
	}
	return cmplx.Pow(x, p)
}

func powiF(x float64, n int64) float64 {
	if n < 0 {
		return 1 / powiF(x, -n)
	}
	r := 1.0
	for n > 0 {
		if n&1 == 1 {
			r *= x
		}
		x *= x
		n >>= 1
	}
	return r
}

func powiC(x complex128, n int64) complex128 {
	if n < 0 {
		if x == 0 {
			return cmplx.Inf()
		}
		return 1 / powiC(x, -n)
	}
	r := complex128(1)
	for n > 0 {
		if n&1 == 1 {
			r *= x
		}
		x *= x
		n >>= 1
	}
	return r
}

// RoundingMode selects how rem2pi picks the multiple of 2π to subtract. It
// is passed to rem2pi as a Discrete argument.
type RoundingMode int

// Rounding modes, numbered as they are encoded in rem2pi arguments.
const (
	RoundNearest RoundingMode = iota
	RoundToZero
	RoundDown
	RoundUp
)

// rem2pi returns x - 2πk with k chosen by mode.
func rem2pi(x float64, mode RoundingMode) float64 {
	q := x / (2 * math.Pi)
	var k float64
	switch mode {
	case RoundToZero:
		k = math.Trunc(q)
	case RoundDown:
		k = math.Floor(q)
	case RoundUp:
		k = math.Ceil(q)
	default:
		k = math.RoundToEven(q)
	}
	return x - 2*math.Pi*k
}
