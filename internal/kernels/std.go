package kernels

import (
	"math"
	"math/cmplx"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/scalar"
)

func init() {
	register(ir.OpAdd, add)
	register(ir.OpSub, sub)
	register(ir.OpMul, mul)
	register(ir.OpDiv, div)
	register(ir.OpNeg, neg)
	register(ir.OpInv, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Of(divC(1, a[0].C()))
	})
	register(ir.OpMuladd, muladd)
	register(ir.OpFma, fma)
	register(ir.OpConj, linear(cmplx.Conj))
	register(ir.OpReal, linear(func(c complex128) complex128 { return complex(real(c), 0) }))
	register(ir.OpImag, linear(func(c complex128) complex128 { return complex(imag(c), 0) }))
	register(ir.OpCmplx, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Cmplx(a[0].Re(), a[1].Re())
	})

	register(ir.OpPow, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Of(pow(d, a[0].C(), a[1].C()))
	})
	register(ir.OpSqrt, unary(math.Sqrt, cmplx.Sqrt))
	register(ir.OpCbrt, unary(math.Cbrt, func(z complex128) complex128 {
		return cmplx.Pow(z, 1.0/3)
	}))
	register(ir.OpAbs, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		if d == scalar.Real {
			return scalar.Float(math.Abs(a[0].Re()))
		}
		return scalar.Float(cmplx.Abs(a[0].C()))
	})
	register(ir.OpAbs2, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		re, im := a[0].Re(), a[0].Im()
		return scalar.Float(re*re + im*im)
	})
	register(ir.OpAngle, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		if d == scalar.Real {
			return scalar.Float(math.Atan2(0, a[0].Re()))
		}
		return scalar.Float(cmplx.Phase(a[0].C()))
	})
	register(ir.OpSign, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		if d == scalar.Real {
			return scalar.Float(signF(a[0].Re()))
		}
		z := a[0].C()
		if z == 0 {
			return scalar.Float(0)
		}
		return scalar.Of(z / complex(cmplx.Abs(z), 0))
	})
	register(ir.OpHypot, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		h := 0.0
		for _, v := range a {
			if d == scalar.Real {
				h = math.Hypot(h, v.Re())
			} else {
				h = math.Hypot(h, cmplx.Abs(v.C()))
			}
		}
		return scalar.Float(h)
	})
	register(ir.OpMax, binaryReal(math.Max))
	register(ir.OpMin, binaryReal(math.Min))
	register(ir.OpFloor, unary(math.Floor, func(z complex128) complex128 {
		return complex(math.Floor(real(z)), math.Floor(imag(z)))
	}))
	register(ir.OpMod, binaryReal(modF))
	register(ir.OpRem2Pi, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Float(rem2pi(a[0].Re(), RoundingMode(a[1].Re())))
	})
	register(ir.OpDeg2Rad, scale(math.Pi/180))
	register(ir.OpRad2Deg, scale(180/math.Pi))

	register(ir.OpSin, unary(math.Sin, cmplx.Sin))
	register(ir.OpCos, unary(math.Cos, cmplx.Cos))
	registerPair(ir.OpSinCos, func(d scalar.Domain, x scalar.Value) (scalar.Value, scalar.Value) {
		if d == scalar.Real {
			s, c := math.Sincos(x.Re())
			return scalar.Float(s), scalar.Float(c)
		}
		return scalar.Of(cmplx.Sin(x.C())), scalar.Of(cmplx.Cos(x.C()))
	})
	register(ir.OpTan, unary(math.Tan, cmplx.Tan))
	register(ir.OpAsin, unary(math.Asin, cmplx.Asin))
	register(ir.OpAcos, unary(math.Acos, cmplx.Acos))
	register(ir.OpAtan, unary(math.Atan, cmplx.Atan))
	register(ir.OpAtan2, binaryReal(math.Atan2))
	register(ir.OpSinh, unary(math.Sinh, cmplx.Sinh))
	register(ir.OpCosh, unary(math.Cosh, cmplx.Cosh))
	register(ir.OpTanh, unary(math.Tanh, cmplx.Tanh))
	register(ir.OpExp, unary(math.Exp, cmplx.Exp))
	register(ir.OpExp2, unary(math.Exp2, func(z complex128) complex128 {
		return cmplx.Exp(z * math.Ln2)
	}))
	register(ir.OpExp10, unary(func(x float64) float64 { return math.Pow(10, x) }, func(z complex128) complex128 {
		return cmplx.Exp(z * math.Ln10)
	}))
	register(ir.OpExpm1, unary(math.Expm1, func(z complex128) complex128 {
		return cmplx.Exp(z) - 1
	}))
	register(ir.OpLog, unary(math.Log, cmplx.Log))
	register(ir.OpLog2, unary(math.Log2, func(z complex128) complex128 {
		return cmplx.Log(z) / math.Ln2
	}))
	register(ir.OpLog10, unary(math.Log10, cmplx.Log10))
	register(ir.OpLog1p, unary(math.Log1p, func(z complex128) complex128 {
		return cmplx.Log(1 + z)
	}))

	registerPredicates()
}

// registerPredicates installs the predicate kernels. Relaxed comparisons
// share the standard kernels.
func registerPredicates() {
	register(ir.OpIsZero, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Bool(a[0].IsZero())
	})
	register(ir.OpIsOne, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Bool(a[0].C() == 1)
	})
	register(ir.OpIsInteger, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		_, ok := integral(a[0].C())
		return scalar.Bool(ok)
	})
	register(ir.OpIsNoTangent, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Bool(a[0].IsSentinel())
	})
	register(ir.OpNot, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Bool(!a[0].Truth())
	})
	register(ir.OpAnd, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		for _, v := range a {
			if !v.Truth() {
				return scalar.Bool(false)
			}
		}
		return scalar.Bool(true)
	})
	register(ir.OpOr, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		for _, v := range a {
			if v.Truth() {
				return scalar.Bool(true)
			}
		}
		return scalar.Bool(false)
	})
	cmps := []struct {
		std, fast ir.Op
		f         func(a, b float64) bool
	}{
		{ir.OpEq, ir.OpEqFast, func(a, b float64) bool { return a == b }},
		{ir.OpLt, ir.OpLtFast, func(a, b float64) bool { return a < b }},
		{ir.OpGt, ir.OpGtFast, func(a, b float64) bool { return a > b }},
		{ir.OpLe, ir.OpLeFast, func(a, b float64) bool { return a <= b }},
		{ir.OpGe, ir.OpGeFast, func(a, b float64) bool { return a >= b }},
	}
	for _, c := range cmps {
		f := c.f
		k := func(_ scalar.Domain, a []scalar.Value) scalar.Value {
			return scalar.Bool(f(a[0].Re(), a[1].Re()))
		}
		register(c.std, k)
		register(c.fast, k)
	}
}

// add folds +, treating sentinels as the identity.
func add(_ scalar.Domain, args []scalar.Value) scalar.Value {
	acc := scalar.Zero()
	for _, a := range args {
		switch {
		case a.IsSentinel():
		case acc.IsSentinel():
			acc = a
		default:
			acc = scalar.Of(acc.C() + a.C())
		}
	}
	return acc
}

func sub(_ scalar.Domain, args []scalar.Value) scalar.Value {
	a, b := args[0], args[1]
	switch {
	case b.IsSentinel():
		return a
	case a.IsSentinel():
		return scalar.Of(-b.C())
	}
	return scalar.Of(a.C() - b.C())
}

// mul folds *, absorbing into Zero when any operand is a sentinel.
func mul(_ scalar.Domain, args []scalar.Value) scalar.Value {
	if len(args) == 0 {
		return scalar.Float(1)
	}
	acc := complex128(1)
	for _, a := range args {
		if a.IsSentinel() {
			return scalar.Zero()
		}
		acc = mulC(acc, a.C())
	}
	return scalar.Of(acc)
}

func div(_ scalar.Domain, args []scalar.Value) scalar.Value {
	if args[0].IsSentinel() {
		return scalar.Zero()
	}
	return scalar.Of(divC(args[0].C(), args[1].C()))
}

func neg(_ scalar.Domain, args []scalar.Value) scalar.Value {
	if args[0].IsSentinel() {
		return args[0]
	}
	return scalar.Of(-args[0].C())
}

func muladd(d scalar.Domain, args []scalar.Value) scalar.Value {
	a, b, c := args[0], args[1], args[2]
	if a.IsSentinel() || b.IsSentinel() {
		return c
	}
	if c.IsSentinel() {
		return mul(d, args[:2])
	}
	return scalar.Of(mulC(a.C(), b.C()) + c.C())
}

func fma(d scalar.Domain, args []scalar.Value) scalar.Value {
	a, b, c := args[0], args[1], args[2]
	if a.IsSentinel() || b.IsSentinel() || c.IsSentinel() {
		return muladd(d, args)
	}
	if d == scalar.Real || (a.Im() == 0 && b.Im() == 0 && c.Im() == 0) {
		return scalar.Float(math.FMA(a.Re(), b.Re(), c.Re()))
	}
	return scalar.Of(a.C()*b.C() + c.C())
}

// linear lifts a sentinel-preserving map.
func linear(f func(complex128) complex128) Func {
	return func(_ scalar.Domain, args []scalar.Value) scalar.Value {
		if args[0].IsSentinel() {
			return args[0]
		}
		return scalar.Of(f(args[0].C()))
	}
}

// unary selects the real or complex implementation by domain.
func unary(re func(float64) float64, c func(complex128) complex128) Func {
	return func(d scalar.Domain, args []scalar.Value) scalar.Value {
		if d == scalar.Real {
			return scalar.Float(re(args[0].Re()))
		}
		return scalar.Of(c(args[0].C()))
	}
}

func binaryReal(f func(a, b float64) float64) Func {
	return func(_ scalar.Domain, args []scalar.Value) scalar.Value {
		return scalar.Float(f(args[0].Re(), args[1].Re()))
	}
}

func scale(k float64) Func {
	return func(_ scalar.Domain, args []scalar.Value) scalar.Value {
		return scalar.Of(mulC(args[0].C(), complex(k, 0)))
	}
}

// mulC multiplies, staying in real arithmetic when both operands are real so
// that Inf*x does not leak a NaN imaginary part.
func mulC(a, b complex128) complex128 {
	if imag(a) == 0 && imag(b) == 0 {
		return complex(real(a)*real(b), 0)
	}
	return a * b
}

func divC(a, b complex128) complex128 {
	if imag(a) == 0 && imag(b) == 0 {
		return complex(real(a)/real(b), 0)
	}
	if b == 0 {
		if a == 0 {
			return cmplx.NaN()
		}
		return cmplx.Inf()
	}
	return a / b
}

func signF(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x // ±0 and NaN
}

func modF(x, y float64) float64 {
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}
