package kernels

import (
	"math"
	"math/cmplx"

	"github.com/ajroetker/go-highway/hwy"
	hwymath "github.com/ajroetker/go-highway/hwy/contrib/math"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/scalar"
)

// Relaxed kernels assume finite, non-NaN operands. Real transcendental
// kernels run go-highway's polynomial approximations on a single broadcast
// vector; complex ones use the textbook formulas without the overflow and
// branch-cut care of math/cmplx.
func init() {
	register(ir.OpAddFast, add)
	register(ir.OpSubFast, sub)
	register(ir.OpMulFast, mul)
	register(ir.OpNegFast, neg)
	register(ir.OpConjFast, linear(cmplx.Conj))
	register(ir.OpDivFast, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		if a[0].IsSentinel() {
			return scalar.Zero()
		}
		return scalar.Of(mulC(a[0].C(), recip(a[1].C())))
	})
	register(ir.OpInvFast, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Of(recip(a[0].C()))
	})
	register(ir.OpPowFast, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		return scalar.Of(powFast(d, a[0].C(), a[1].C()))
	})
	register(ir.OpSqrtFast, unary(math.Sqrt, cmplx.Sqrt))
	register(ir.OpCbrtFast, unary(poly(hwymath.BaseCbrtPoly[float64]), func(z complex128) complex128 {
		return cmplx.Exp(cmplx.Log(z) / 3)
	}))
	register(ir.OpAbsFast, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		if d == scalar.Real {
			return scalar.Float(math.Abs(a[0].Re()))
		}
		return scalar.Float(absFast(a[0].C()))
	})
	register(ir.OpAbs2Fast, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		re, im := a[0].Re(), a[0].Im()
		return scalar.Float(re*re + im*im)
	})
	register(ir.OpAngleFast, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		if d == scalar.Real {
			if a[0].Re() < 0 {
				return scalar.Float(math.Pi)
			}
			return scalar.Float(0)
		}
		return scalar.Float(poly2(hwymath.BaseAtan2Poly[float64])(a[0].Im(), a[0].Re()))
	})
	register(ir.OpSignFast, func(d scalar.Domain, a []scalar.Value) scalar.Value {
		if d == scalar.Real {
			return scalar.Float(signF(a[0].Re()))
		}
		z := a[0].C()
		if z == 0 {
			return scalar.Float(0)
		}
		return scalar.Of(z * complex(1/absFast(z), 0))
	})
	register(ir.OpHypotFast, func(_ scalar.Domain, a []scalar.Value) scalar.Value {
		s := 0.0
		for _, v := range a {
			re, im := v.Re(), v.Im()
			s += re*re + im*im
		}
		return scalar.Float(math.Sqrt(s))
	})
	register(ir.OpMaxFast, binaryReal(func(a, b float64) float64 {
		if a > b {
			return a
		}
		return b
	}))
	register(ir.OpMinFast, binaryReal(func(a, b float64) float64 {
		if a < b {
			return a
		}
		return b
	}))
	register(ir.OpModFast, binaryReal(func(x, y float64) float64 {
		return x - y*math.Floor(x/y)
	}))

	register(ir.OpSinFast, unary(poly(hwymath.BaseSinPoly[float64]), cmplx.Sin))
	register(ir.OpCosFast, unary(poly(hwymath.BaseCosPoly[float64]), cmplx.Cos))
	registerPair(ir.OpSinCosFast, func(d scalar.Domain, x scalar.Value) (scalar.Value, scalar.Value) {
		if d == scalar.Real {
			s, c := sinCosPoly(x.Re())
			return scalar.Float(s), scalar.Float(c)
		}
		return scalar.Of(cmplx.Sin(x.C())), scalar.Of(cmplx.Cos(x.C()))
	})
	register(ir.OpTanFast, unary(poly(hwymath.BaseTanPoly[float64]), func(z complex128) complex128 {
		return cmplx.Sin(z) / cmplx.Cos(z)
	}))
	register(ir.OpAsinFast, unary(poly(hwymath.BaseAsinPoly[float64]), cmplx.Asin))
	register(ir.OpAcosFast, unary(poly(hwymath.BaseAcosPoly[float64]), cmplx.Acos))
	register(ir.OpAtanFast, unary(poly(hwymath.BaseAtanPoly[float64]), cmplx.Atan))
	register(ir.OpAtan2Fast, binaryReal(poly2(hwymath.BaseAtan2Poly[float64])))
	register(ir.OpSinhFast, unary(poly(hwymath.BaseSinhPoly[float64]), func(z complex128) complex128 {
		return (cmplx.Exp(z) - cmplx.Exp(-z)) / 2
	}))
	register(ir.OpCoshFast, unary(poly(hwymath.BaseCoshPoly[float64]), func(z complex128) complex128 {
		return (cmplx.Exp(z) + cmplx.Exp(-z)) / 2
	}))
	register(ir.OpTanhFast, unary(poly(hwymath.BaseTanhPoly[float64]), cmplx.Tanh))
	register(ir.OpExpFast, unary(poly(hwymath.BaseExpPoly[float64]), cmplx.Exp))
	register(ir.OpExp2Fast, unary(poly(hwymath.BaseExp2Poly[float64]), func(z complex128) complex128 {
		return cmplx.Exp(z * math.Ln2)
	}))
	register(ir.OpExp10Fast, unary(poly(hwymath.BaseExp10Poly[float64]), func(z complex128) complex128 {
		return cmplx.Exp(z * math.Ln10)
	}))
	register(ir.OpExpm1Fast, unary(poly(hwymath.BaseExpm1Poly[float64]), func(z complex128) complex128 {
		return cmplx.Exp(z) - 1
	}))
	register(ir.OpLogFast, unary(poly(hwymath.BaseLogPoly[float64]), cmplx.Log))
	register(ir.OpLog2Fast, unary(poly(hwymath.BaseLog2Poly[float64]), func(z complex128) complex128 {
		return cmplx.Log(z) * (1 / math.Ln2)
	}))
	register(ir.OpLog10Fast, unary(poly(hwymath.BaseLog10Poly[float64]), func(z complex128) complex128 {
		return cmplx.Log(z) * (1 / math.Ln10)
	}))
	register(ir.OpLog1pFast, unary(poly(hwymath.BaseLog1pPoly[float64]), func(z complex128) complex128 {
		return cmplx.Log(1 + z)
	}))
}

// poly adapts a go-highway slice kernel to a scalar function by filling one
// full vector with x and reading back the first lane.
func poly(kernel func(input, output []float64)) func(float64) float64 {
	return func(x float64) float64 {
		n := hwy.MaxLanes[float64]()
		in := make([]float64, n)
		out := make([]float64, n)
		for i := range in {
			in[i] = x
		}
		kernel(in, out)
		return out[0]
	}
}

func poly2(kernel func(a, b, output []float64)) func(float64, float64) float64 {
	return func(x, y float64) float64 {
		n := hwy.MaxLanes[float64]()
		a := make([]float64, n)
		b := make([]float64, n)
		out := make([]float64, n)
		for i := range a {
			a[i], b[i] = x, y
		}
		kernel(a, b, out)
		return out[0]
	}
}

func sinCosPoly(x float64) (float64, float64) {
	n := hwy.MaxLanes[float64]()
	in := make([]float64, n)
	s := make([]float64, n)
	c := make([]float64, n)
	for i := range in {
		in[i] = x
	}
	hwymath.BaseSinCosPoly(in, s, c)
	return s[0], c[0]
}

func powFast(d scalar.Domain, x, p complex128) complex128 {
	if n, ok := integral(p); ok {
		if d == scalar.Real {
			return complex(powiF(real(x), n), 0)
		}
		return powiC(x, n)
	}
	if d == scalar.Real {
		return complex(poly2(hwymath.BasePowPoly[float64])(real(x), real(p)), 0)
	}
	return cmplx.Exp(p * cmplx.Log(x))
}

func recip(c complex128) complex128 {
	if imag(c) == 0 {
		return complex(1/real(c), 0)
	}
	return 1 / c
}

func absFast(z complex128) float64 {
	re, im := real(z), imag(z)
	return math.Sqrt(re*re + im*im)
}
