package kernels_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/kernels"
	"github.com/born-ml/chainrules/internal/scalar"
)

func apply(t *testing.T, op ir.Op, d scalar.Domain, args ...scalar.Value) scalar.Value {
	t.Helper()
	v, err := kernels.Apply(op, d, args...)
	require.NoError(t, err)
	return v
}

func TestApply_Standard(t *testing.T) {
	tests := []struct {
		name string
		op   ir.Op
		d    scalar.Domain
		args []scalar.Value
		want complex128
	}{
		{"add", ir.OpAdd, scalar.Real, []scalar.Value{scalar.Float(1), scalar.Float(2), scalar.Float(3)}, 6},
		{"mul complex", ir.OpMul, scalar.Complex, []scalar.Value{scalar.Cmplx(0, 1), scalar.Cmplx(0, 1)}, -1},
		{"sqrt real negative", ir.OpSqrt, scalar.Real, []scalar.Value{scalar.Float(-1)}, complex(math.NaN(), 0)},
		{"sqrt complex negative", ir.OpSqrt, scalar.Complex, []scalar.Value{scalar.Float(-1)}, 1i},
		{"pow integral negative base", ir.OpPow, scalar.Real, []scalar.Value{scalar.Float(-2), scalar.Float(3)}, -8},
		{"pow real fractional", ir.OpPow, scalar.Real, []scalar.Value{scalar.Float(4), scalar.Float(0.5)}, 2},
		{"hypot", ir.OpHypot, scalar.Real, []scalar.Value{scalar.Float(3), scalar.Float(4)}, 5},
		{"angle of negative real", ir.OpAngle, scalar.Real, []scalar.Value{scalar.Float(-1)}, math.Pi},
		{"sign complex", ir.OpSign, scalar.Complex, []scalar.Value{scalar.Cmplx(3, 4)}, complex(0.6, 0.8)},
		{"sign zero", ir.OpSign, scalar.Complex, []scalar.Value{scalar.Cmplx(0, 0)}, 0},
		{"mod follows divisor sign", ir.OpMod, scalar.Real, []scalar.Value{scalar.Float(-1), scalar.Float(3)}, 2},
		{"rem2pi nearest", ir.OpRem2Pi, scalar.Real, []scalar.Value{scalar.Float(7), scalar.Float(0)}, complex(7-2*math.Pi, 0)},
		{"atan2", ir.OpAtan2, scalar.Real, []scalar.Value{scalar.Float(1), scalar.Float(1)}, math.Pi / 4},
		{"muladd", ir.OpMuladd, scalar.Real, []scalar.Value{scalar.Float(2), scalar.Float(3), scalar.Float(1)}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(t, tt.op, tt.d, tt.args...).C()
			if cmplx.IsNaN(tt.want) {
				assert.True(t, cmplx.IsNaN(got), "got %v", got)
				return
			}
			assert.InDelta(t, real(tt.want), real(got), 1e-12)
			assert.InDelta(t, imag(tt.want), imag(got), 1e-12)
		})
	}
}

func TestApply_Sentinels(t *testing.T) {
	zero := scalar.Zero()
	two := scalar.Float(2)

	assert.Equal(t, two, apply(t, ir.OpAdd, scalar.Real, zero, two), "Zero is the additive identity")
	assert.Equal(t, zero, apply(t, ir.OpAdd, scalar.Real, zero, zero))
	assert.Equal(t, zero, apply(t, ir.OpMul, scalar.Real, two, zero), "Zero absorbs products")
	assert.Equal(t, zero, apply(t, ir.OpDiv, scalar.Real, zero, two))
	assert.Equal(t, scalar.Float(-2), apply(t, ir.OpSub, scalar.Real, zero, two))
	assert.Equal(t, zero, apply(t, ir.OpNeg, scalar.Real, zero))
	assert.Equal(t, two, apply(t, ir.OpMuladd, scalar.Real, zero, two, two))
	assert.Equal(t, scalar.Float(1), apply(t, ir.OpIsNoTangent, scalar.Real, zero))
}

func TestApply_Errors(t *testing.T) {
	_, err := kernels.Apply(ir.OpArg, scalar.Real)
	assert.ErrorIs(t, err, kernels.ErrNoKernel)

	_, err = kernels.Apply(ir.OpDiv, scalar.Real, scalar.Float(1))
	assert.Error(t, err)

	assert.True(t, kernels.Has(ir.OpSinCos))
	assert.True(t, kernels.Has(ir.OpSinCosFast))
	assert.False(t, kernels.Has(ir.OpSelect))
}

// Every relaxed operator has a kernel, and on well-conditioned arguments it
// stays close to its standard counterpart.
func TestFastKernels_AgreeWithStandard(t *testing.T) {
	unaryOps := []struct {
		std, fast ir.Op
		x         float64
	}{
		{ir.OpSin, ir.OpSinFast, 0.7},
		{ir.OpCos, ir.OpCosFast, -1.3},
		{ir.OpTan, ir.OpTanFast, 0.4},
		{ir.OpAsin, ir.OpAsinFast, 0.3},
		{ir.OpAcos, ir.OpAcosFast, -0.2},
		{ir.OpAtan, ir.OpAtanFast, 1.5},
		{ir.OpSinh, ir.OpSinhFast, 0.8},
		{ir.OpCosh, ir.OpCoshFast, -0.6},
		{ir.OpTanh, ir.OpTanhFast, 0.5},
		{ir.OpExp, ir.OpExpFast, 1.1},
		{ir.OpExp2, ir.OpExp2Fast, 1.7},
		{ir.OpExp10, ir.OpExp10Fast, 0.3},
		{ir.OpExpm1, ir.OpExpm1Fast, 0.25},
		{ir.OpLog, ir.OpLogFast, 2.5},
		{ir.OpLog2, ir.OpLog2Fast, 3},
		{ir.OpLog10, ir.OpLog10Fast, 7},
		{ir.OpLog1p, ir.OpLog1pFast, 0.5},
		{ir.OpSqrt, ir.OpSqrtFast, 2},
		{ir.OpCbrt, ir.OpCbrtFast, 5},
		{ir.OpInv, ir.OpInvFast, 4},
		{ir.OpAbs, ir.OpAbsFast, -3},
		{ir.OpSign, ir.OpSignFast, -3},
	}
	for _, tt := range unaryOps {
		t.Run(tt.fast.String(), func(t *testing.T) {
			want := apply(t, tt.std, scalar.Real, scalar.Float(tt.x))
			got := apply(t, tt.fast, scalar.Real, scalar.Float(tt.x))
			assert.True(t, scalar.Close(want, got, 1e-4, 1e-4), "%v(%v): want %v, got %v", tt.fast, tt.x, want, got)
		})
	}

	binaryOps := []struct {
		std, fast ir.Op
		a, b      float64
	}{
		{ir.OpAtan2, ir.OpAtan2Fast, -0.5, 0.8},
		{ir.OpPow, ir.OpPowFast, 1.7, 2.3},
		{ir.OpPow, ir.OpPowFast, -1.5, 3},
		{ir.OpHypot, ir.OpHypotFast, 3, 4},
		{ir.OpMod, ir.OpModFast, 5.5, 2},
		{ir.OpMax, ir.OpMaxFast, 1, 2},
		{ir.OpMin, ir.OpMinFast, 1, 2},
		{ir.OpDiv, ir.OpDivFast, 1, 3},
	}
	for _, tt := range binaryOps {
		t.Run(tt.fast.String(), func(t *testing.T) {
			want := apply(t, tt.std, scalar.Real, scalar.Float(tt.a), scalar.Float(tt.b))
			got := apply(t, tt.fast, scalar.Real, scalar.Float(tt.a), scalar.Float(tt.b))
			assert.True(t, scalar.Close(want, got, 1e-4, 1e-4), "%v(%v, %v): want %v, got %v", tt.fast, tt.a, tt.b, want, got)
		})
	}

	// Complex relaxed kernels use the textbook formulas.
	z := scalar.Cmplx(0.3, -0.4)
	for _, pair := range [][2]ir.Op{
		{ir.OpSin, ir.OpSinFast},
		{ir.OpExp, ir.OpExpFast},
		{ir.OpLog, ir.OpLogFast},
		{ir.OpCbrt, ir.OpCbrtFast},
		{ir.OpAbs, ir.OpAbsFast},
		{ir.OpAngle, ir.OpAngleFast},
		{ir.OpSinh, ir.OpSinhFast},
	} {
		want := apply(t, pair[0], scalar.Complex, z)
		got := apply(t, pair[1], scalar.Complex, z)
		assert.True(t, scalar.Close(want, got, 1e-4, 1e-4), "%v(%v): want %v, got %v", pair[1], z, want, got)
	}
}

func TestSinCos(t *testing.T) {
	std, ok := kernels.LookupPair(ir.OpSinCos)
	require.True(t, ok)
	fast, ok := kernels.LookupPair(ir.OpSinCosFast)
	require.True(t, ok)

	s, c := std(scalar.Real, scalar.Float(0.5))
	assert.InDelta(t, math.Sin(0.5), s.Re(), 1e-15)
	assert.InDelta(t, math.Cos(0.5), c.Re(), 1e-15)

	fs, fc := fast(scalar.Real, scalar.Float(0.5))
	assert.InDelta(t, math.Sin(0.5), fs.Re(), 1e-4)
	assert.InDelta(t, math.Cos(0.5), fc.Re(), 1e-4)
}
