package scalar_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainrules/internal/scalar"
)

func TestValue_Sentinels(t *testing.T) {
	var unset scalar.Value
	assert.True(t, unset.IsSentinel(), "zero Value is the Zero sentinel")
	assert.False(t, unset.IsNone())
	assert.Equal(t, scalar.Zero(), unset)

	none := scalar.None()
	assert.True(t, none.IsSentinel())
	assert.True(t, none.IsNone())
	assert.Equal(t, complex128(0), none.C())
	assert.True(t, none.IsZero())

	assert.Equal(t, "ZeroTangent", scalar.Zero().String())
	assert.Equal(t, "NoTangent", none.String())
}

func TestValue_Numbers(t *testing.T) {
	v := scalar.Cmplx(1, -2)
	assert.False(t, v.IsSentinel())
	assert.Equal(t, 1.0, v.Re())
	assert.Equal(t, -2.0, v.Im())
	assert.Equal(t, complex(1, -2), v.C())

	f := scalar.Float(0)
	assert.False(t, f.IsSentinel(), "numeric zero is not the sentinel")
	assert.True(t, f.IsZero())

	assert.Equal(t, "2.5", scalar.Float(2.5).String())
	assert.True(t, scalar.Of(complex(math.NaN(), 0)).IsNaN())
	assert.True(t, scalar.Bool(true).Truth())
	assert.False(t, scalar.Bool(false).Truth())
}

func TestRealDot(t *testing.T) {
	a := scalar.Cmplx(1, 2)
	b := scalar.Cmplx(3, -4)
	// Re(conj(1+2i)·(3-4i)) = Re((1-2i)(3-4i)) = 3 - 8 = -5
	assert.Equal(t, -5.0, scalar.RealDot(a, b))
	assert.Equal(t, 0.0, scalar.RealDot(scalar.Zero(), b))
}

func TestProject(t *testing.T) {
	v := scalar.Cmplx(1.5, 2)
	assert.Equal(t, scalar.Float(1.5), scalar.Project(scalar.Real, v))
	assert.Equal(t, v, scalar.Project(scalar.Complex, v))
	assert.Equal(t, v, scalar.Project(scalar.Number, v))
	assert.True(t, scalar.Project(scalar.Discrete, v).IsNone())
	assert.Equal(t, scalar.Zero(), scalar.Project(scalar.Real, scalar.Zero()))
}

func TestClose(t *testing.T) {
	assert.True(t, scalar.Close(scalar.Float(1), scalar.Float(1+1e-12), 0, 1e-9))
	assert.False(t, scalar.Close(scalar.Float(1), scalar.Float(1.1), 1e-3, 1e-3))
	assert.True(t, scalar.Close(scalar.Zero(), scalar.Float(0), 0, 0))
	nan := scalar.Float(math.NaN())
	assert.False(t, scalar.Close(nan, nan, 1, 1))
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name     string
		declared scalar.Domain
		actual   scalar.Domain
		want     bool
	}{
		{"number accepts real", scalar.Number, scalar.Real, true},
		{"number accepts complex", scalar.Number, scalar.Complex, true},
		{"number rejects discrete", scalar.Number, scalar.Discrete, false},
		{"real rejects complex", scalar.Real, scalar.Complex, false},
		{"complex accepts complex", scalar.Complex, scalar.Complex, true},
		{"discrete accepts discrete", scalar.Discrete, scalar.Discrete, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.declared.Accepts(tt.actual))
		})
	}

	assert.Equal(t, scalar.Real, scalar.Join(scalar.Real, scalar.Discrete))
	assert.Equal(t, scalar.Complex, scalar.Join(scalar.Real, scalar.Complex))
	assert.Equal(t, scalar.Complex, scalar.Join(scalar.Number))
	assert.False(t, scalar.Discrete.Differentiable())

	for _, d := range []scalar.Domain{scalar.Number, scalar.Real, scalar.Complex, scalar.Discrete} {
		got, err := scalar.ParseDomain(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := scalar.ParseDomain("Quaternion")
	assert.Error(t, err)
}
