package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/dual"

	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/scalar"
)

// Forward tangents of the real rules agree with dual-number arithmetic.
func TestForward_MatchesDualNumbers(t *testing.T) {
	unary := []struct {
		fn string
		f  func(dual.Number) dual.Number
		x  float64
	}{
		{"sin", dual.Sin, 0.7},
		{"cos", dual.Cos, -1.2},
		{"tan", dual.Tan, 0.4},
		{"asin", dual.Asin, 0.3},
		{"acos", dual.Acos, -0.6},
		{"atan", dual.Atan, 2.5},
		{"sinh", dual.Sinh, 0.9},
		{"cosh", dual.Cosh, -0.4},
		{"tanh", dual.Tanh, 0.2},
		{"exp", dual.Exp, 1.3},
		{"log", dual.Log, 3.2},
		{"sqrt", dual.Sqrt, 2.0},
		{"inv", dual.Inv, -4.0},
	}
	for _, tt := range unary {
		t.Run(tt.fn, func(t *testing.T) {
			fwd, ok := standard().Forward(rules.Call(tt.fn, scalar.Real))
			require.True(t, ok)
			omega, d, err := fwd.Apply(reals(1), scalar.Float(tt.x))
			require.NoError(t, err)

			want := tt.f(dual.Number{Real: tt.x, Emag: 1})
			assert.InDelta(t, want.Real, omega.Re(), 1e-12)
			assert.InDelta(t, want.Emag, d.Re(), 1e-12)
		})
	}

	t.Run("pow", func(t *testing.T) {
		fwd, ok := standard().Forward(realCall("^", 2))
		require.True(t, ok)
		x, p := 1.7, 2.3
		seeds := [][2]float64{{1, 0}, {0, 1}, {0.5, -2}}
		for _, s := range seeds {
			_, d, err := fwd.Apply(reals(s[0], s[1]), reals(x, p)...)
			require.NoError(t, err)
			want := dual.Pow(dual.Number{Real: x, Emag: s[0]}, dual.Number{Real: p, Emag: s[1]})
			assert.InDelta(t, want.Emag, d.Re(), 1e-12, "seed %v", s)
		}
	})

	t.Run("product", func(t *testing.T) {
		fwd, ok := standard().Forward(realCall("*", 3))
		require.True(t, ok)
		args := []float64{1.5, -2, 0.25}
		dts := []float64{0.3, 1, -1}
		_, d, err := fwd.Apply(reals(dts...), reals(args...)...)
		require.NoError(t, err)
		want := dual.Mul(dual.Mul(
			dual.Number{Real: args[0], Emag: dts[0]},
			dual.Number{Real: args[1], Emag: dts[1]}),
			dual.Number{Real: args[2], Emag: dts[2]})
		assert.InDelta(t, want.Emag, d.Re(), 1e-12)
	})
}
