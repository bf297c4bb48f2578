package registry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/born-ml/chainrules/internal/fastmath"
	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/registry"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/scalar"
	"github.com/born-ml/chainrules/internal/validate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func untransformable() *rules.Catalogue {
	return rules.MustCatalogue(&rules.Rule{
		Sig:      rules.Sig("re", scalar.Number),
		Codomain: scalar.Real,
		Primal:   ir.Re(ir.Arg(0)),
		Forward:  ir.Re(ir.Tangent(0)),
		Pullback: []*ir.Node{ir.Re(ir.Cotangent())},
	})
}

func TestInit_PublishesOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	calls := 0
	r := registry.New(
		registry.WithLogger(zap.New(core)),
		registry.WithDeclarations(func() *rules.Catalogue {
			calls++
			return rules.Standard()
		}),
	)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Init())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	entries := logs.FilterMessage("rule catalogues published").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(52), entries[0].ContextMap()["rules"])
	assert.Same(t, r.Catalogue(registry.Standard), r.Catalogue(registry.Standard))
}

func TestLookup_FollowsMode(t *testing.T) {
	r := registry.New()
	call := rules.Call("tan", scalar.Real)

	assert.Equal(t, registry.Standard, r.Mode())
	std, ok := r.LookupReverse(call)
	require.True(t, ok)
	assert.Zero(t, ir.CountOps(std.Rule().Primal, ir.Op.Fast))

	r.SetMode(registry.Fast)
	assert.Equal(t, registry.Fast, r.Mode())
	fast, ok := r.LookupReverse(call)
	require.True(t, ok)
	assert.Equal(t, std.Rule().Key(), fast.Rule().Key())
	assert.Positive(t, ir.CountOps(fast.Rule().Primal, ir.Op.Fast))

	fwd, ok := r.LookupForwardIn(registry.Standard, call)
	require.True(t, ok)
	assert.Same(t, std.Rule(), fwd.Rule(), "explicit mode ignores the ambient one")

	_, ok = r.LookupDerivatives(call)
	assert.True(t, ok)
	_, ok = r.LookupForward(rules.Call("nosuch", scalar.Real))
	assert.False(t, ok)
}

func TestWithMode(t *testing.T) {
	r := registry.New(registry.WithMode(registry.Fast))
	assert.Equal(t, registry.Fast, r.Mode())
	assert.NotSame(t, r.Catalogue(registry.Standard), r.Catalogue(registry.Fast))
}

func TestConcurrentLookups(t *testing.T) {
	r := registry.New()
	call := rules.Call("*", scalar.Real, scalar.Real, scalar.Real, scalar.Real)
	args := []scalar.Value{scalar.Float(1), scalar.Float(2), scalar.Float(3), scalar.Float(4)}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := registry.Standard
			if i%2 == 1 {
				m = registry.Fast
			}
			rr, ok := r.LookupReverseIn(m, call)
			if !assert.True(t, ok) {
				return
			}
			omega, pb, err := rr.Apply(args...)
			if !assert.NoError(t, err) {
				return
			}
			assert.InDelta(t, 24, omega.Re(), 1e-4)
			grads, err := pb(scalar.Float(1))
			assert.NoError(t, err)
			assert.Len(t, grads, 4)
		}(i)
	}
	wg.Wait()
}

func TestInit_RejectsUnchangedRule(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := registry.New(
		registry.WithLogger(zap.New(core)),
		registry.WithDeclarations(untransformable),
	)

	err := r.Init()
	var cfg *validate.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"re(Number)"}, cfg.Keys())
	assert.Equal(t, err, r.Init(), "the outcome is sticky")
	assert.Equal(t, 1, logs.FilterMessage("rule catalogue rejected").Len())

	assert.PanicsWithError(t, err.Error(), func() {
		r.LookupForward(rules.Call("re", scalar.Real))
	})
}

func TestInit_InvalidTable(t *testing.T) {
	r := registry.New(registry.WithTable(fastmath.Table{ir.OpSin: ir.OpCos}))
	assert.Error(t, r.Init())
	assert.Panics(t, func() { r.Catalogue(registry.Fast) })
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want registry.Mode
	}{
		{"standard", registry.Standard},
		{"", registry.Standard},
		{"FAST", registry.Fast},
		{" fast ", registry.Fast},
	}
	for _, tt := range tests {
		got, err := registry.ParseMode(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := registry.ParseMode("turbo")
	assert.Error(t, err)
	assert.Equal(t, "Mode(7)", registry.Mode(7).String())
}

func TestDefault(t *testing.T) {
	defer registry.SetMode(registry.CurrentMode())

	registry.SetMode(registry.Standard)
	_, ok := registry.LookupReverse(rules.Call("exp", scalar.Complex))
	assert.True(t, ok)
	registry.SetMode(registry.Fast)
	assert.Equal(t, registry.Fast, registry.Default().Mode())
	rr, ok := registry.LookupReverse(rules.Call("exp", scalar.Complex))
	require.True(t, ok)
	assert.Positive(t, ir.CountOps(rr.Rule().Primal, ir.Op.Fast))
	_, ok = registry.LookupDerivatives(rules.Call("exp", scalar.Real))
	assert.True(t, ok)
	_, ok = registry.LookupForward(rules.Call("exp", scalar.Real))
	assert.True(t, ok)
}
