package fastmath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainrules/internal/fastmath"
	"github.com/born-ml/chainrules/internal/ir"
	"github.com/born-ml/chainrules/internal/rules"
	"github.com/born-ml/chainrules/internal/scalar"
	"github.com/born-ml/chainrules/internal/validate"
)

func transform(t *testing.T, cat *rules.Catalogue) *rules.Catalogue {
	t.Helper()
	fast, err := fastmath.Transform(cat, fastmath.DefaultTable())
	require.NoError(t, err)
	return fast
}

func TestTransform_KeepsKeys(t *testing.T) {
	std := rules.Standard()
	fast := transform(t, std)
	assert.Equal(t, std.Keys(), fast.Keys())
}

func TestTransform_LeavesInputUntouched(t *testing.T) {
	std := rules.Standard()
	before := make(map[string][]string)
	for _, r := range std.Rules() {
		for _, b := range r.Bodies() {
			before[r.Key()] = append(before[r.Key()], ir.Format(b))
		}
	}

	transform(t, std)

	for _, r := range std.Rules() {
		var after []string
		for _, b := range r.Bodies() {
			after = append(after, ir.Format(b))
		}
		assert.Equal(t, before[r.Key()], after, r.Key())
		for _, b := range r.Bodies() {
			assert.Zero(t, ir.CountOps(b, ir.Op.Fast), "%s gained a relaxed operator", r.Key())
		}
	}
}

func TestTransform_Deterministic(t *testing.T) {
	std := rules.Standard()
	a, b := transform(t, std), transform(t, std)
	for _, key := range std.Keys() {
		ra, _ := a.Rule(key)
		rb, _ := b.Rule(key)
		assert.True(t, validate.Identical(ra, rb), key)
	}
}

func TestTransform_RewritesOperators(t *testing.T) {
	fast := transform(t, rules.Standard())

	sin, ok := fast.Rule("sin(Number)")
	require.True(t, ok)
	require.Len(t, sin.Setup, 1)
	assert.Equal(t, ir.OpSinCosFast, sin.Setup[0].Expr.Op)
	assert.Equal(t, []string{"sinx", "cosx"}, sin.Setup[0].Names, "bindings keep their names")

	prod, ok := fast.Rule("*(Number, Number, Number, Number...)")
	require.True(t, ok)
	require.NotNil(t, prod.Split)
	assert.Equal(t, ir.OpMulFast, prod.Split.Callee)
	assert.Equal(t, 3, prod.Split.Head)

	mod, ok := fast.Rule("mod(Real, Real)")
	require.True(t, ok)
	for _, b := range mod.Bodies() {
		// Branches and predicates without a relaxed form survive as is.
		assert.Zero(t, ir.CountOps(b, func(op ir.Op) bool { return op == ir.OpMod || op == ir.OpDiv }))
	}
	assert.Positive(t, ir.CountOps(mod.Primal, func(op ir.Op) bool { return op == ir.OpModFast }))
}

func TestTransform_FastRulesEvaluate(t *testing.T) {
	std := rules.Standard()
	fast := transform(t, std)
	for _, call := range []rules.Signature{
		rules.Call("sin", scalar.Real),
		rules.Call("exp", scalar.Real),
		rules.Call("^", scalar.Real, scalar.Real),
		rules.Call("*", scalar.Real, scalar.Real, scalar.Real, scalar.Real, scalar.Real),
	} {
		args := make([]scalar.Value, len(call.Args))
		for i := range args {
			args[i] = scalar.Float(0.5 + 0.25*float64(i))
		}
		sr, ok := std.Reverse(call)
		require.True(t, ok)
		fr, ok := fast.Reverse(call)
		require.True(t, ok)

		want, spb, err := sr.Apply(args...)
		require.NoError(t, err)
		got, fpb, err := fr.Apply(args...)
		require.NoError(t, err)
		assert.True(t, scalar.Close(want, got, 1e-4, 1e-4), "%v primal: want %v, got %v", call, want, got)

		wg, err := spb(scalar.Float(1))
		require.NoError(t, err)
		fg, err := fpb(scalar.Float(1))
		require.NoError(t, err)
		require.Len(t, fg, len(wg))
		for i := range wg {
			assert.True(t, scalar.Close(wg[i], fg[i], 1e-4, 1e-4), "%v slot %d: want %v, got %v", call, i, wg[i], fg[i])
		}
	}
}

func TestTable_Validate(t *testing.T) {
	require.NoError(t, fastmath.DefaultTable().Validate())

	tests := []struct {
		name  string
		table fastmath.Table
	}{
		{"not relaxed", fastmath.Table{ir.OpSin: ir.OpCos}},
		{"backwards", fastmath.Table{ir.OpSinFast: ir.OpSin}},
		{"arity", fastmath.Table{ir.OpSin: ir.OpAtan2Fast}},
		{"invalid", fastmath.Table{ir.OpInvalid: ir.OpSinFast}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.table.Validate())
			_, err := fastmath.Transform(rules.Standard(), tt.table)
			assert.Error(t, err)
		})
	}
}

func TestTable_Op(t *testing.T) {
	table := fastmath.DefaultTable()
	assert.Equal(t, ir.OpTanFast, table.Op(ir.OpTan))
	assert.Equal(t, ir.OpSelect, table.Op(ir.OpSelect))
	assert.Equal(t, ir.OpReal, table.Op(ir.OpReal))
}
