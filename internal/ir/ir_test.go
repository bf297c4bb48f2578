package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/chainrules/internal/ir"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		node *ir.Node
		want string
	}{
		{"const", ir.C(2), "2"},
		{"imaginary", ir.I(), "1im"},
		{"complex", ir.CC(complex(1, -0.5)), "1-0.5im"},
		{"nested", ir.Mul(ir.Cotangent(), ir.Conj(ir.Arg(1))), "(* dΩ (conj x1))"},
		{"ref", ir.Add(ir.C(1), ir.Pow(ir.Primal(), ir.C(2))), "(+ 1 (^ Ω 2))"},
		{"spread", ir.Add(ir.Tangents(0)), "(+ dts[0:])"},
		{"each", ir.Add(ir.Each(0, ir.Mul(ir.SlotTangent(), ir.Others(0)))), "(+ (each[0:] (* dt[k] others[0:])))"},
		{"nil", nil, "_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ir.Format(tt.node))
		})
	}

	b := ir.Binding{Names: []string{"s", "c"}, Expr: ir.Call(ir.OpSinCos, ir.Arg(0))}
	assert.Equal(t, "s, c = (sincos x0)", ir.FormatBinding(b))
}

func TestRewrite_DoesNotMutate(t *testing.T) {
	orig := ir.Mul(ir.Call(ir.OpSin, ir.Arg(0)), ir.Tangent(0))
	before := ir.Format(orig)

	out := ir.MapOps(orig, map[ir.Op]ir.Op{ir.OpSin: ir.OpSinFast, ir.OpMul: ir.OpMulFast})

	assert.Equal(t, before, ir.Format(orig), "input must be left untouched")
	assert.Equal(t, "(mul_fast (sin_fast x0) dx0)", ir.Format(out))
	require.Len(t, out.Args, 2)
	assert.NotSame(t, orig.Args[0], out.Args[0])
}

func TestCountOpsAndRefs(t *testing.T) {
	n := ir.Add(ir.Ref("a"), ir.Mul(ir.Ref("b"), ir.Ref("a")), ir.C(1))
	assert.Equal(t, []string{"a", "b"}, ir.Refs(n))
	assert.Equal(t, 3, ir.CountOps(n, func(op ir.Op) bool { return op == ir.OpRef }))
	assert.Equal(t, 1, ir.CountOps(n, func(op ir.Op) bool { return op == ir.OpMul }))
}

func TestStampPos(t *testing.T) {
	pinned := ir.Pos{File: "a.go", Line: 1}
	leaf := ir.Arg(0)
	leaf.Pos = pinned
	n := ir.Neg(leaf)

	ir.StampPos(n, ir.Pos{File: "b.go", Line: 2})
	assert.Equal(t, "b.go:2", n.Pos.String())
	assert.Equal(t, pinned, leaf.Pos, "existing positions are kept")
	assert.Equal(t, "-", ir.Pos{}.String())
}

func TestOps(t *testing.T) {
	for _, op := range ir.Ops() {
		assert.True(t, op.Valid(), op.String())
	}
	assert.False(t, ir.OpInvalid.Valid())

	assert.Equal(t, "*", ir.OpMul.Func())
	assert.Equal(t, "*", ir.OpMulFast.Func(), "relaxed ops share the function symbol")
	assert.Equal(t, "atan", ir.OpAtan2.Func())
	assert.Equal(t, "", ir.OpSinCos.Func())
	assert.True(t, ir.OpSinFast.Fast())
	assert.False(t, ir.OpSin.Fast())
	assert.Equal(t, ir.Variadic, ir.OpAdd.Arity())
	assert.Equal(t, 2, ir.OpDiv.Arity())
}

func TestClone(t *testing.T) {
	n := ir.Div(ir.Arg(0), ir.C(2))
	cp := ir.Clone(n)
	assert.Equal(t, ir.Format(n), ir.Format(cp))
	cp.Args[1].Const = 3
	assert.Equal(t, complex128(2), n.Args[1].Const)
}
