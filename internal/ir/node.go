// Package ir is the typed expression representation of differentiation rule
// bodies.
//
// Every rule's setup bindings, primal, pushforward, pullback and partials are
// trees of Nodes. Keeping the bodies as data (rather than Go closures) lets
// the relaxed-arithmetic transformer rewrite them with a plain op table and
// lets the validator compare the original and rewritten forms structurally.
//
// Node trees are immutable once built: passes copy, they never edit in place.
package ir

import "fmt"

// Pos is the source position a node was declared at. It is cosmetic: two
// trees that differ only in Pos are structurally identical.
type Pos struct {
	File string
	Line int
}

// String implements fmt.Stringer.
func (p Pos) String() string {
	if p.File == "" {
		return "-"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Node is one operator application or leaf.
//
// Field use by operator:
//   - OpConst: Const
//   - OpArg, OpTangent: Index is the argument position
//   - OpArgs, OpTangents, OpOthers, OpEach: Index is the first variadic position
//   - OpRef: Name is the setup binding
//   - all others: Args are the operands
type Node struct {
	Op    Op
	Args  []*Node
	Const complex128
	Index int
	Name  string
	Pos   Pos
}

// Binding names the value of a shared setup sub-computation. A binding with
// two names destructures a pair-valued expression (sincos).
type Binding struct {
	Names []string
	Expr  *Node
}

// Call applies op to operands.
func Call(op Op, args ...*Node) *Node {
	return &Node{Op: op, Args: args}
}

// C is a real constant.
func C(x float64) *Node {
	return &Node{Op: OpConst, Const: complex(x, 0)}
}

// CC is a complex constant.
func CC(c complex128) *Node {
	return &Node{Op: OpConst, Const: c}
}

// I is the imaginary unit.
func I() *Node { return CC(1i) }

// Arg reads argument i.
func Arg(i int) *Node { return &Node{Op: OpArg, Index: i} }

// Tangent reads the tangent of argument i.
func Tangent(i int) *Node { return &Node{Op: OpTangent, Index: i} }

// Cotangent reads the output cotangent inside a pullback.
func Cotangent() *Node { return &Node{Op: OpCotangent} }

// Ref reads a setup binding.
func Ref(name string) *Node { return &Node{Op: OpRef, Name: name} }

// Primal reads the primal output Ω.
func Primal() *Node { return &Node{Op: OpPrimal} }

// Args spreads arguments from..n-1 into the enclosing variadic operator.
func Args(from int) *Node { return &Node{Op: OpArgs, Index: from} }

// Tangents spreads tangents from..n-1 into the enclosing variadic operator.
func Tangents(from int) *Node { return &Node{Op: OpTangents, Index: from} }

// SlotArg reads the argument at the current Each slot.
func SlotArg() *Node { return &Node{Op: OpSlotArg} }

// SlotTangent reads the tangent at the current Each slot.
func SlotTangent() *Node { return &Node{Op: OpSlotTangent} }

// Others spreads arguments from..n-1 except the current Each slot.
func Others(from int) *Node { return &Node{Op: OpOthers, Index: from} }

// Each spreads body evaluated once per slot from..n-1.
func Each(from int, body *Node) *Node {
	return &Node{Op: OpEach, Index: from, Args: []*Node{body}}
}

// Select is the eager if-else: both branches are evaluated.
func Select(c, a, b *Node) *Node { return Call(OpSelect, c, a, b) }

// Cond is the lazy if-else: only the taken branch is evaluated.
func Cond(c, a, b *Node) *Node { return Call(OpCond, c, a, b) }

// Add folds operands with +.
func Add(xs ...*Node) *Node { return Call(OpAdd, xs...) }

// Sub is a - b.
func Sub(a, b *Node) *Node { return Call(OpSub, a, b) }

// Mul folds operands with *.
func Mul(xs ...*Node) *Node { return Call(OpMul, xs...) }

// Div is a / b.
func Div(a, b *Node) *Node { return Call(OpDiv, a, b) }

// Neg is -x.
func Neg(x *Node) *Node { return Call(OpNeg, x) }

// Inv is 1/x.
func Inv(x *Node) *Node { return Call(OpInv, x) }

// Pow is x^p.
func Pow(x, p *Node) *Node { return Call(OpPow, x, p) }

// Conj is the complex conjugate.
func Conj(x *Node) *Node { return Call(OpConj, x) }

// Re is the real part.
func Re(x *Node) *Node { return Call(OpReal, x) }

// Im is the imaginary part.
func Im(x *Node) *Node { return Call(OpImag, x) }

// IsZero tests x == 0.
func IsZero(x *Node) *Node { return Call(OpIsZero, x) }

// Not negates a predicate.
func Not(x *Node) *Node { return Call(OpNot, x) }

// Clone deep-copies a tree. Nil stays nil.
func Clone(n *Node) *Node {
	return Rewrite(n, func(n *Node) *Node { return n })
}
