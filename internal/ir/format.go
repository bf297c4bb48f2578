package ir

import (
	"strconv"
	"strings"
)

// Format renders n as a deterministic S-expression. Positions are omitted.
func Format(n *Node) string {
	var b strings.Builder
	format(&b, n)
	return b.String()
}

// FormatBinding renders a setup binding as "name = expr".
func FormatBinding(bnd Binding) string {
	return strings.Join(bnd.Names, ", ") + " = " + Format(bnd.Expr)
}

func format(b *strings.Builder, n *Node) {
	if n == nil {
		b.WriteString("_")
		return
	}
	switch n.Op {
	case OpConst:
		b.WriteString(formatConst(n.Const))
	case OpArg:
		b.WriteString("x")
		b.WriteString(strconv.Itoa(n.Index))
	case OpTangent:
		b.WriteString("dx")
		b.WriteString(strconv.Itoa(n.Index))
	case OpCotangent:
		b.WriteString("dΩ")
	case OpRef:
		b.WriteString("$")
		b.WriteString(n.Name)
	case OpPrimal:
		b.WriteString("Ω")
	case OpArgs, OpTangents, OpOthers:
		b.WriteString(n.Op.String())
		b.WriteString("[")
		b.WriteString(strconv.Itoa(n.Index))
		b.WriteString(":]")
	case OpSlotArg, OpSlotTangent:
		b.WriteString(n.Op.String())
	case OpEach:
		b.WriteString("(each[")
		b.WriteString(strconv.Itoa(n.Index))
		b.WriteString(":] ")
		if len(n.Args) > 0 {
			format(b, n.Args[0])
		}
		b.WriteString(")")
	default:
		b.WriteString("(")
		b.WriteString(n.Op.String())
		for _, a := range n.Args {
			b.WriteString(" ")
			format(b, a)
		}
		b.WriteString(")")
	}
}

func formatConst(c complex128) string {
	re := strconv.FormatFloat(real(c), 'g', -1, 64)
	if imag(c) == 0 {
		return re
	}
	im := strconv.FormatFloat(imag(c), 'g', -1, 64)
	if real(c) == 0 {
		return im + "im"
	}
	if imag(c) > 0 {
		return re + "+" + im + "im"
	}
	return re + im + "im"
}
