package ir

// Visitor is called for each node encountered by Walk. If the result
// visitor w is not nil, Walk visits each of the node's operands with w,
// followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(n *Node) (w Visitor)
}

// Walk traverses a tree in depth-first order.
func Walk(v Visitor, n *Node) {
	if n == nil {
		return
	}
	if v = v.Visit(n); v == nil {
		return
	}
	for _, a := range n.Args {
		Walk(v, a)
	}
	v.Visit(nil)
}

type inspector func(*Node) bool

func (f inspector) Visit(n *Node) Visitor {
	if n != nil && f(n) {
		return f
	}
	return nil
}

// Inspect calls f for every node in depth-first order; returning false
// prunes the node's operands.
func Inspect(n *Node, f func(*Node) bool) {
	Walk(inspector(f), n)
}

// Rewrite returns a deep copy of n in which every copied node has been
// passed through f after its operands were rewritten. n is not modified.
func Rewrite(n *Node, f func(*Node) *Node) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if len(n.Args) > 0 {
		cp.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			cp.Args[i] = Rewrite(a, f)
		}
	}
	return f(&cp)
}

// MapOps rewrites operators through table; operators absent from the table
// are kept.
func MapOps(n *Node, table map[Op]Op) *Node {
	return Rewrite(n, func(n *Node) *Node {
		if op, ok := table[n.Op]; ok {
			n.Op = op
		}
		return n
	})
}

// CountOps counts how many nodes in n satisfy pred.
func CountOps(n *Node, pred func(Op) bool) int {
	count := 0
	Inspect(n, func(n *Node) bool {
		if pred(n.Op) {
			count++
		}
		return true
	})
	return count
}

// Refs returns the setup binding names read by n, in first-use order.
func Refs(n *Node) []string {
	var names []string
	seen := map[string]bool{}
	Inspect(n, func(n *Node) bool {
		if n.Op == OpRef && !seen[n.Name] {
			seen[n.Name] = true
			names = append(names, n.Name)
		}
		return true
	})
	return names
}

// StampPos sets Pos on every node of n that has none. It returns n.
func StampPos(n *Node, pos Pos) *Node {
	Inspect(n, func(n *Node) bool {
		if n.Pos == (Pos{}) {
			n.Pos = pos
		}
		return true
	})
	return n
}
