package lang

// node is an expression AST node.
type node interface {
	// Pos is the byte offset of the node in the expression source.
	Pos() int
}

// litNode is a literal value: int64, float64, or string.
type litNode struct {
	val any
	pos int
}

func (n *litNode) Pos() int { return n.pos }

// identNode is a binding reference. For combination items the name
// includes the spec qualifier, e.g. "item:sample".
type identNode struct {
	name string
	pos  int
}

func (n *identNode) Pos() int { return n.pos }

// unaryNode is a unary negation.
type unaryNode struct {
	x   node
	pos int
}

func (n *unaryNode) Pos() int { return n.pos }

// binaryNode is a binary arithmetic operation: + - * / **.
type binaryNode struct {
	op   string
	x, y node
}

func (n *binaryNode) Pos() int { return n.x.Pos() }

// indexNode is a single-element index: x[i].
type indexNode struct {
	x   node
	idx node
}

func (n *indexNode) Pos() int { return n.x.Pos() }

// sliceNode is a slice with optional bounds: x[lo:hi].
type sliceNode struct {
	x  node
	lo node // nil when omitted
	hi node // nil when omitted
}

func (n *sliceNode) Pos() int { return n.x.Pos() }

// callNode is a whitelisted function call: fn(args...).
type callNode struct {
	fn   string
	args []node
	pos  int
}

func (n *callNode) Pos() int { return n.pos }

// methodNode is a whitelisted method call: recv.name(args...).
type methodNode struct {
	recv node
	name string
	args []node
}

func (n *methodNode) Pos() int { return n.recv.Pos() }
