package internal

// ExprNode is a node in an expression AST
type ExprNode interface {
	exprNode()
}

// LiteralNode holds a literal value (string, float64, bool, nil)
type LiteralNode struct {
	Value any
}

// IdentifierNode references a name from the evaluation environment
type IdentifierNode struct {
	Name string
}

// UnaryNode applies a prefix operator
type UnaryNode struct {
	Op    ExprTokenType
	Right ExprNode
}

// BinaryNode applies an infix operator
type BinaryNode struct {
	Left  ExprNode
	Op    ExprTokenType
	Right ExprNode
}

// AttrNode accesses an attribute of a value ("x.y")
type AttrNode struct {
	Target ExprNode
	Name   string
}

// IndexNode accesses an element of a value ("x[i]")
type IndexNode struct {
	Target ExprNode
	Index  ExprNode
}

// CallNode calls a named function from the function environment
type CallNode struct {
	Name string
	Args []ExprNode
}

func (*LiteralNode) exprNode()    {}
func (*IdentifierNode) exprNode() {}
func (*UnaryNode) exprNode()      {}
func (*BinaryNode) exprNode()     {}
func (*AttrNode) exprNode()       {}
func (*IndexNode) exprNode()      {}
func (*CallNode) exprNode()       {}

// NewLiteral creates a literal node
func NewLiteral(value any) *LiteralNode { return &LiteralNode{Value: value} }

// NewIdentifier creates an identifier node
func NewIdentifier(name string) *IdentifierNode { return &IdentifierNode{Name: name} }

// NewUnary creates a unary operator node
func NewUnary(op ExprTokenType, right ExprNode) *UnaryNode {
	return &UnaryNode{Op: op, Right: right}
}

// NewBinary creates a binary operator node
func NewBinary(left ExprNode, op ExprTokenType, right ExprNode) *BinaryNode {
	return &BinaryNode{Left: left, Op: op, Right: right}
}

// NewAttr creates an attribute access node
func NewAttr(target ExprNode, name string) *AttrNode {
	return &AttrNode{Target: target, Name: name}
}

// NewIndex creates an index access node
func NewIndex(target ExprNode, index ExprNode) *IndexNode {
	return &IndexNode{Target: target, Index: index}
}

// NewCall creates a function call node
func NewCall(name string, args []ExprNode) *CallNode {
	return &CallNode{Name: name, Args: args}
}
