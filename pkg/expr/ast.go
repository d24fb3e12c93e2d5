package expr

// NodeKind discriminates the variants of the expression AST. The set is
// closed: the evaluator switches exhaustively over these kinds and there is
// no dynamic dispatch or reflection anywhere in evaluation.
type NodeKind int

const (
	// KindLiteral is a number, string, boolean, or None literal.
	KindLiteral NodeKind = iota

	// KindName is a bare name resolved against the environment.
	KindName

	// KindUnary is a prefix operator: not, -, +.
	KindUnary

	// KindBinary is an arithmetic operator: + - * / %.
	KindBinary

	// KindBool is a short-circuiting boolean combinator: and, or.
	KindBool

	// KindCompare is a comparison chain: left op c1 op c2 ...
	KindCompare
)

// Op identifies an operator inside a unary, binary, boolean, or comparison
// node.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"

	OpEq  Op = "=="
	OpNeq Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="

	OpAnd Op = "and"
	OpOr  Op = "or"
	OpNot Op = "not"
	OpNeg Op = "-"
	OpPos Op = "+"
)

// Node is one node of the parsed expression tree. A single struct with a
// kind tag keeps the variant set closed and the evaluator's switch
// exhaustive.
type Node struct {
	Kind NodeKind

	// Value holds the literal value for KindLiteral: float64, string, bool,
	// or nil for None.
	Value any

	// Ident holds the name for KindName.
	Ident string

	// Op holds the operator for KindUnary, KindBinary, and KindBool.
	Op Op

	// Left and Right are the operands for KindBinary and KindBool; Left is
	// the sole operand for KindUnary and the leftmost operand of a
	// comparison chain.
	Left  *Node
	Right *Node

	// Ops and Comparators carry the rest of a KindCompare chain:
	// Left Ops[0] Comparators[0] Ops[1] Comparators[1] ...
	Ops         []Op
	Comparators []*Node
}
