// Package luaast turns Lua source into a small, closed syntax tree.
//
// Only the node kinds the game's data scripts are known to use get a
// dedicated type. Everything else becomes an Unknown expression or an
// OtherStmt carrying the tree-sitter kind, so consumers can report it
// instead of silently falling through.
package luaast

import "fmt"

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node is implemented by every expression and statement.
type Node interface {
	Pos() Pos
	// Text returns the exact source text of the node.
	Text() string
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

type span struct {
	pos  Pos
	text string
}

func (s span) Pos() Pos     { return s.pos }
func (s span) Text() string { return s.text }

// StringLit is a quoted or long-bracket string. Value holds the raw text
// between the delimiters; escapes are not interpreted.
type StringLit struct {
	span
	Value string
}

// NumberLit is a numeric literal.
type NumberLit struct {
	span
	Value float64
}

// BoolLit is true or false.
type BoolLit struct {
	span
	Value bool
}

// NilLit is nil.
type NilLit struct{ span }

// Ident is a bare name.
type Ident struct {
	span
	Name string
}

// Member is a dotted access `Object.Name`. Colon is set when the access
// was written `Object:Name`, which only occurs as a call target.
type Member struct {
	span
	Object Expr
	Name   string
	Colon  bool
}

// Index is a bracket access `Object[Key]`.
type Index struct {
	span
	Object Expr
	Key    Expr
}

// Call is a function or method call.
type Call struct {
	span
	Callee Expr
	Args   []Expr
}

// Field is one entry of a table constructor. At most one of Name and Key
// is set; both empty means a positional entry.
type Field struct {
	span
	Name  string
	Key   Expr
	Value Expr
}

// Positional reports whether the field has no key.
func (f *Field) Positional() bool {
	return f.Name == "" && f.Key == nil
}

// Table is a table constructor `{ ... }`.
type Table struct {
	span
	Fields []*Field
}

// Unary is a prefix operator expression.
type Unary struct {
	span
	Op      string
	Operand Expr
}

// Binary is an infix operator expression.
type Binary struct {
	span
	Op    string
	Left  Expr
	Right Expr
}

// Function is an anonymous function expression.
type Function struct {
	span
	Body []Stmt
}

// Vararg is `...`.
type Vararg struct{ span }

// Unknown is any expression kind without a dedicated type.
type Unknown struct {
	span
	Kind string
}

func (*StringLit) exprNode() {}
func (*NumberLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*NilLit) exprNode()    {}
func (*Ident) exprNode()     {}
func (*Member) exprNode()    {}
func (*Index) exprNode()     {}
func (*Call) exprNode()      {}
func (*Table) exprNode()     {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Function) exprNode()  {}
func (*Vararg) exprNode()    {}
func (*Unknown) exprNode()   {}

// CallStmt is a call used as a statement.
type CallStmt struct {
	span
	Call *Call
}

// FuncDecl is `function name(...) ... end` or its local form. Name is the
// dotted name as written.
type FuncDecl struct {
	span
	Name  string
	Local bool
	Body  []Stmt
}

// OtherStmt is any statement kind the extractors never look inside.
type OtherStmt struct {
	span
	Kind string
}

func (*CallStmt) stmtNode()  {}
func (*FuncDecl) stmtNode()  {}
func (*OtherStmt) stmtNode() {}

// Chunk is a parsed source file.
type Chunk struct {
	Body []Stmt
}

// Kind returns a short name for the node's kind, used in diagnostics.
func Kind(n Node) string {
	switch n := n.(type) {
	case *StringLit:
		return "string"
	case *NumberLit:
		return "number"
	case *BoolLit:
		return "boolean"
	case *NilLit:
		return "nil"
	case *Ident:
		return "identifier"
	case *Member:
		return "member"
	case *Index:
		return "index"
	case *Call:
		return "call"
	case *Table:
		return "table"
	case *Unary:
		return "unary"
	case *Binary:
		return "binary"
	case *Function:
		return "function"
	case *Vararg:
		return "vararg"
	case *Unknown:
		return n.Kind
	case *CallStmt:
		return "call_statement"
	case *FuncDecl:
		return "function_declaration"
	case *OtherStmt:
		return n.Kind
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", n)
	}
}
