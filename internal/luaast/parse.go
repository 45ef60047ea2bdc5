package luaast

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

// ErrSyntax is returned (wrapped) when the source contains syntax errors.
var ErrSyntax = errors.New("lua syntax error")

// Parse builds a Chunk from Lua source. A source with any syntax error is
// rejected as a whole; the error names the first offending position.
func Parse(ctx context.Context, content []byte) (*Chunk, error) {
	sitterParser := sitter.NewParser()
	sitterParser.SetLanguage(lua.GetLanguage())

	tree, err := sitterParser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing lua: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		if bad := firstError(root); bad != nil {
			return nil, fmt.Errorf("%w at %s near %q", ErrSyntax, pointPos(bad.StartPoint()), clip(bad.Content(content)))
		}
		return nil, ErrSyntax
	}

	b := &builder{content: content}
	return &Chunk{Body: b.statements(root)}, nil
}

// ParseString is Parse for in-memory fixtures.
func ParseString(src string) (*Chunk, error) {
	return Parse(context.Background(), []byte(src))
}

type builder struct {
	content []byte
}

func (b *builder) span(node *sitter.Node) span {
	return span{pos: pointPos(node.StartPoint()), text: node.Content(b.content)}
}

// spanOf covers the sibling run from first to last.
func (b *builder) spanOf(first, last *sitter.Node) span {
	return span{
		pos:  pointPos(first.StartPoint()),
		text: string(b.content[first.StartByte():last.EndByte()]),
	}
}

func trivia(kind string) bool {
	return kind == "comment" || kind == "shebang" ||
		strings.HasPrefix(kind, "emmy_") || strings.HasPrefix(kind, "documentation")
}

// children returns every child of node, named or not, skipping comments.
// The grammar inlines member access, indexing and parentheses, so an
// expression is often a run of siblings rather than a single node.
func children(node *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if trivia(child.Type()) {
			continue
		}
		out = append(out, child)
	}
	return out
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if trivia(child.Type()) {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (b *builder) statements(node *sitter.Node) []Stmt {
	var out []Stmt
	for _, child := range namedChildren(node) {
		out = append(out, b.statement(child))
	}
	return out
}

func (b *builder) statement(node *sitter.Node) Stmt {
	switch node.Type() {
	case "function_call":
		call := b.call(node)
		return &CallStmt{span: call.span, Call: call}
	case "function_statement":
		return b.funcDecl(node)
	default:
		return &OtherStmt{span: b.span(node), Kind: node.Type()}
	}
}

func (b *builder) funcDecl(node *sitter.Node) *FuncDecl {
	decl := &FuncDecl{span: b.span(node)}
	name := node.ChildByFieldName("name")
	for _, child := range namedChildren(node) {
		switch child.Type() {
		case "local":
			decl.Local = true
		case "function_name", "identifier":
			if name == nil {
				name = child
			}
		case "function_body":
			decl.Body = b.statements(child)
		}
	}
	if name != nil {
		decl.Name = name.Content(b.content)
	}
	return decl
}

func (b *builder) expr(node *sitter.Node) Expr {
	if node == nil {
		return nil
	}
	s := b.span(node)
	switch node.Type() {
	case "string", "string_argument":
		return &StringLit{span: s, Value: stripQuotes(s.text)}
	case "number":
		if v, ok := parseNumber(s.text); ok {
			return &NumberLit{span: s, Value: v}
		}
		return &Unknown{span: s, Kind: "number"}
	case "boolean":
		return &BoolLit{span: s, Value: s.text == "true"}
	case "nil":
		return &NilLit{span: s}
	case "identifier":
		return &Ident{span: s, Name: s.text}
	case "ellipsis":
		return &Vararg{span: s}
	case "function_call":
		return b.call(node)
	case "tableconstructor", "table_argument":
		return b.table(node)
	case "unary_operation":
		parts := children(node)
		if len(parts) < 2 {
			return &Unknown{span: s, Kind: node.Type()}
		}
		return &Unary{span: s, Op: parts[0].Content(b.content), Operand: b.exprSeq(parts[1:])}
	case "binary_operation":
		parts := children(node)
		op := binaryOperator(parts)
		if op <= 0 || op == len(parts)-1 {
			return &Unknown{span: s, Kind: node.Type()}
		}
		return &Binary{
			span:  s,
			Op:    parts[op].Content(b.content),
			Left:  b.exprSeq(parts[:op]),
			Right: b.exprSeq(parts[op+1:]),
		}
	case "function":
		fn := &Function{span: s}
		for _, child := range namedChildren(node) {
			if child.Type() == "function_body" {
				fn.Body = b.statements(child)
			}
		}
		return fn
	default:
		return &Unknown{span: s, Kind: node.Type()}
	}
}

// exprSeq lowers a run of sibling nodes forming one expression: a head
// (a node or a parenthesized run) followed by `.name` and `[key]` steps.
func (b *builder) exprSeq(nodes []*sitter.Node) Expr {
	if len(nodes) == 0 {
		return nil
	}
	if len(nodes) == 1 {
		return b.expr(nodes[0])
	}

	var cur Expr
	i := 1
	if nodes[0].Type() == "left_paren" {
		end := closing(nodes, 0, "left_paren", "right_paren")
		if end < 0 {
			return &Unknown{span: b.spanOf(nodes[0], nodes[len(nodes)-1]), Kind: "left_paren"}
		}
		cur = b.exprSeq(nodes[1:end])
		i = end + 1
	} else {
		cur = b.expr(nodes[0])
	}

	for i < len(nodes) {
		switch nodes[i].Type() {
		case ".":
			if i+1 >= len(nodes) {
				return &Unknown{span: b.spanOf(nodes[0], nodes[i]), Kind: "."}
			}
			cur = &Member{
				span:   b.spanOf(nodes[0], nodes[i+1]),
				Object: cur,
				Name:   nodes[i+1].Content(b.content),
			}
			i += 2
		case "[":
			end := closing(nodes, i, "[", "]")
			if end < 0 {
				return &Unknown{span: b.spanOf(nodes[0], nodes[len(nodes)-1]), Kind: "["}
			}
			cur = &Index{
				span:   b.spanOf(nodes[0], nodes[end]),
				Object: cur,
				Key:    b.exprSeq(nodes[i+1 : end]),
			}
			i = end + 1
		default:
			return &Unknown{span: b.spanOf(nodes[0], nodes[len(nodes)-1]), Kind: nodes[i].Type()}
		}
	}
	return cur
}

// closing returns the index of the token matching the opener at nodes[at],
// or -1.
func closing(nodes []*sitter.Node, at int, opener, closer string) int {
	depth := 0
	for i := at; i < len(nodes); i++ {
		switch nodes[i].Type() {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// split cuts a sibling run at top-level tokens of the given kind.
func split(nodes []*sitter.Node, sep string) [][]*sitter.Node {
	var (
		out   [][]*sitter.Node
		start int
		depth int
	)
	for i, n := range nodes {
		switch n.Type() {
		case "[", "left_paren":
			depth++
		case "]", "right_paren":
			depth--
		case sep:
			if depth == 0 {
				out = append(out, nodes[start:i])
				start = i + 1
			}
		}
	}
	if start < len(nodes) {
		out = append(out, nodes[start:])
	}
	return out
}

var binaryOps = map[string]bool{
	"or": true, "and": true, "<": true, "<=": true, "==": true, "~=": true,
	">=": true, ">": true, "|": true, "~": true, "&": true, "<<": true,
	">>": true, "+": true, "-": true, "*": true, "/": true, "//": true,
	"%": true, "..": true, "^": true,
}

// binaryOperator returns the index of the top-level operator token, or -1.
func binaryOperator(nodes []*sitter.Node) int {
	depth := 0
	for i, n := range nodes {
		switch n.Type() {
		case "[", "left_paren":
			depth++
		case "]", "right_paren":
			depth--
		default:
			if depth == 0 && !n.IsNamed() && binaryOps[n.Type()] {
				return i
			}
		}
	}
	return -1
}

// callSuffix reports whether kind starts the argument part of a call;
// everything before it is the callee.
func callSuffix(kind string) bool {
	switch kind {
	case "function_call_paren", "self_call_colon", "string_argument", "table_argument":
		return true
	}
	return false
}

func (b *builder) call(node *sitter.Node) *Call {
	c := &Call{span: b.span(node)}
	parts := children(node)

	i := 0
	for i < len(parts) && !callSuffix(parts[i].Type()) {
		i++
	}
	c.Callee = b.exprSeq(parts[:i])

	rest := parts[i:]
	if len(rest) > 1 && rest[0].Type() == "self_call_colon" && i > 0 {
		c.Callee = &Member{
			span:   b.spanOf(parts[0], rest[1]),
			Object: c.Callee,
			Name:   rest[1].Content(b.content),
			Colon:  true,
		}
		rest = rest[2:]
	}

	for _, n := range rest {
		switch n.Type() {
		case "function_arguments":
			for _, arg := range split(children(n), ",") {
				if len(arg) > 0 {
					c.Args = append(c.Args, b.exprSeq(arg))
				}
			}
		case "string_argument", "table_argument":
			c.Args = append(c.Args, b.expr(n))
		}
	}
	return c
}

func (b *builder) table(node *sitter.Node) *Table {
	t := &Table{span: b.span(node)}
	for _, child := range namedChildren(node) {
		if child.Type() != "fieldlist" {
			continue
		}
		for _, f := range namedChildren(child) {
			if f.Type() == "field" {
				t.Fields = append(t.Fields, b.field(f))
			}
		}
	}
	return t
}

// field handles the three entry shapes: `[key] = value`, `name = value`
// and a bare positional value.
func (b *builder) field(node *sitter.Node) *Field {
	f := &Field{span: b.span(node)}
	parts := children(node)
	if len(parts) == 0 {
		return f
	}

	switch {
	case parts[0].Type() == "field_left_bracket":
		end := 1
		for end < len(parts) && parts[end].Type() != "field_right_bracket" {
			end++
		}
		f.Key = b.exprSeq(parts[1:end])
		if end+2 <= len(parts) {
			f.Value = b.exprSeq(parts[end+2:])
		}
	case len(parts) > 2 && parts[0].Type() == "identifier" && parts[1].Type() == "=":
		f.Name = parts[0].Content(b.content)
		f.Value = b.exprSeq(parts[2:])
	default:
		f.Value = b.exprSeq(parts)
	}
	return f
}

func firstError(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if bad := firstError(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func pointPos(p sitter.Point) Pos {
	return Pos{Line: int(p.Row) + 1, Col: int(p.Column) + 1}
}

func parseNumber(text string) (float64, bool) {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		if v, err := strconv.ParseInt(lower, 0, 64); err == nil {
			return float64(v), true
		}
		if v, err := strconv.ParseFloat(lower, 64); err == nil {
			return v, true
		}
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func stripQuotes(raw string) string {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	// Long brackets: [[...]], [==[...]==]
	if strings.HasPrefix(raw, "[") {
		level := 1
		for level < len(raw) && raw[level] == '=' {
			level++
		}
		if level < len(raw) && raw[level] == '[' {
			open := level + 1
			closeLen := level + 1
			if len(raw) >= open+closeLen {
				body := raw[open : len(raw)-closeLen]
				return strings.TrimPrefix(body, "\n")
			}
		}
	}
	return raw
}

func clip(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
