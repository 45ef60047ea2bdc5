package parser

import "github.com/imyousuf/forgewiki/internal/luaast"

// CallTarget splits a call's callee into receiver and method names:
// `items.set(...)` gives ("items", "set"), `addNutritions(...)` gives
// ("", "addNutritions"). Any other callee shape gives two empty strings.
func CallTarget(c *luaast.Call) (receiver, method string) {
	if c == nil {
		return "", ""
	}
	switch callee := c.Callee.(type) {
	case *luaast.Ident:
		return "", callee.Name
	case *luaast.Member:
		if obj, ok := callee.Object.(*luaast.Ident); ok {
			return obj.Name, callee.Name
		}
	}
	return "", ""
}

// MethodName returns the member name a call is made through, whatever
// its receiver: `Loot.item(...)` gives "item".
func MethodName(e luaast.Expr) string {
	c := AsCall(e)
	if c == nil {
		return ""
	}
	if m, ok := c.Callee.(*luaast.Member); ok {
		return m.Name
	}
	return ""
}

// FilterCalls returns, in statement order, the call statements of body
// whose target is receiver.method for one of the given methods.
func FilterCalls(body []luaast.Stmt, receiver string, methods ...string) []*luaast.Call {
	var out []*luaast.Call
	for _, stmt := range body {
		cs, ok := stmt.(*luaast.CallStmt)
		if !ok {
			continue
		}
		recv, method := CallTarget(cs.Call)
		if recv != receiver {
			continue
		}
		for _, m := range methods {
			if method == m {
				out = append(out, cs.Call)
				break
			}
		}
	}
	return out
}

// FilterGlobalCalls returns the call statements of body that call the
// global function name.
func FilterGlobalCalls(body []luaast.Stmt, name string) []*luaast.Call {
	var out []*luaast.Call
	for _, stmt := range body {
		cs, ok := stmt.(*luaast.CallStmt)
		if !ok {
			continue
		}
		if _, ok := cs.Call.Callee.(*luaast.Ident); !ok {
			continue
		}
		if _, method := CallTarget(cs.Call); method == name {
			out = append(out, cs.Call)
		}
	}
	return out
}

// FindFunction returns the first top-level function declaration named name.
func FindFunction(body []luaast.Stmt, name string) *luaast.FuncDecl {
	for _, stmt := range body {
		if fd, ok := stmt.(*luaast.FuncDecl); ok && fd.Name == name {
			return fd
		}
	}
	return nil
}

// Arg returns argument i of c, or nil when c is nil or has fewer arguments.
func Arg(c *luaast.Call, i int) luaast.Expr {
	if c == nil || i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// AsCall returns e as a call, or nil.
func AsCall(e luaast.Expr) *luaast.Call {
	c, _ := e.(*luaast.Call)
	return c
}

// AsTable returns e as a table constructor, or nil.
func AsTable(e luaast.Expr) *luaast.Table {
	t, _ := e.(*luaast.Table)
	return t
}

// FieldAt returns the value of field i of t, counting every field kind;
// a negative i counts from the end. Nil when out of range.
func FieldAt(t *luaast.Table, i int) luaast.Expr {
	if t == nil {
		return nil
	}
	if i < 0 {
		i += len(t.Fields)
	}
	if i < 0 || i >= len(t.Fields) || t.Fields[i].Value == nil {
		return nil
	}
	return t.Fields[i].Value
}

// Keyed returns the value of the `name = value` field of t, or nil.
func Keyed(t *luaast.Table, name string) luaast.Expr {
	if t == nil {
		return nil
	}
	for _, f := range t.Fields {
		if f.Name == name && f.Value != nil {
			return f.Value
		}
	}
	return nil
}

// ArgTable is AsTable(Arg(c, i)).
func ArgTable(c *luaast.Call, i int) *luaast.Table {
	return AsTable(Arg(c, i))
}

// ArgCall is AsCall(Arg(c, i)).
func ArgCall(c *luaast.Call, i int) *luaast.Call {
	return AsCall(Arg(c, i))
}
