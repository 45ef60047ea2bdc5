// Package resolve reduces Lua expressions from the game's data scripts to
// semantic values.
package resolve

import (
	"fmt"

	"github.com/imyousuf/forgewiki/internal/luaast"
)

// Failure describes an expression the resolver could not interpret.
type Failure struct {
	Pos    luaast.Pos
	Kind   string
	Text   string
	Reason string
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s (%s: %s)", f.Pos, f.Reason, f.Kind, clip(f.Text))
}

// Reporter receives resolution failures. It may be nil.
type Reporter func(Failure)

// Resolver turns expression nodes into Values. It holds no state besides
// its reporter, so a single Resolver can be shared by every extractor.
type Resolver struct {
	report Reporter
}

// New creates a Resolver that sends failures to report.
func New(report Reporter) *Resolver {
	return &Resolver{report: report}
}

// Resolve returns the semantic value of e. A nil e is an absent field and
// yields Null silently; an unsupported shape yields Null and is reported.
func (r *Resolver) Resolve(e luaast.Expr) Value {
	switch n := e.(type) {
	case nil:
		return Value{}
	case *luaast.StringLit:
		return StringValue(n.Value)
	case *luaast.NumberLit:
		return NumberValue(n.Value)
	case *luaast.BoolLit:
		return BoolValue(n.Value)
	case *luaast.NilLit:
		return Value{}
	case *luaast.Unary:
		return r.unary(n)
	case *luaast.Member:
		return r.member(n)
	case *luaast.Call:
		return r.call(n)
	case *luaast.Ident, *luaast.Index, *luaast.Table, *luaast.Binary,
		*luaast.Function, *luaast.Vararg, *luaast.Unknown:
		return r.fail(e, "unsupported expression")
	default:
		return r.fail(e, "unrecognized node type")
	}
}

func (r *Resolver) unary(n *luaast.Unary) Value {
	if n.Op != "-" {
		return r.fail(n, fmt.Sprintf("unsupported unary operator %q", n.Op))
	}
	if lit, ok := n.Operand.(*luaast.NumberLit); ok {
		return NumberValue(-lit.Value)
	}
	return r.fail(n, "negation of a non-numeric literal")
}

func (r *Resolver) member(n *luaast.Member) Value {
	obj, ok := n.Object.(*luaast.Ident)
	if !ok {
		r.fail(n, "qualified name on a non-identifier receiver")
		return StringValue(n.Name)
	}
	ns, ok := LookupNamespace(obj.Name)
	if !ok {
		reason := fmt.Sprintf("unknown namespace %q", obj.Name)
		if s, ok := SuggestNamespace(obj.Name); ok {
			reason += fmt.Sprintf(" (did you mean %q?)", s)
		}
		r.fail(n, reason)
		return StringValue(n.Name)
	}
	return StringValue(ns.Member(n.Name))
}

// call unwraps the fixed set of wrapper calls the data scripts use around
// plain values.
func (r *Resolver) call(n *luaast.Call) Value {
	switch callee := n.Callee.(type) {
	case *luaast.Ident:
		switch callee.Name {
		case "seconds":
			return r.arg(n, 0)
		case "getFluidUse":
			return r.arg(n, 2)
		}
	case *luaast.Member:
		if obj, ok := callee.Object.(*luaast.Ident); ok && obj.Name == "Prefab" && callee.Name == "getID" {
			return r.arg(n, 0)
		}
		if callee.Name == "bor" {
			flags := make([]Value, 0, len(n.Args))
			for _, a := range n.Args {
				flags = append(flags, r.Resolve(a))
			}
			return ListValue(flags...)
		}
	}
	return r.fail(n, "unsupported call")
}

func (r *Resolver) arg(n *luaast.Call, i int) Value {
	if i >= len(n.Args) {
		return r.fail(n, fmt.Sprintf("wrapper call missing argument %d", i+1))
	}
	return r.Resolve(n.Args[i])
}

func (r *Resolver) fail(n luaast.Node, reason string) Value {
	if r.report != nil {
		r.report(Failure{
			Pos:    n.Pos(),
			Kind:   luaast.Kind(n),
			Text:   n.Text(),
			Reason: reason,
		})
	}
	return Value{}
}

func clip(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
