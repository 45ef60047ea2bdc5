package parser

import (
	"fmt"

	"github.com/imyousuf/forgewiki/internal/luaast"
	"github.com/imyousuf/forgewiki/internal/model"
	"github.com/imyousuf/forgewiki/internal/resolve"
)

// File is the extraction context for one source file: it resolves
// expressions and converts them into typed record fields, reporting
// anything unusable against the file.
type File struct {
	Domain Domain
	Path   string

	env *Env
	r   *resolve.Resolver
}

// Env returns the environment the file reports to.
func (f *File) Env() *Env { return f.env }

// Value resolves e.
func (f *File) Value(e luaast.Expr) resolve.Value {
	return f.r.Resolve(e)
}

// Warn reports a field-level problem at n.
func (f *File) Warn(n luaast.Node, format string, args ...any) {
	d := Diagnostic{
		Severity: SeverityField,
		Domain:   f.Domain,
		File:     f.Path,
		Message:  fmt.Sprintf(format, args...),
	}
	if n != nil {
		d.Pos = n.Pos()
	}
	f.env.Diag(d)
}

// Report sends a diagnostic of the given severity for this file.
func (f *File) Report(sev Severity, format string, args ...any) {
	f.env.Diag(Diagnostic{
		Severity: sev,
		Domain:   f.Domain,
		File:     f.Path,
		Message:  fmt.Sprintf(format, args...),
	})
}

// String resolves e to a string; "" when absent or not a string.
func (f *File) String(e luaast.Expr) string {
	return f.StringField(e).Val
}

// StringField resolves e to an optional string.
func (f *File) StringField(e luaast.Expr) model.Field[string] {
	if e == nil {
		return model.Field[string]{}
	}
	v := f.r.Resolve(e)
	if s, ok := v.AsString(); ok {
		return model.Some(s)
	}
	if !v.IsNull() {
		f.Warn(e, "expected string, got %s %s", v.Kind, v)
	}
	return model.Bad[string]()
}

// Number resolves e to an optional number.
func (f *File) Number(e luaast.Expr) model.Field[float64] {
	if e == nil {
		return model.Field[float64]{}
	}
	v := f.r.Resolve(e)
	if n, ok := v.AsNumber(); ok {
		return model.Some(n)
	}
	if !v.IsNull() {
		f.Warn(e, "expected number, got %s %s", v.Kind, v)
	}
	return model.Bad[float64]()
}

// Bool resolves e to an optional boolean.
func (f *File) Bool(e luaast.Expr) model.Field[bool] {
	if e == nil {
		return model.Field[bool]{}
	}
	v := f.r.Resolve(e)
	if b, ok := v.AsBool(); ok {
		return model.Some(b)
	}
	if !v.IsNull() {
		f.Warn(e, "expected boolean, got %s %s", v.Kind, v)
	}
	return model.Bad[bool]()
}

// Strings resolves e to a list of strings; a single string becomes a
// one-element list.
func (f *File) Strings(e luaast.Expr) []string {
	if e == nil {
		return []string{}
	}
	v := f.r.Resolve(e)
	out := v.Strings()
	if out == nil {
		if !v.IsNull() {
			f.Warn(e, "expected string or list of strings, got %s %s", v.Kind, v)
		}
		return []string{}
	}
	return out
}
