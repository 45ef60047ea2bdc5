package resolve

import (
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// Null is the sentinel for a field that could not be resolved.
	Null Kind = iota
	String
	Number
	Bool
	List
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// Value is the semantic result of resolving one expression. The zero
// Value is Null.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	List []Value
}

func StringValue(s string) Value  { return Value{Kind: String, Str: s} }
func NumberValue(n float64) Value { return Value{Kind: Number, Num: n} }
func BoolValue(b bool) Value      { return Value{Kind: Bool, Bool: b} }
func ListValue(vs ...Value) Value { return Value{Kind: List, List: vs} }

// IsNull reports whether v is the null sentinel.
func (v Value) IsNull() bool { return v.Kind == Null }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	return v.Str, v.Kind == String
}

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) {
	return v.Num, v.Kind == Number
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	return v.Bool, v.Kind == Bool
}

// Strings flattens v into its string members: a single string becomes a
// one-element slice, a list contributes each string element (recursively),
// anything else contributes nothing.
func (v Value) Strings() []string {
	switch v.Kind {
	case String:
		return []string{v.Str}
	case List:
		var out []string
		for _, item := range v.List {
			out = append(out, item.Strings()...)
		}
		return out
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Kind {
	case String:
		return strconv.Quote(v.Str)
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(v.Bool)
	case List:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "null"
	}
}
