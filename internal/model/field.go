package model

import (
	"bytes"
	"encoding/json"
)

// FieldState distinguishes a field the source never set from one it set
// to something unusable.
type FieldState uint8

const (
	Absent FieldState = iota
	Present
	Malformed
)

func (s FieldState) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Field is an optional record attribute.
type Field[T any] struct {
	Val   T
	State FieldState
}

// Some returns a present field.
func Some[T any](v T) Field[T] {
	return Field[T]{Val: v, State: Present}
}

// Bad returns a malformed field.
func Bad[T any]() Field[T] {
	return Field[T]{State: Malformed}
}

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) {
	return f.Val, f.State == Present
}

// Or returns the value, or def when the field is not present.
func (f Field[T]) Or(def T) T {
	if f.State == Present {
		return f.Val
	}
	return def
}

// Ok reports whether the field is present.
func (f Field[T]) Ok() bool { return f.State == Present }

// IsZero lets `omitzero`/`omitempty` prune fields that are not present.
func (f Field[T]) IsZero() bool { return f.State != Present }

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.State != Present {
		return []byte("null"), nil
	}
	return json.Marshal(f.Val)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Field[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}
