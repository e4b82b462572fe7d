// Package patch provides a tri-state JSON field for PATCH bodies, telling
// apart "absent", "null" and "set".
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is absent until UnmarshalJSON sees the key. A JSON null leaves Set
// true with Null true.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Of builds a set field.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null builds a field explicitly cleared by the client.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Ptr returns nil when the field is absent or null.
func (f Field[T]) Ptr() *T {
	if !f.Set || f.Null {
		return nil
	}
	v := f.Value
	return &v
}
