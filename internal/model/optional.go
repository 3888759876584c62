package model

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a field that was not supplied from one supplied as null
// and from one supplied with a value (including the zero value).
type Optional[T any] struct {
	Set   bool // key present in the payload
	Null  bool // key present with JSON null
	Value T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

// Null returns a present Optional holding JSON null.
func Null[T any]() Optional[T] { return Optional[T]{Set: true, Null: true} }

// UnmarshalJSON is only invoked when the key is present, which is what marks Set.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		o.Null, o.Value = true, zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

// MarshalJSON writes null for absent or null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
