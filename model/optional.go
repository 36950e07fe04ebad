package model

import (
	"bytes"
	"encoding/json"
)

// Optional captures a JSON field that may be absent, null, or set.
//
// Set is false when the key did not appear in the body. When Set is true,
// Null reports an explicit JSON null and Val holds the decoded value otherwise.
type Optional[T any] struct {
	Val  T
	Set  bool
	Null bool
}

// Some returns a present, non-null Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Val: v, Set: true}
}

// UnmarshalJSON marks the field as present. encoding/json only calls this
// when the key exists in the input, which is what separates absent from null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Val = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Val)
}

// MarshalJSON writes null for absent or null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Val)
}

// Value returns the value to bind into SQL: nil for an explicit null.
func (o Optional[T]) Value() interface{} {
	if o.Null {
		return nil
	}
	return o.Val
}

// Ptr returns nil for absent or null values, otherwise a pointer to a copy of Val.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Val
	return &v
}
