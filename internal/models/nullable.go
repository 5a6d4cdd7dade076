package models

import (
	"encoding/json"
)

// Nullable represents a JSON field in a partial update that can distinguish between:
// - Field absent in JSON: Set=false, Valid=false (leave the column alone)
// - Field present with null: Set=true, Valid=false (clear the column)
// - Field present with value: Set=true, Valid=true, Value=the value
//
// Go's standard JSON unmarshaling treats both "field absent" and
// "field: null" as nil for pointer types, which loses the clear intent.
type Nullable[T any] struct {
	Value T
	Valid bool // true if Value is not null
	Set   bool // true if field was present in JSON
}

// NullableOf returns a set, valid Nullable holding v.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Valid: true, Set: true}
}

// UnmarshalJSON implements custom JSON unmarshaling for Nullable.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true

	if string(data) == "null" {
		var zero T
		n.Valid = false
		n.Value = zero
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = v
	n.Valid = true
	return nil
}

// MarshalJSON implements custom JSON marshaling for Nullable.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ToPtr converts the value to a pointer for storage.
// Returns nil if Valid is false.
func (n Nullable[T]) ToPtr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
