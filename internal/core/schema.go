package core

import (
	"fmt"
	"sort"
)

// Schema is an ordered list of fields. Field order is always contiguous
// 0..n-1; every mutation re-sequences it.
type Schema struct {
	fields []Field
}

// NewSchema builds a schema from an existing field list. The fields are
// validated, sorted by their current order and re-sequenced.
func NewSchema(fields ...Field) (*Schema, error) {
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	s := &Schema{fields: make([]Field, len(fields))}
	copy(s.fields, fields)
	sort.SliceStable(s.fields, func(i, j int) bool {
		return s.fields[i].Order < s.fields[j].Order
	})
	s.resequence()
	return s, nil
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the fields in ascending order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Add appends a new field with a fresh id.
func (s *Schema) Add(name string, t DataType) (Field, error) {
	f := NewField(name, t, len(s.fields))
	if err := ValidateField(len(s.fields), f); err != nil {
		return Field{}, err
	}
	s.fields = append(s.fields, f)
	return f, nil
}

// Update changes the name and type of the field with the given id.
func (s *Schema) Update(id, name string, t DataType) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("field not found: %s", id)
	}
	updated := s.fields[i]
	updated.Name = name
	updated.Type = t
	if err := ValidateField(i, updated); err != nil {
		return err
	}
	s.fields[i] = updated
	return nil
}

// Remove deletes the field with the given id and re-sequences the rest.
func (s *Schema) Remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("field not found: %s", id)
	}
	s.fields = append(s.fields[:i], s.fields[i+1:]...)
	s.resequence()
	return nil
}

// Move places the field with the given id at index and re-sequences.
// Indexes past the end are clamped.
func (s *Schema) Move(id string, index int) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("field not found: %s", id)
	}
	if index < 0 {
		return &ValidationError{Index: i, Field: s.fields[i].Name, Rule: "order", Message: "target position must be non-negative"}
	}
	f := s.fields[i]
	rest := append(s.fields[:i:i], s.fields[i+1:]...)
	if index > len(rest) {
		index = len(rest)
	}
	moved := make([]Field, 0, len(s.fields))
	moved = append(moved, rest[:index]...)
	moved = append(moved, f)
	moved = append(moved, rest[index:]...)
	s.fields = moved
	s.resequence()
	return nil
}

func (s *Schema) index(id string) int {
	for i, f := range s.fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *Schema) resequence() {
	for i := range s.fields {
		s.fields[i].Order = i
	}
}

// SortedFields returns a copy of fields sorted by ascending order.
func SortedFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Resequence returns a copy of fields sorted by order with order reassigned to 0..n-1.
func Resequence(fields []Field) []Field {
	out := SortedFields(fields)
	for i := range out {
		out[i].Order = i
	}
	return out
}
