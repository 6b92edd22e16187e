package core

// validation.go is the trust boundary for field lists.
//
// Every field list that enters the system passes through ValidateFields,
// whatever its source: the template parser, an AI response, a stored
// template, an HTTP request body, an MCP tool call or a CLI schema file.
// Validation stops at the first violation and reports the field index,
// the field name and the violated rule.

import (
	"fmt"
	"strings"
)

// MaxRowCount is the upper bound for a generated table.
const MaxRowCount = 100000

// MinPromptLength is the minimum length of a schema generation prompt.
const MinPromptLength = 10

// ValidateField checks a single field. The index is only used for reporting.
func ValidateField(index int, f Field) error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{
			Index:   index,
			Field:   f.Name,
			Rule:    "name",
			Message: "field name is required",
		}
	}
	if !f.Type.Valid() {
		return &ValidationError{
			Index:   index,
			Field:   f.Name,
			Rule:    "type",
			Message: fmt.Sprintf("invalid data type %q (must be one of: %s)", f.Type, typeList()),
		}
	}
	if f.Order < 0 {
		return &ValidationError{
			Index:   index,
			Field:   f.Name,
			Rule:    "order",
			Message: fmt.Sprintf("order must be non-negative, got %d", f.Order),
		}
	}
	return nil
}

// ValidateFields checks every field and returns the first violation.
// Field ids must be present and unique.
func ValidateFields(fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if err := ValidateField(i, f); err != nil {
			return err
		}
		if f.ID == "" {
			return &ValidationError{Index: i, Field: f.Name, Rule: "id", Message: "field id is required"}
		}
		if seen[f.ID] {
			return &ValidationError{Index: i, Field: f.Name, Rule: "id", Message: fmt.Sprintf("duplicate field id %q", f.ID)}
		}
		seen[f.ID] = true
	}
	return nil
}

// ValidateRowCount checks that n is within [1, max]. A non-positive max
// falls back to MaxRowCount.
func ValidateRowCount(n, max int) error {
	if max <= 0 || max > MaxRowCount {
		max = MaxRowCount
	}
	if n < 1 || n > max {
		return newRequestError("rowCount", "row count must be between 1 and %d, got %d", max, n)
	}
	return nil
}

// ValidatePrompt checks the schema generation prompt.
func ValidatePrompt(prompt string) error {
	if len([]rune(strings.TrimSpace(prompt))) < MinPromptLength {
		return newRequestError("prompt", "prompt must be at least %d characters", MinPromptLength)
	}
	return nil
}

// FieldsFromSuggestions converts externally suggested fields into validated
// fields with fresh ids. Order is reassigned from the position in the list.
// The whole batch is rejected on the first invalid suggestion.
func FieldsFromSuggestions(suggestions []FieldSuggestion) ([]Field, error) {
	if len(suggestions) == 0 {
		return nil, newRequestError("fields", "no fields provided")
	}
	fields := make([]Field, len(suggestions))
	for i, s := range suggestions {
		t, ok := ParseDataType(s.Type)
		if !ok {
			t = DataType(s.Type)
		}
		fields[i] = NewField(strings.TrimSpace(s.Name), t, i)
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func typeList() string {
	names := make([]string, len(dataTypes))
	for i, t := range dataTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
