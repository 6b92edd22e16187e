// Package core provides the schema inference and synthetic data generation logic.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DataType is the semantic type of a column. It drives both inference
// heuristics and value synthesis.
type DataType string

const (
	TypeString   DataType = "string"
	TypeNumber   DataType = "number"
	TypeDate     DataType = "date"
	TypeBoolean  DataType = "boolean"
	TypeEmail    DataType = "email"
	TypePhone    DataType = "phone"
	TypeAddress  DataType = "address"
	TypeURL      DataType = "url"
	TypeUUID     DataType = "uuid"
	TypeCurrency DataType = "currency"
)

// dataTypes lists every DataType in declaration order.
var dataTypes = []DataType{
	TypeString,
	TypeNumber,
	TypeDate,
	TypeBoolean,
	TypeEmail,
	TypePhone,
	TypeAddress,
	TypeURL,
	TypeUUID,
	TypeCurrency,
}

// DataTypes returns all supported data types in a stable order.
func DataTypes() []DataType {
	out := make([]DataType, len(dataTypes))
	copy(out, dataTypes)
	return out
}

// Valid reports whether t is a member of the DataType enumeration.
func (t DataType) Valid() bool {
	for _, dt := range dataTypes {
		if t == dt {
			return true
		}
	}
	return false
}

// ParseDataType converts a string to a DataType (case-insensitive).
// Returns false if the value is not in the enumeration.
func ParseDataType(s string) (DataType, bool) {
	t := DataType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// Field defines a single column of a schema.
type Field struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Type  DataType `json:"type"`
	Order int      `json:"order"`
}

// NewField creates a field with a fresh unique identifier.
func NewField(name string, t DataType, order int) Field {
	return Field{
		ID:    uuid.NewString(),
		Name:  name,
		Type:  t,
		Order: order,
	}
}

// FieldSuggestion is a field proposed by an external source (AI provider,
// MCP client) before it has been assigned an identifier and validated.
type FieldSuggestion struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Order int    `json:"order"`
}

// Row maps a field name to its generated value.
// Values are string, int or bool depending on the field's DataType.
type Row map[string]any

// Table is a generated set of rows. Fields are sorted by ascending Order and
// define the column order used by exporters.
type Table struct {
	Fields []Field
	Rows   []Row
}

// Template is a named, persisted schema.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Fields      []Field   `json:"fields"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TemplateMatch represents a template that matches a set of headers.
type TemplateMatch struct {
	Template   Template `json:"template"`
	MatchScore float64  `json:"matchScore"`
}

// CellKind is the native type a tabular reader reported for a cell.
type CellKind int

const (
	KindText CellKind = iota
	KindNumber
	KindBool
)

// Cell is a raw sample value from an uploaded template.
type Cell struct {
	Value string
	Kind  CellKind
}

// TextCells wraps plain strings as text cells.
func TextCells(values []string) []Cell {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Cell{Value: v, Kind: KindText}
	}
	return cells
}
