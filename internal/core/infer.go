package core

// infer.go implements column type inference.
//
// Name rules are checked first, in strict precedence order, against the
// lower-cased column name. Only when no name rule matches are the sample
// values inspected. The first matching rule wins; there is no backtracking.

import (
	"math"
	"strconv"
	"strings"
)

// InferSampleSize is the number of non-empty sample values inspected.
const InferSampleSize = 5

// nameRule maps column-name substrings to a data type.
type nameRule struct {
	contains []string
	typ      DataType
}

// nameRules are evaluated in order. The uuid and boolean rules have extra
// conditions and are handled in inferFromName.
var nameRules = []nameRule{
	{contains: []string{"email", "e-mail"}, typ: TypeEmail},
	{contains: []string{"phone", "mobile", "tel"}, typ: TypePhone},
	{contains: []string{"address", "location", "street"}, typ: TypeAddress},
	{contains: []string{"url", "website", "link"}, typ: TypeURL},
	{contains: []string{"date", "time", "dob", "birth"}, typ: TypeDate},
	{contains: []string{"price", "amount", "cost", "salary"}, typ: TypeCurrency},
}

// booleanNames only match when the whole column name is equal.
var booleanNames = map[string]bool{
	"active":   true,
	"enabled":  true,
	"verified": true,
}

// InferType returns the semantic type for a column given its header name
// and sample values. It is a pure function of its arguments.
func InferType(columnName string, samples []Cell) DataType {
	if t, ok := inferFromName(columnName); ok {
		return t
	}
	if t, ok := inferFromValues(samples); ok {
		return t
	}
	return TypeString
}

// InferTypeFromStrings is InferType for plain text samples.
func InferTypeFromStrings(columnName string, values []string) DataType {
	return InferType(columnName, TextCells(values))
}

func inferFromName(columnName string) (DataType, bool) {
	name := strings.ToLower(columnName)

	for _, rule := range nameRules {
		if containsAny(name, rule.contains...) {
			return rule.typ, true
		}
	}

	if strings.Contains(name, "id") && containsAny(name, "uuid", "guid") {
		return TypeUUID, true
	}

	if booleanNames[name] || strings.Contains(name, "is_") {
		return TypeBoolean, true
	}

	return "", false
}

func inferFromValues(samples []Cell) (DataType, bool) {
	values := nonEmptySample(samples, InferSampleSize)
	if len(values) == 0 {
		return "", false
	}

	switch values[0].Kind {
	case KindBool:
		return TypeBoolean, true
	case KindNumber:
		return TypeNumber, true
	}

	if allCells(values, isNumeric) {
		return TypeNumber, true
	}
	if allCells(values, isBooleanLiteral) {
		return TypeBoolean, true
	}
	return "", false
}

// nonEmptySample returns up to n cells whose value is not blank.
func nonEmptySample(samples []Cell, n int) []Cell {
	out := make([]Cell, 0, n)
	for _, c := range samples {
		if len(out) == n {
			break
		}
		if strings.TrimSpace(c.Value) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func allCells(cells []Cell, pred func(string) bool) bool {
	for _, c := range cells {
		if !pred(c.Value) {
			return false
		}
	}
	return true
}

// isNumeric reports whether s parses fully as a number.
func isNumeric(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f)
}

func isBooleanLiteral(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false", "0", "1":
		return true
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
