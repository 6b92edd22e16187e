package core

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/DataForge/internal/dataset"
	"github.com/google/uuid"
)

var fixedNow = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

func allTypeFields() []Field {
	fields := make([]Field, 0, len(dataTypes))
	for i, t := range DataTypes() {
		fields = append(fields, NewField("col_"+string(t), t, i))
	}
	return fields
}

func TestGenerateValue_NeverEmpty(t *testing.T) {
	g := NewGenerator()
	for _, f := range allTypeFields() {
		for i := 0; i < 1000; i++ {
			v := g.GenerateValue(f)
			if v == nil {
				t.Fatalf("%s: got nil value", f.Type)
			}
			if s, ok := v.(string); ok && s == "" {
				t.Fatalf("%s: got empty string", f.Type)
			}
		}
	}
}

func TestGenerateValue_Formats(t *testing.T) {
	g := NewGenerator(WithClock(fixedNow))

	patterns := map[DataType]*regexp.Regexp{
		TypeDate:     regexp.MustCompile(`^(2021|2022|2023|2024|2025)-(0[1-9]|1[0-2])-(0[1-9]|1[0-9]|2[0-8])$`),
		TypeEmail:    regexp.MustCompile(`^[a-z]+@(gmail\.com|yahoo\.com|outlook\.com|company\.com|example\.com)$`),
		TypePhone:    regexp.MustCompile(`^\+1[1-9][0-9]{9}$`),
		TypeAddress:  regexp.MustCompile(`^[0-9]{1,4} [A-Za-z ]+, [A-Za-z ]+, CA [1-9][0-9]{4}$`),
		TypeURL:      regexp.MustCompile(`^https://example\.com/[a-z]+$`),
		TypeCurrency: regexp.MustCompile(`^\$[0-9]{1,4}\.[0-9]{2}$`),
	}

	for typ, re := range patterns {
		f := NewField("value", typ, 0)
		for i := 0; i < 200; i++ {
			v, ok := g.GenerateValue(f).(string)
			if !ok {
				t.Fatalf("%s: value is not a string", typ)
			}
			if !re.MatchString(v) {
				t.Fatalf("%s: %q does not match %s", typ, v, re)
			}
		}
	}

	for i := 0; i < 200; i++ {
		n, ok := g.GenerateValue(NewField("count", TypeNumber, 0)).(int)
		if !ok || n < 0 || n >= 1000 {
			t.Fatalf("number = %v, want int in [0,1000)", n)
		}
		if _, ok := g.GenerateValue(NewField("flag", TypeBoolean, 0)).(bool); !ok {
			t.Fatal("boolean value is not a bool")
		}
		id, _ := g.GenerateValue(NewField("id", TypeUUID, 0)).(string)
		if parsed, err := uuid.Parse(id); err != nil || parsed.Version() != 4 {
			t.Fatalf("uuid = %q, want version 4 uuid", id)
		}
	}
}

func TestGenerateValue_StringHints(t *testing.T) {
	ds := dataset.Default()
	tests := []struct {
		field string
		list  []string
	}{
		{"first_name", ds.FirstNames},
		{"Last", ds.LastNames},
		{"subject", ds.Titles},
		{"notes", ds.Descriptions},
		{"order_status", ds.Statuses},
		{"category", ds.Categories},
		{"organization", ds.Companies},
		{"city", ds.Cities},
		{"country", ds.Countries},
	}

	g := NewGenerator(WithDataset(ds))
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				v := g.GenerateValue(NewField(tt.field, TypeString, 0)).(string)
				if !contains(tt.list, v) {
					t.Fatalf("%q not in %v", v, tt.list)
				}
			}
		})
	}

	full := g.GenerateValue(NewField("Full Name", TypeString, 0)).(string)
	if parts := strings.Split(full, " "); len(parts) != 2 || !contains(ds.FirstNames, parts[0]) || !contains(ds.LastNames, parts[1]) {
		t.Errorf("full name = %q, want \"First Last\"", full)
	}

	generic := g.GenerateValue(NewField("sku", TypeString, 0)).(string)
	if !regexp.MustCompile(`^Sample sku [0-9]{1,3}$`).MatchString(generic) {
		t.Errorf("generic string = %q, want \"Sample sku <n>\"", generic)
	}
}

func TestGenerateValue_UnknownTypeFallsBack(t *testing.T) {
	g := NewGenerator()
	v, ok := g.GenerateValue(Field{Name: "code", Type: DataType("integer")}).(string)
	if !ok || !strings.HasPrefix(v, "Sample code ") {
		t.Errorf("value = %v, want generic string", v)
	}
}

func TestGenerateTable_Shape(t *testing.T) {
	g := NewGenerator()
	fields := []Field{
		NewField("email", TypeEmail, 1),
		NewField("name", TypeString, 0),
	}

	table, err := g.GenerateTable(context.Background(), fields, 25)
	if err != nil {
		t.Fatalf("GenerateTable() error = %v", err)
	}
	if len(table.Rows) != 25 {
		t.Fatalf("len(Rows) = %d, want 25", len(table.Rows))
	}
	if table.Fields[0].Name != "name" || table.Fields[1].Name != "email" {
		t.Errorf("fields not sorted by order: %v", names(table.Fields))
	}
	for i, row := range table.Rows {
		if len(row) != 2 {
			t.Fatalf("row %d has %d keys, want 2", i, len(row))
		}
		if _, ok := row["name"]; !ok {
			t.Fatalf("row %d missing name", i)
		}
		if _, ok := row["email"]; !ok {
			t.Fatalf("row %d missing email", i)
		}
	}
}

func TestGenerateTable_Parallel(t *testing.T) {
	g := NewGenerator(WithParallelThreshold(100), WithWorkers(4))
	fields := allTypeFields()

	table, err := g.GenerateTable(context.Background(), fields, 12345)
	if err != nil {
		t.Fatalf("GenerateTable() error = %v", err)
	}
	if len(table.Rows) != 12345 {
		t.Fatalf("len(Rows) = %d, want 12345", len(table.Rows))
	}
	for i, row := range table.Rows {
		if len(row) != len(fields) {
			t.Fatalf("row %d has %d keys, want %d", i, len(row), len(fields))
		}
	}
}

func TestGenerateTable_SeedIsDeterministic(t *testing.T) {
	fields := allTypeFields()

	sequential := NewGenerator(WithSeed(42), WithClock(fixedNow))
	parallel := NewGenerator(WithSeed(42), WithClock(fixedNow), WithParallelThreshold(1), WithWorkers(8))

	a, err := sequential.GenerateTable(context.Background(), fields, 2500)
	if err != nil {
		t.Fatal(err)
	}
	b, err := parallel.GenerateTable(context.Background(), fields, 2500)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Rows, b.Rows) {
		t.Error("same seed produced different tables")
	}

	other := NewGenerator(WithSeed(43), WithClock(fixedNow))
	c, _ := other.GenerateTable(context.Background(), fields, 2500)
	if reflect.DeepEqual(a.Rows, c.Rows) {
		t.Error("different seeds produced identical tables")
	}
}

func TestGenerateTable_UnseededTablesDiffer(t *testing.T) {
	g := NewGenerator()
	fields := []Field{
		NewField("id", TypeUUID, 0),
		NewField("n", TypeNumber, 1),
		NewField("full name", TypeString, 2),
	}
	ctx := context.Background()

	a, err := g.GenerateTable(ctx, fields, 5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := g.GenerateTable(ctx, fields, 5)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Rows, b.Rows) {
		t.Error("two tables from the same generator are identical")
	}

	seen := make(map[any]bool)
	for _, table := range []*Table{a, b} {
		for _, row := range table.Rows {
			if seen[row["id"]] {
				t.Fatalf("uuid %v repeated across tables", row["id"])
			}
			seen[row["id"]] = true
		}
	}

	p1, _ := g.Preview(ctx, fields, 3)
	p2, _ := g.Preview(ctx, fields, 3)
	if reflect.DeepEqual(p1.Rows, p2.Rows) {
		t.Error("two previews are identical")
	}
}

func TestGenerateTable_Validation(t *testing.T) {
	g := NewGenerator(WithMaxRows(50))
	ctx := context.Background()
	ok := []Field{NewField("name", TypeString, 0)}

	tests := []struct {
		name   string
		fields []Field
		rows   int
		rule   string
	}{
		{"zero rows", ok, 0, "rowCount"},
		{"negative rows", ok, -1, "rowCount"},
		{"above configured max", ok, 51, "rowCount"},
		{"no fields", nil, 5, "fields"},
		{"invalid field", []Field{NewField("", TypeString, 0)}, 5, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.GenerateTable(ctx, tt.fields, tt.rows)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if ve.Rule != tt.rule {
				t.Errorf("Rule = %s, want %s", ve.Rule, tt.rule)
			}
		})
	}

	if _, err := NewGenerator().GenerateTable(ctx, ok, MaxRowCount); err != nil {
		t.Errorf("GenerateTable(%d) error = %v", MaxRowCount, err)
	}
}

func TestGenerateTable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator().GenerateTable(ctx, []Field{NewField("n", TypeNumber, 0)}, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestGenerator_Preview(t *testing.T) {
	g := NewGenerator()
	fields := []Field{NewField("name", TypeString, 0)}

	table, err := g.Preview(context.Background(), fields, 500)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(table.Rows) != PreviewRowLimit {
		t.Errorf("len(Rows) = %d, want %d", len(table.Rows), PreviewRowLimit)
	}

	table, _ = g.Preview(context.Background(), fields, 3)
	if len(table.Rows) != 3 {
		t.Errorf("len(Rows) = %d, want 3", len(table.Rows))
	}
}

func TestGenerator_SetDataset(t *testing.T) {
	g := NewGenerator()
	ds := dataset.Default()
	ds.Cities = []string{"Reykjavik"}
	g.SetDataset(ds)

	if v := g.GenerateValue(NewField("city", TypeString, 0)); v != "Reykjavik" {
		t.Errorf("city = %v, want Reykjavik", v)
	}
	g.SetDataset(nil)
	if g.Dataset() != ds {
		t.Error("SetDataset(nil) replaced the dataset")
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func BenchmarkGenerateTable(b *testing.B) {
	g := NewGenerator()
	fields := allTypeFields()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.GenerateTable(ctx, fields, 10000); err != nil {
			b.Fatal(err)
		}
	}
}
