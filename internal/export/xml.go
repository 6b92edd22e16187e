package export

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/JonMunkholm/DataForge/internal/core"
)

// writeXML writes <data><row><field>value</field>...</row>...</data>.
func writeXML(w io.Writer, t *core.Table) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(xml.Header)

	names := make([]xml.Name, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = xml.Name{Local: ElementName(f.Name)}
	}

	enc := xml.NewEncoder(bw)
	enc.Indent("", "  ")

	data := xml.StartElement{Name: xml.Name{Local: "data"}}
	row := xml.StartElement{Name: xml.Name{Local: "row"}}

	if err := enc.EncodeToken(data); err != nil {
		return err
	}
	for r, values := range t.Rows {
		if err := enc.EncodeToken(row); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
		for i, f := range t.Fields {
			el := xml.StartElement{Name: names[i]}
			if err := enc.EncodeElement(text(values[f.Name]), el); err != nil {
				return fmt.Errorf("write row %d field %q: %w", r, f.Name, err)
			}
		}
		if err := enc.EncodeToken(row.End()); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}
	if err := enc.EncodeToken(data.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// ElementName turns a field name into a valid XML element name. Invalid
// characters become underscores and names that cannot start an element
// (digits, punctuation, the reserved "xml" prefix) get a leading underscore.
func ElementName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	s := b.String()
	if s == "" {
		return "field"
	}
	first := []rune(s)[0]
	if !unicode.IsLetter(first) && first != '_' {
		s = "_" + s
	}
	if strings.HasPrefix(strings.ToLower(s), "xml") {
		s = "_" + s
	}
	return s
}
