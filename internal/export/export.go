// Package export serializes generated tables as JSON, CSV or XML.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/DataForge/internal/core"
)

// Format is an export format. It implements core.TableEncoder.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	XML  Format = "xml"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, CSV, XML}

// ParseFormat converts a case-insensitive name to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case JSON, CSV, XML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (use json, csv or xml)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv"
	case XML:
		return "application/xml"
	default:
		return "application/json"
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Encode writes t in this format.
func (f Format) Encode(w io.Writer, t *core.Table) error {
	return Write(w, f, t)
}

// Write serializes t to w. Columns follow t.Fields, which is ordered.
func Write(w io.Writer, f Format, t *core.Table) error {
	switch f {
	case JSON:
		return writeJSON(w, t)
	case CSV:
		return writeCSV(w, t)
	case XML:
		return writeXML(w, t)
	default:
		return fmt.Errorf("unsupported export format %q", string(f))
	}
}

// Filename returns the attachment name for an export created at now.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("data-export-%d.%s", now.UnixMilli(), f.Extension())
}

// text renders a cell value for the text formats.
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}
