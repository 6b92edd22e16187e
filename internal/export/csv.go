package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/JonMunkholm/DataForge/internal/core"
)

// writeCSV writes a header of field names followed by one record per row.
func writeCSV(w io.Writer, t *core.Table) error {
	cw := csv.NewWriter(w)

	record := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		record[i] = f.Name
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range t.Rows {
		for i, f := range t.Fields {
			record[i] = text(row[f.Name])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
