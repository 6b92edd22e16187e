package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/DataForge/internal/core"
)

// writeJSON writes an indented array of row objects. encoding/json sorts map
// keys, so objects are written key by key to keep field order.
func writeJSON(w io.Writer, t *core.Table) error {
	bw := bufio.NewWriter(w)

	if len(t.Rows) == 0 {
		bw.WriteString("[]\n")
		return bw.Flush()
	}

	keys := make([][]byte, len(t.Fields))
	for i, f := range t.Fields {
		k, err := json.Marshal(f.Name)
		if err != nil {
			return fmt.Errorf("encode key %q: %w", f.Name, err)
		}
		keys[i] = k
	}

	bw.WriteString("[\n")
	for r, row := range t.Rows {
		bw.WriteString("  {")
		for i, f := range t.Fields {
			v, err := json.Marshal(row[f.Name])
			if err != nil {
				return fmt.Errorf("encode row %d field %q: %w", r, f.Name, err)
			}
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString("\n    ")
			bw.Write(keys[i])
			bw.WriteString(": ")
			bw.Write(v)
		}
		if len(t.Fields) > 0 {
			bw.WriteString("\n  ")
		}
		bw.WriteByte('}')
		if r < len(t.Rows)-1 {
			bw.WriteByte(',')
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("]\n")
	return bw.Flush()
}
