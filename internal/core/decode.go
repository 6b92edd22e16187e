package core

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// utf8BOM is the byte order mark Windows programs prepend to UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText strips a leading UTF-8 BOM and replaces invalid UTF-8
// sequences with U+FFFD.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

// isBlankRow reports whether every cell is empty after trimming.
func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
