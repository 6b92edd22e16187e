package export

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// CompressedExtension is appended to the file name of compressed exports.
const CompressedExtension = ".lz4"

// NewLZ4Writer wraps w in an lz4 frame. Close must be called to flush the
// final block; it does not close w.
func NewLZ4Writer(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.ChecksumOption(true)); err != nil {
		return nil, err
	}
	return zw, nil
}
