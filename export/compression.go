package export

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/nao1215/csvapi/parser"
)

// newCompressedWriter wraps w in a compressor. The returned close func
// flushes the compressor but leaves w open.
func newCompressedWriter(w io.Writer, compression parser.CompressionType) (io.Writer, func() error, error) {
	switch compression {
	case parser.CompressionNone:
		return w, func() error { return nil }, nil

	case parser.CompressionGZ:
		gzWriter := gzip.NewWriter(w)
		return gzWriter, gzWriter.Close, nil

	case parser.CompressionXZ:
		xzWriter, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzWriter, xzWriter.Close, nil

	case parser.CompressionZSTD:
		zstdWriter, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zstdWriter, zstdWriter.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s compression cannot be written", ErrUnsupported, compression)
	}
}
