// Package export writes dataset rows back out as delimited text or an
// Excel workbook, optionally compressed.
package export

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/csvapi/parser"
)

// Query parameters read by ParseOptions.
const (
	ParamFormat      = "format"
	ParamCompression = "compression"
)

// ErrUnsupported is returned for formats or compressions that cannot be written.
var ErrUnsupported = errors.New("unsupported export option")

// Format represents the output file format
type Format int

const (
	// FormatCSV represents CSV output format
	FormatCSV Format = iota
	// FormatTSV represents TSV output format
	FormatTSV
	// FormatLTSV represents LTSV output format
	FormatLTSV
	// FormatXLSX represents an Excel workbook with a single sheet
	FormatXLSX
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatTSV:
		return "tsv"
	case FormatLTSV:
		return "ltsv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	return "." + f.String()
}

// ContentType is the media type of an uncompressed file in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case FormatLTSV:
		return "text/plain; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Options configures how a dataset is exported.
//
//	opts := export.NewOptions().
//		WithFormat(export.FormatTSV).
//		WithCompression(parser.CompressionGZ)
type Options struct {
	// Format specifies the output file format
	Format Format
	// Compression specifies the compression wrapped around the output
	Compression parser.CompressionType
}

// NewOptions returns CSV without compression.
func NewOptions() Options {
	return Options{Format: FormatCSV, Compression: parser.CompressionNone}
}

// WithFormat sets the output file format.
func (o Options) WithFormat(format Format) Options {
	o.Format = format
	return o
}

// WithCompression sets the output compression. bzip2 cannot be written.
func (o Options) WithCompression(compression parser.CompressionType) Options {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o Options) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

// FileName is base plus FileExtension.
func (o Options) FileName(base string) string {
	return base + o.FileExtension()
}

// ContentType is the media type of the produced stream.
func (o Options) ContentType() string {
	switch o.Compression {
	case parser.CompressionGZ:
		return "application/gzip"
	case parser.CompressionXZ:
		return "application/x-xz"
	case parser.CompressionZSTD:
		return "application/zstd"
	default:
		return o.Format.ContentType()
	}
}

// Validate reports options that cannot be written.
func (o Options) Validate() error {
	switch o.Format {
	case FormatCSV, FormatTSV, FormatLTSV, FormatXLSX:
	default:
		return fmt.Errorf("%w: format %d", ErrUnsupported, int(o.Format))
	}
	switch o.Compression {
	case parser.CompressionNone, parser.CompressionGZ, parser.CompressionXZ, parser.CompressionZSTD:
	default:
		return fmt.Errorf("%w: %s compression cannot be written", ErrUnsupported, o.Compression)
	}
	return nil
}

// ParseFormat parses a format name. The empty string means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "ltsv":
		return FormatLTSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return FormatCSV, fmt.Errorf("%w: format %q (want csv, tsv, ltsv or xlsx)", ErrUnsupported, s)
	}
}

// ParseCompression parses a compression name. The empty string and "none"
// mean no compression.
func ParseCompression(s string) (parser.CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return parser.CompressionNone, nil
	case "gz", "gzip":
		return parser.CompressionGZ, nil
	case "xz":
		return parser.CompressionXZ, nil
	case "zst", "zstd":
		return parser.CompressionZSTD, nil
	default:
		return parser.CompressionNone, fmt.Errorf("%w: compression %q (want none, gz, xz or zstd)", ErrUnsupported, s)
	}
}

// ParseOptions reads the format and compression query parameters.
func ParseOptions(values url.Values) (Options, error) {
	format, err := ParseFormat(values.Get(ParamFormat))
	if err != nil {
		return Options{}, err
	}
	compression, err := ParseCompression(values.Get(ParamCompression))
	if err != nil {
		return Options{}, err
	}
	return NewOptions().WithFormat(format).WithCompression(compression), nil
}
