package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetName is the only sheet of an exported workbook.
const sheetName = "Sheet1"

// Writer encodes rows in one output format. Call Close to flush.
type Writer struct {
	opts    Options
	columns []string

	sink      io.Writer
	closeSink func() error

	csv  *csv.Writer
	ltsv *bufio.Writer

	book   *excelize.File
	stream *excelize.StreamWriter
	rowNum int
}

// NewWriter returns a Writer producing opts.Format over w. Delimited and
// workbook formats start with a header row of columns.
func NewWriter(w io.Writer, opts Options, columns []string) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	sink, closeSink, err := newCompressedWriter(w, opts.Compression)
	if err != nil {
		return nil, err
	}

	ew := &Writer{opts: opts, columns: columns, sink: sink, closeSink: closeSink}
	switch opts.Format {
	case FormatCSV, FormatTSV:
		ew.csv = csv.NewWriter(sink)
		if opts.Format == FormatTSV {
			ew.csv.Comma = '\t'
		}
		if err := ew.csv.Write(columns); err != nil {
			return nil, err
		}
	case FormatLTSV:
		ew.ltsv = bufio.NewWriter(sink)
	case FormatXLSX:
		ew.book = excelize.NewFile()
		ew.stream, err = ew.book.NewStreamWriter(sheetName)
		if err != nil {
			_ = ew.book.Close()
			return nil, fmt.Errorf("failed to create sheet writer: %w", err)
		}
		header := make([]any, len(columns))
		for i, c := range columns {
			header[i] = c
		}
		if err := ew.writeSheetRow(header); err != nil {
			_ = ew.book.Close()
			return nil, err
		}
	}
	return ew, nil
}

// Write encodes one row. values must follow the column order given to
// NewWriter.
func (w *Writer) Write(values []any) error {
	if len(values) != len(w.columns) {
		return fmt.Errorf("row has %d values, want %d", len(values), len(w.columns))
	}
	switch w.opts.Format {
	case FormatLTSV:
		return w.writeLTSV(values)
	case FormatXLSX:
		cells := make([]any, len(values))
		for i, v := range values {
			if v == nil {
				v = ""
			}
			cells[i] = v
		}
		return w.writeSheetRow(cells)
	default:
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = FormatValue(v)
		}
		return w.csv.Write(record)
	}
}

// Close flushes the encoder and the compressor. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	var err error
	switch w.opts.Format {
	case FormatLTSV:
		err = w.ltsv.Flush()
	case FormatXLSX:
		err = w.closeBook()
	default:
		w.csv.Flush()
		err = w.csv.Error()
	}
	if cerr := w.closeSink(); err == nil {
		err = cerr
	}
	return err
}

var (
	ltsvLabel = strings.NewReplacer(":", "_", "\t", " ", "\n", " ", "\r", " ")
	ltsvValue = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
)

// writeLTSV writes one line of label:value pairs. NULL values are
// written as empty values; tabs and line breaks become spaces.
func (w *Writer) writeLTSV(values []any) error {
	for i, v := range values {
		if i > 0 {
			if err := w.ltsv.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := w.ltsv.WriteString(ltsvLabel.Replace(w.columns[i]) + ":" + ltsvValue.Replace(FormatValue(v))); err != nil {
			return err
		}
	}
	return w.ltsv.WriteByte('\n')
}

func (w *Writer) writeSheetRow(cells []any) error {
	w.rowNum++
	cell, err := excelize.CoordinatesToCellName(1, w.rowNum)
	if err != nil {
		return err
	}
	return w.stream.SetRow(cell, cells)
}

func (w *Writer) closeBook() error {
	defer func() { _ = w.book.Close() }()
	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := w.book.Write(w.sink); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// FormatValue renders a typed row value as text. NULL becomes the empty
// string and floats use the shortest representation that round-trips.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
