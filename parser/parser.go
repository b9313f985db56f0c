// Package parser decodes uploaded tabular files (CSV, TSV, LTSV, XLSX and
// Parquet, each optionally gzip, bzip2, xz or zstd compressed) into
// model.Table values ready for type inference and materialization.
package parser

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	pqfile "github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/csvapi/domain/model"
)

// utf8BOM is stripped from the start of delimited files.
const utf8BOM = "\ufeff"

var errEmptyData = errors.New("empty data source")

// Parse decodes r according to the format detected from fileName.
func Parse(ctx context.Context, fileName string, r io.Reader) (*model.Table, error) {
	return ParseFormat(ctx, DetectFormat(fileName), fileName, r)
}

// ParseFormat decodes r as the given format. fileName is only used for the
// table name and error context. Every failure wraps model.ErrParse.
func ParseFormat(ctx context.Context, format Format, fileName string, r io.Reader) (*model.Table, error) {
	errCtx := model.NewErrorContext("parse " + format.Type.String()).WithDetails("file " + fileName)

	reader, cleanup, err := newDecompressedReader(r, format.Compression)
	if err != nil {
		return nil, errCtx.Wrap(model.ErrParse, err)
	}
	defer func() {
		_ = cleanup() // Ignore close error in cleanup
	}()

	var (
		header  model.Header
		records []model.Record
	)
	switch format.Type {
	case FileTypeTSV:
		header, records, err = parseDelimited(reader, tsvDelimiter)
	case FileTypeLTSV:
		header, records, err = parseLTSV(reader)
	case FileTypeParquet:
		header, records, err = parseParquet(ctx, reader)
	case FileTypeXLSX:
		header, records, err = parseXLSX(reader)
	default:
		header, records, err = parseDelimited(reader, csvDelimiter)
	}
	if err != nil {
		return nil, errCtx.Wrap(model.ErrParse, err)
	}

	return model.NewTable(header, records)
}

// parseDelimited parses CSV or TSV data with the specified delimiter
func parseDelimited(reader io.Reader, delimiter rune) (model.Header, []model.Record, error) {
	csvReader := csv.NewReader(bufio.NewReader(reader))
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1 // row width is validated by model.NewTable

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errEmptyData
	}

	headerRow := rows[0]
	if len(headerRow) > 0 {
		headerRow[0] = strings.TrimPrefix(headerRow[0], utf8BOM)
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		records = append(records, model.NewRecord(row))
	}
	return model.NewHeader(headerRow), records, nil
}

// isBlankRow reports whether every field of row is empty.
func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseLTSV parses LTSV data. Columns appear in first-seen label order.
func parseLTSV(reader io.Reader) (model.Header, []model.Record, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		header  model.Header
		index   = map[string]int{}
		rowMaps []map[string]string
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		row := make(map[string]string)
		for _, pair := range strings.Split(line, "\t") {
			key, value, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			if _, seen := index[key]; !seen {
				index[key] = len(header)
				header = append(header, key)
			}
			row[key] = strings.TrimSpace(value)
		}
		if len(row) > 0 {
			rowMaps = append(rowMaps, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(rowMaps) == 0 {
		return nil, nil, errors.New("no valid LTSV records found")
	}

	records := make([]model.Record, 0, len(rowMaps))
	for _, m := range rowMaps {
		record := make(model.Record, len(header))
		for key, value := range m {
			record[index[key]] = value
		}
		records = append(records, record)
	}
	return header, records, nil
}

// parseXLSX parses the first sheet of an XLSX workbook. The first row is the
// header; shorter rows are padded and wider rows rejected by model.NewTable.
// Empty cells past the header width are dropped first.
func parseXLSX(reader io.Reader) (model.Header, []model.Record, error) {
	xlsxFile, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, nil, errors.New("no sheets found in XLSX file")
	}

	sheetName := sheetNames[0]
	rows, err := xlsxFile.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty: %w", sheetName, errEmptyData)
	}

	header := make(model.Header, len(rows[0]))
	copy(header, rows[0])

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		for len(row) > len(header) && row[len(row)-1] == "" {
			row = row[:len(row)-1]
		}
		records = append(records, model.NewRecord(row))
	}
	return header, records, nil
}

// parseParquet parses Parquet data. The whole payload is buffered because
// Parquet requires random access.
func parseParquet(ctx context.Context, reader io.Reader) (model.Header, []model.Record, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, errEmptyData
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	schema := table.Schema()
	header := make(model.Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	records := make([]model.Record, 0, table.NumRows())
	for tableReader.Next() {
		batch := tableReader.Record()
		for i := 0; i < int(batch.NumRows()); i++ {
			row := make(model.Record, batch.NumCols())
			for j, col := range batch.Columns() {
				row[j] = arrowValueString(col, i)
			}
			records = append(records, row)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading table records: %w", err)
	}
	return header, records, nil
}

// arrowValueString renders one arrow cell as the raw text type inference sees.
// Nulls become empty strings.
func arrowValueString(col arrow.Array, i int) string {
	if col.IsNull(i) {
		return ""
	}
	switch v := col.(type) {
	case *array.Timestamp:
		unit := v.DataType().(*arrow.TimestampType).Unit
		return v.Value(i).ToTime(unit).UTC().Format(time.RFC3339Nano)
	case *array.Date32:
		return v.Value(i).ToTime().Format(time.DateOnly)
	case *array.Date64:
		return v.Value(i).ToTime().Format(time.DateOnly)
	default:
		return col.ValueStr(i)
	}
}
