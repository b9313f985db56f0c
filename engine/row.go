package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nao1215/csvapi/domain/model"
)

// Row is one result row. It marshals to a JSON object whose keys follow
// the dataset's column order.
type Row struct {
	columns []string
	values  []any
}

// NewRow pairs columns with values; both must have the same length.
func NewRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

// Columns returns the column names in order.
func (r Row) Columns() []string { return r.columns }

// Values returns the typed values in column order.
func (r Row) Values() []any { return r.values }

// Map returns the row as a map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// MarshalJSON implements json.Marshaler.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeValue maps a raw driver value to its logical Go type:
// int64, float64, bool, string or nil.
func decodeValue(lt model.LogicalType, v any) (any, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil, nil
	}
	switch lt {
	case model.LogicalTypeInteger:
		switch n := v.(type) {
		case int64:
			return n, nil
		case float64:
			return int64(n), nil
		}
	case model.LogicalTypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		}
	case model.LogicalTypeBoolean:
		switch n := v.(type) {
		case int64:
			return n != 0, nil
		case bool:
			return n, nil
		}
	case model.LogicalTypeDatetime, model.LogicalTypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("unexpected %T value for %s column", v, lt)
}
