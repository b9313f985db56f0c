// Package model provides the domain model for csvapi: logical column types,
// decoded tables, datasets, query specifications and the error taxonomy.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Header is file header.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Record is one row of raw cell values.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// LogicalType is the coarse-grained type of a dataset column. It drives both
// the physical column type and query-time value coercion.
type LogicalType int

const (
	// LogicalTypeString represents free text
	LogicalTypeString LogicalType = iota
	// LogicalTypeInteger represents 64-bit integers
	LogicalTypeInteger
	// LogicalTypeFloat represents 64-bit floating point numbers
	LogicalTypeFloat
	// LogicalTypeBoolean represents booleans stored as INTEGER 0/1
	LogicalTypeBoolean
	// LogicalTypeDatetime represents dates and times stored as canonical TEXT
	LogicalTypeDatetime
)

const (
	sqlTypeText    = "TEXT"
	sqlTypeInteger = "INTEGER"
	sqlTypeReal    = "REAL"
)

var logicalTypeNames = map[LogicalType]string{
	LogicalTypeString:   "string",
	LogicalTypeInteger:  "integer",
	LogicalTypeFloat:    "float",
	LogicalTypeBoolean:  "boolean",
	LogicalTypeDatetime: "datetime",
}

// String returns the logical type name as exposed over the API.
func (lt LogicalType) String() string {
	if name, ok := logicalTypeNames[lt]; ok {
		return name
	}
	return fmt.Sprintf("LogicalType(%d)", int(lt))
}

// SQLType returns the SQLite column type used to store values of this type.
func (lt LogicalType) SQLType() string {
	switch lt {
	case LogicalTypeInteger, LogicalTypeBoolean:
		return sqlTypeInteger
	case LogicalTypeFloat:
		return sqlTypeReal
	default:
		return sqlTypeText // datetime is stored as canonical TEXT
	}
}

// ParseLogicalType parses a logical type name.
func ParseLogicalType(s string) (LogicalType, error) {
	for lt, name := range logicalTypeNames {
		if strings.EqualFold(s, name) {
			return lt, nil
		}
	}
	return LogicalTypeString, fmt.Errorf("unknown logical type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (lt LogicalType) MarshalText() ([]byte, error) {
	if _, ok := logicalTypeNames[lt]; !ok {
		return nil, fmt.Errorf("unknown logical type %d", int(lt))
	}
	return []byte(lt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (lt *LogicalType) UnmarshalText(text []byte) error {
	parsed, err := ParseLogicalType(string(text))
	if err != nil {
		return err
	}
	*lt = parsed
	return nil
}

// Column is one schema entry.
type Column struct {
	Name string      `json:"name"`
	Type LogicalType `json:"type"`
}

// Schema is the ordered column list of a dataset. Its order matches the
// physical column order of the table it describes.
type Schema []Column

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a column by exact name.
func (s Schema) Lookup(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// MarshalSchema serializes the schema as an ordered list of {name, type} pairs.
func MarshalSchema(s Schema) (string, error) {
	if s == nil {
		s = Schema{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalSchema is the inverse of MarshalSchema.
func UnmarshalSchema(data string) (Schema, error) {
	var s Schema
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	return s, nil
}
