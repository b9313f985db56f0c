package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Coercer turns a raw filter value into the bound parameter used against a
// column of one logical type.
type Coercer func(raw string) (any, error)

// truthyTokens is the fixed set of filter tokens read as true. Anything else
// is false; the filter boolean parse is permissive by contract.
var truthyTokens = map[string]struct{}{
	"1": {}, "true": {}, "t": {}, "yes": {}, "y": {},
}

var coercers = map[LogicalType]Coercer{
	LogicalTypeInteger:  coerceInteger,
	LogicalTypeFloat:    coerceFloat,
	LogicalTypeBoolean:  coerceBoolean,
	LogicalTypeDatetime: coerceDatetime,
	LogicalTypeString:   coerceString,
}

// CoercerFor returns the filter coercion strategy for a logical type.
func CoercerFor(lt LogicalType) Coercer {
	if c, ok := coercers[lt]; ok {
		return c
	}
	return coerceString
}

func coerceInteger(raw string) (any, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %w", err)
	}
	return v, nil
}

func coerceFloat(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if !isFloat(raw) {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %w", err)
	}
	return v, nil
}

func coerceBoolean(raw string) (any, error) {
	if _, ok := truthyTokens[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return int64(1), nil
	}
	return int64(0), nil
}

func coerceDatetime(raw string) (any, error) {
	v, ok := CanonicalDatetime(raw)
	if !ok {
		return nil, fmt.Errorf("not a date/time: %q", raw)
	}
	return v, nil
}

func coerceString(raw string) (any, error) {
	return raw, nil
}

// ConvertCell converts a raw uploaded cell into the value stored for a column
// of type lt. Empty cells become NULL.
func ConvertCell(lt LogicalType, raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	switch lt {
	case LogicalTypeInteger:
		return coerceInteger(trimmed)
	case LogicalTypeFloat:
		return coerceFloat(trimmed)
	case LogicalTypeBoolean:
		b, ok := booleanTokens[strings.ToLower(trimmed)]
		if !ok {
			return nil, fmt.Errorf("not a boolean: %q", raw)
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	case LogicalTypeDatetime:
		return coerceDatetime(trimmed)
	default:
		return raw, nil
	}
}

// ConvertRecord converts every cell of record according to schema.
func (s Schema) ConvertRecord(record Record) ([]any, error) {
	values := make([]any, len(s))
	for i, col := range s {
		if i >= len(record) {
			continue
		}
		v, err := ConvertCell(col.Type, record[i])
		if err != nil {
			return nil, NewErrorContext("convert").
				WithColumn(col.Name).
				WithValue(record[i]).
				Wrap(ErrParse, err)
		}
		values[i] = v
	}
	return values, nil
}
