package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalDatetimeLayout is the textual form datetime values are stored and compared in.
const CanonicalDatetimeLayout = "2006-01-02 15:04:05.999999999"

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "01/02/2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "01/02/2006"},
	},
	// European formats
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4} \d{1,2}:\d{2}:\d{2}$`),
		[]string{"2.1.2006 15:04:05", "02.01.2006 15:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		[]string{"2.1.2006", "02.01.2006"},
	},
	// Time only
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"15:04:05", "15:04:05.999999999", "3:04:05"},
	},
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}$`),
		[]string{"15:04", "3:04"},
	},
}

// booleanTokens are the tokens recognized when inferring a boolean column.
var booleanTokens = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true,
	"false": false, "f": false, "no": false, "n": false,
}

// parseDatetime parses value with the first matching datetime layout.
func parseDatetime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// isDatetime checks if a string value represents a datetime
func isDatetime(value string) bool {
	_, ok := parseDatetime(value)
	return ok
}

// CanonicalDatetime converts a datetime literal into its canonical UTC text form.
func CanonicalDatetime(value string) (string, bool) {
	t, ok := parseDatetime(value)
	if !ok {
		return "", false
	}
	return t.UTC().Format(CanonicalDatetimeLayout), true
}

// isInteger checks if a value is an integer literal
func isInteger(value string) bool {
	if len(value) == 0 {
		return false
	}
	first := value[0]
	if first != '+' && first != '-' && (first < '0' || first > '9') {
		return false
	}
	_, err := strconv.ParseInt(value, 10, 64)
	return err == nil
}

// isFloat checks if a value is a finite floating point literal
func isFloat(value string) bool {
	// strconv accepts "inf" and "nan"; those stay text
	hasDigit := false
	for _, r := range value {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// isBoolean checks if a value is a recognized boolean token
func isBoolean(value string) bool {
	_, ok := booleanTokens[strings.ToLower(value)]
	return ok
}

// typeChecks is the inference priority order. The first check every
// non-empty value passes decides the column type.
var typeChecks = []struct {
	typ   LogicalType
	check func(string) bool
}{
	{LogicalTypeInteger, isInteger},
	{LogicalTypeFloat, isFloat},
	{LogicalTypeBoolean, isBoolean},
	{LogicalTypeDatetime, isDatetime},
}

// InferColumnType infers the logical type of a column from its raw values.
// Empty values are treated as nulls and ignored; an all-null column is a string.
func InferColumnType(values []string) LogicalType {
	candidates := make([]bool, len(typeChecks))
	for i := range candidates {
		candidates[i] = true
	}

	nonEmpty := 0
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		nonEmpty++

		remaining := false
		for i, tc := range typeChecks {
			if candidates[i] && !tc.check(value) {
				candidates[i] = false
			}
			remaining = remaining || candidates[i]
		}
		if !remaining {
			return LogicalTypeString
		}
	}

	if nonEmpty == 0 {
		return LogicalTypeString
	}
	for i, tc := range typeChecks {
		if candidates[i] {
			return tc.typ
		}
	}
	return LogicalTypeString
}

// ColumnValues collects the i-th cell of every record.
func ColumnValues(records []Record, i int) []string {
	values := make([]string, 0, len(records))
	for _, record := range records {
		if i < len(record) {
			values = append(values, record[i])
		}
	}
	return values
}

// InferColumns infers column information from header and data records
func InferColumns(header Header, records []Record) Schema {
	if len(header) == 0 {
		return nil
	}

	schema := make(Schema, len(header))
	for i, name := range header {
		schema[i] = Column{
			Name: name,
			Type: InferColumnType(ColumnValues(records, i)),
		}
	}
	return schema
}
