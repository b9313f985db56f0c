package model

import "strings"

// Pagination bounds
const (
	// MinLimit is the smallest page size ever executed
	MinLimit = 1
	// MaxLimit is the safety ceiling on page size
	MaxLimit = 1000
	// DefaultLimit is used when a request does not specify a limit
	DefaultLimit = 100
)

// Operator is a filter comparison operator.
type Operator string

// Supported filter operators
const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
)

// operatorSQL maps each supported operator to its SQL comparison.
var operatorSQL = map[Operator]string{
	OpEq:       "=",
	OpNeq:      "!=",
	OpGt:       ">",
	OpGte:      ">=",
	OpLt:       "<",
	OpLte:      "<=",
	OpContains: "LIKE",
}

// Supported reports whether op is one of the supported operators.
func (op Operator) Supported() bool {
	_, ok := operatorSQL[op]
	return ok
}

// SQL returns the SQL comparison for op, or "" if op is unsupported.
func (op Operator) SQL() string {
	return operatorSQL[op]
}

// SortDirection is the order of the single sort key.
type SortDirection int

const (
	// Ascending order
	Ascending SortDirection = iota
	// Descending order
	Descending
)

// ParseSortDirection reads a direction token. Only a case-insensitive "desc"
// yields Descending; every other token, including unknown ones, is Ascending.
func ParseSortDirection(token string) SortDirection {
	if strings.EqualFold(token, "desc") {
		return Descending
	}
	return Ascending
}

// SQL returns ASC or DESC.
func (d SortDirection) SQL() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// String returns asc or desc.
func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortKey is a column plus direction.
type SortKey struct {
	Column    string
	Direction SortDirection
}

// ParseSortKey parses a "column" or "column:direction" token.
func ParseSortKey(token string) SortKey {
	column, direction, _ := strings.Cut(token, ":")
	return SortKey{Column: column, Direction: ParseSortDirection(direction)}
}

// FilterClause is one untrusted col:op:value filter.
type FilterClause struct {
	Column   string
	Operator Operator
	RawValue string
}

// QuerySpec is the request-scoped description of one retrieval.
type QuerySpec struct {
	Filters []FilterClause
	Sort    *SortKey
	Limit   int
	Offset  int
}

// ClampLimit forces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
