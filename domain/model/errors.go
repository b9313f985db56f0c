package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by csvapi wraps exactly one of them.
var (
	// ErrNameConflict is returned when a dataset name is already taken
	ErrNameConflict = errors.New("csvapi: dataset name already exists")

	// ErrParse indicates the uploaded data could not be decoded into rows
	ErrParse = errors.New("csvapi: unparsable tabular data")

	// ErrStorageConflict indicates the physical table for a new dataset already exists
	ErrStorageConflict = errors.New("csvapi: storage conflict")

	// ErrStorage indicates the underlying store rejected an operation or is unavailable
	ErrStorage = errors.New("csvapi: storage error")

	// ErrNotFound indicates an unknown dataset name
	ErrNotFound = errors.New("csvapi: dataset not found")

	// ErrInvalidParameter indicates malformed pagination or request parameters
	ErrInvalidParameter = errors.New("csvapi: invalid parameter")

	// ErrUnknownColumn indicates a filter or sort column missing from the dataset schema
	ErrUnknownColumn = errors.New("csvapi: unknown column")

	// ErrUnsupportedOperator indicates a filter operator outside the supported set
	ErrUnsupportedOperator = errors.New("csvapi: unsupported operator")

	// ErrInvalidFilterValue indicates a filter value that does not parse as the column type
	ErrInvalidFilterValue = errors.New("csvapi: invalid filter value")

	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")
)

// Kinds lists every error kind in the taxonomy.
var Kinds = []error{
	ErrNameConflict,
	ErrParse,
	ErrStorageConflict,
	ErrStorage,
	ErrNotFound,
	ErrInvalidParameter,
	ErrUnknownColumn,
	ErrUnsupportedOperator,
	ErrInvalidFilterValue,
}

// KindOf returns the taxonomy kind wrapped by err, or nil if err carries none.
func KindOf(err error) error {
	for _, kind := range Kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	Dataset   string
	Column    string
	Value     string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation string) *ErrorContext {
	return &ErrorContext{Operation: operation}
}

// WithDataset adds dataset context to the error
func (ec *ErrorContext) WithDataset(name string) *ErrorContext {
	ec.Dataset = name
	return ec
}

// WithColumn adds column context to the error
func (ec *ErrorContext) WithColumn(column string) *ErrorContext {
	ec.Column = column
	return ec
}

// WithValue adds the offending value to the error
func (ec *ErrorContext) WithValue(value string) *ErrorContext {
	ec.Value = value
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

func (ec *ErrorContext) String() string {
	parts := []string{fmt.Sprintf("%s failed", ec.Operation)}
	if ec.Dataset != "" {
		parts = append(parts, "dataset: "+ec.Dataset)
	}
	if ec.Column != "" {
		parts = append(parts, "column: "+ec.Column)
	}
	if ec.Value != "" {
		parts = append(parts, fmt.Sprintf("value: %q", ec.Value))
	}
	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}
	return strings.Join(parts, ", ")
}

// Error creates a formatted error of the given kind with context
func (ec *ErrorContext) Error(kind error) error {
	return fmt.Errorf("%s: %w", ec.String(), kind)
}

// Wrap is like Error but also keeps cause in the chain.
func (ec *ErrorContext) Wrap(kind, cause error) error {
	if cause == nil {
		return ec.Error(kind)
	}
	return fmt.Errorf("%s: %w: %w", ec.String(), kind, cause)
}
