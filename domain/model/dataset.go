package model

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxDatasetNameLength caps sanitized dataset names.
	MaxDatasetNameLength = 128
	// PhysicalTablePrefix is prepended to a dataset name to form its table name.
	// It keeps user tables apart from the catalog and SQLite system tables.
	PhysicalTablePrefix = "ds_"
	// MaxSampleSize caps the rows returned with a dataset's details.
	MaxSampleSize = 5
)

// Character validation constants
const (
	firstDigitChar = '0'
	lastDigitChar  = '9'
	firstLowerChar = 'a'
	lastLowerChar  = 'z'
	underscoreChar = '_'
)

// compressionExts are stripped before the format extension when deriving names.
var compressionExts = []string{".gz", ".bz2", ".xz", ".zst"}

// DatasetName is a sanitized dataset name: lowercase, [a-z0-9_] only, at most
// MaxDatasetNameLength characters.
type DatasetName struct {
	value string
}

// NewDatasetName sanitizes raw into a dataset name. Spaces, hyphens and dots
// become underscores and other characters are dropped. It fails with
// ErrInvalidParameter if nothing remains.
func NewDatasetName(raw string) (DatasetName, error) {
	result := strings.ToLower(strings.TrimSpace(raw))
	result = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(result)

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= firstLowerChar && r <= lastLowerChar) ||
			(r >= firstDigitChar && r <= lastDigitChar) ||
			r == underscoreChar {
			sanitized.WriteRune(r)
		}
	}

	name := sanitized.String()
	if len(name) > MaxDatasetNameLength {
		name = name[:MaxDatasetNameLength]
	}
	if name == "" {
		return DatasetName{}, NewErrorContext("name dataset").
			WithValue(raw).
			WithDetails("name must contain at least one letter, digit or underscore").
			Error(ErrInvalidParameter)
	}
	return DatasetName{value: name}, nil
}

// DatasetNameFromFile derives a dataset name from an upload file name,
// dropping directories, compression suffixes and the format extension.
func DatasetNameFromFile(fileName string) (DatasetName, error) {
	base := filepath.Base(fileName)
	lower := strings.ToLower(base)
	for _, ext := range compressionExts {
		if strings.HasSuffix(lower, ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	return NewDatasetName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// String returns the string representation of DatasetName
func (n DatasetName) String() string {
	return n.value
}

// IsZero reports whether n was never set.
func (n DatasetName) IsZero() bool {
	return n.value == ""
}

// PhysicalTable returns the storage table name for the dataset. It is a pure
// function of the name and always carries PhysicalTablePrefix.
func (n DatasetName) PhysicalTable() string {
	return PhysicalTablePrefix + n.value
}

// Dataset is the catalog handle for a materialized dataset.
type Dataset struct {
	Name          string    `json:"name"`
	PhysicalTable string    `json:"table"`
	Schema        Schema    `json:"schema"`
	RowCount      int64     `json:"rows"`
	CreatedAt     time.Time `json:"created_at"`
}

// DatasetSummary is one entry of the catalog listing.
type DatasetSummary struct {
	Name      string    `json:"name"`
	RowCount  int64     `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}
