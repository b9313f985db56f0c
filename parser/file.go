package parser

import (
	"path/filepath"
	"strings"
)

// FileType represents a supported tabular format, independent of compression.
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
)

// File extensions
const (
	extCSV     = ".csv"
	extTSV     = ".tsv"
	extLTSV    = ".ltsv"
	extParquet = ".parquet"
	extXLSX    = ".xlsx"
	extGZ      = ".gz"
	extBZ2     = ".bz2"
	extXZ      = ".xz"
	extZSTD    = ".zst"
)

// File format delimiters
const (
	csvDelimiter = ','
	tsvDelimiter = '\t'
)

// String returns the format name.
func (ft FileType) String() string {
	switch ft {
	case FileTypeTSV:
		return "tsv"
	case FileTypeLTSV:
		return "ltsv"
	case FileTypeParquet:
		return "parquet"
	case FileTypeXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// extension returns the file extension for the FileType
func (ft FileType) extension() string {
	switch ft {
	case FileTypeTSV:
		return extTSV
	case FileTypeLTSV:
		return extLTSV
	case FileTypeParquet:
		return extParquet
	case FileTypeXLSX:
		return extXLSX
	default:
		return extCSV
	}
}

// Format is a file type plus the compression wrapped around it.
type Format struct {
	Type        FileType
	Compression CompressionType
}

// DetectFormat detects the format of an uploaded file from its name,
// considering compressed files. Names without a recognized format
// extension are read as CSV.
func DetectFormat(fileName string) Format {
	lower := strings.ToLower(fileName)
	compression := detectCompression(lower)
	base := strings.TrimSuffix(lower, compression.Extension())

	format := Format{Type: FileTypeCSV, Compression: compression}
	switch filepath.Ext(base) {
	case extTSV:
		format.Type = FileTypeTSV
	case extLTSV:
		format.Type = FileTypeLTSV
	case extParquet:
		format.Type = FileTypeParquet
	case extXLSX:
		format.Type = FileTypeXLSX
	}
	return format
}

// IsSupportedFile checks if the file has a recognized format extension,
// optionally followed by a compression extension.
func IsSupportedFile(fileName string) bool {
	lower := strings.ToLower(fileName)
	base := strings.TrimSuffix(lower, detectCompression(lower).Extension())
	for _, ext := range []string{extCSV, extTSV, extLTSV, extParquet, extXLSX} {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// Extension returns the full extension for the format, e.g. ".csv.gz".
func (f Format) Extension() string {
	return f.Type.extension() + f.Compression.Extension()
}
