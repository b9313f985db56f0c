package parser

import (
	"testing"
)

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fileName string
		want     Format
	}{
		{"data.csv", Format{Type: FileTypeCSV, Compression: CompressionNone}},
		{"data.TSV", Format{Type: FileTypeTSV, Compression: CompressionNone}},
		{"logs.ltsv.gz", Format{Type: FileTypeLTSV, Compression: CompressionGZ}},
		{"book.xlsx.bz2", Format{Type: FileTypeXLSX, Compression: CompressionBZ2}},
		{"events.parquet.xz", Format{Type: FileTypeParquet, Compression: CompressionXZ}},
		{"data.csv.zst", Format{Type: FileTypeCSV, Compression: CompressionZSTD}},
		{"upload", Format{Type: FileTypeCSV, Compression: CompressionNone}},
		{"notes.txt", Format{Type: FileTypeCSV, Compression: CompressionNone}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.fileName, func(t *testing.T) {
			t.Parallel()

			if got := DetectFormat(tt.fileName); got != tt.want {
				t.Errorf("DetectFormat(%q) = %+v, want %+v", tt.fileName, got, tt.want)
			}
		})
	}
}

func TestIsSupportedFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fileName string
		want     bool
	}{
		{"a.csv", true},
		{"a.tsv.gz", true},
		{"a.LTSV", true},
		{"a.parquet.zst", true},
		{"a.xlsx", true},
		{"a.txt", false},
		{"a.gz", false},
		{"README", false},
	}

	for _, tt := range tests {
		if got := IsSupportedFile(tt.fileName); got != tt.want {
			t.Errorf("IsSupportedFile(%q) = %v, want %v", tt.fileName, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	t.Parallel()

	if got := (Format{Type: FileTypeTSV, Compression: CompressionZSTD}).Extension(); got != ".tsv.zst" {
		t.Errorf("unexpected extension %q", got)
	}
	if got := (Format{Type: FileTypeParquet}).Extension(); got != ".parquet" {
		t.Errorf("unexpected extension %q", got)
	}
}
