package parser

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression wrapped around an upload.
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// codec describes one compression: its name, file suffix and reader.
type codec struct {
	name string
	ext  string
	open func(io.Reader) (io.Reader, func() error, error)
}

func noClose() error { return nil }

var codecs = map[CompressionType]codec{
	CompressionGZ: {"gz", extGZ, func(r io.Reader) (io.Reader, func() error, error) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	}},
	CompressionBZ2: {"bz2", extBZ2, func(r io.Reader) (io.Reader, func() error, error) {
		return bzip2.NewReader(r), noClose, nil
	}},
	CompressionXZ: {"xz", extXZ, func(r io.Reader) (io.Reader, func() error, error) {
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, noClose, nil
	}},
	CompressionZSTD: {"zstd", extZSTD, func(r io.Reader) (io.Reader, func() error, error) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() error { zr.Close(); return nil }, nil
	}},
}

// String returns the compression name, "none" when uncompressed.
func (c CompressionType) String() string {
	if cd, ok := codecs[c]; ok {
		return cd.name
	}
	return "none"
}

// Extension returns the file suffix, e.g. ".gz", or "" when uncompressed.
func (c CompressionType) Extension() string {
	return codecs[c].ext
}

// detectCompression detects the compression type from a lower-cased file name
func detectCompression(lowerName string) CompressionType {
	for c, cd := range codecs {
		if strings.HasSuffix(lowerName, cd.ext) {
			return c
		}
	}
	return CompressionNone
}

// newDecompressedReader wraps reader with a decompression reader if needed.
// The returned cleanup func must be called once reading is done.
func newDecompressedReader(reader io.Reader, compression CompressionType) (io.Reader, func() error, error) {
	if compression == CompressionNone {
		return reader, noClose, nil
	}
	cd, ok := codecs[compression]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported compression type: %v", compression)
	}
	r, cleanup, err := cd.open(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s reader: %w", cd.name, err)
	}
	return r, cleanup, nil
}
