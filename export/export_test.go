package export

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/parser"
)

var (
	testColumns = []string{"region", "amount", "note"}
	testRows    = [][]any{
		{"east", int64(10), "a, \"quoted\" note"},
		{"west", 2.5, nil},
		{"north", true, "line\nbreak"},
	}
)

func writeAll(t *testing.T, opts Options) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts, testColumns)
	require.NoError(t, err)
	for _, row := range testRows {
		require.NoError(t, w.Write(row))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestWriter_CSV(t *testing.T) {
	t.Parallel()

	out := writeAll(t, NewOptions())
	want := "region,amount,note\n" +
		"east,10,\"a, \"\"quoted\"\" note\"\n" +
		"west,2.5,\n" +
		"north,true,\"line\nbreak\"\n"
	assert.Equal(t, want, string(out))
}

func TestWriter_TSV(t *testing.T) {
	t.Parallel()

	out := writeAll(t, NewOptions().WithFormat(FormatTSV))
	assert.Contains(t, string(out), "region\tamount\tnote\n")
	assert.Contains(t, string(out), "west\t2.5\t\n")
}

func TestWriter_LTSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, NewOptions().WithFormat(FormatLTSV), []string{"a:b", "c"})
	require.NoError(t, err)
	require.NoError(t, w.Write([]any{"x\ty", nil}))
	require.NoError(t, w.Close())

	assert.Equal(t, "a_b:x y\tc:\n", buf.String())
}

func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
	}{
		{"csv", NewOptions()},
		{"tsv gz", NewOptions().WithFormat(FormatTSV).WithCompression(parser.CompressionGZ)},
		{"ltsv xz", NewOptions().WithFormat(FormatLTSV).WithCompression(parser.CompressionXZ)},
		{"csv zstd", NewOptions().WithCompression(parser.CompressionZSTD)},
		{"xlsx", NewOptions().WithFormat(FormatXLSX)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w, err := NewWriter(&buf, tt.opts, []string{"region", "amount"})
			require.NoError(t, err)
			require.NoError(t, w.Write([]any{"east", int64(10)}))
			require.NoError(t, w.Write([]any{"west", 2.5}))
			require.NoError(t, w.Close())

			fileName := tt.opts.FileName("sales")
			table, err := parser.Parse(context.Background(), fileName, &buf)
			require.NoError(t, err)
			assert.Equal(t, model.Header{"region", "amount"}, table.Header())
			assert.Equal(t, []model.Record{{"east", "10"}, {"west", "2.5"}}, table.Records())
		})
	}
}

func TestWriter_HeaderOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, NewOptions(), []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "a,b\n", buf.String())
}

func TestWriter_WrongWidth(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, NewOptions(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Error(t, w.Write([]any{"only one"}))
}

func TestNewWriter_BZ2Rejected(t *testing.T) {
	t.Parallel()

	_, err := NewWriter(&bytes.Buffer{}, NewOptions().WithCompression(parser.CompressionBZ2), []string{"a"})
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		want    Options
		wantErr bool
	}{
		{"defaults", "", NewOptions(), false},
		{"tsv gzip", "format=TSV&compression=gzip", Options{Format: FormatTSV, Compression: parser.CompressionGZ}, false},
		{"xlsx zst", "format=xlsx&compression=zst", Options{Format: FormatXLSX, Compression: parser.CompressionZSTD}, false},
		{"none", "compression=none", NewOptions(), false},
		{"unknown format", "format=json", Options{}, true},
		{"bz2", "compression=bz2", Options{}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := ParseOptions(values)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptions_FileNameAndContentType(t *testing.T) {
	t.Parallel()

	opts := NewOptions().WithFormat(FormatLTSV).WithCompression(parser.CompressionZSTD)
	assert.Equal(t, "sales.ltsv.zst", opts.FileName("sales"))
	assert.Equal(t, "application/zstd", opts.ContentType())
	assert.Equal(t, "text/csv; charset=utf-8", NewOptions().ContentType())
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "-3", FormatValue(int64(-3)))
	assert.Equal(t, "0.1", FormatValue(0.1))
	assert.Equal(t, "false", FormatValue(false))
	assert.Equal(t, "2024-01-01T00:00:00", FormatValue("2024-01-01T00:00:00"))
}
