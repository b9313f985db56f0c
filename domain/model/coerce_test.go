package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoercerFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		typ     LogicalType
		raw     string
		want    any
		wantErr bool
	}{
		{name: "integer", typ: LogicalTypeInteger, raw: "42", want: int64(42)},
		{name: "integer with spaces", typ: LogicalTypeInteger, raw: " -7 ", want: int64(-7)},
		{name: "integer rejects float", typ: LogicalTypeInteger, raw: "4.2", wantErr: true},
		{name: "integer rejects text", typ: LogicalTypeInteger, raw: "abc", wantErr: true},
		{name: "float", typ: LogicalTypeFloat, raw: "4.5", want: 4.5},
		{name: "float accepts integer literal", typ: LogicalTypeFloat, raw: "10", want: 10.0},
		{name: "float rejects nan", typ: LogicalTypeFloat, raw: "NaN", wantErr: true},
		{name: "boolean yes", typ: LogicalTypeBoolean, raw: "yes", want: int64(1)},
		{name: "boolean TRUE", typ: LogicalTypeBoolean, raw: "TRUE", want: int64(1)},
		{name: "boolean 1", typ: LogicalTypeBoolean, raw: "1", want: int64(1)},
		{name: "boolean y", typ: LogicalTypeBoolean, raw: "Y", want: int64(1)},
		{name: "boolean no", typ: LogicalTypeBoolean, raw: "no", want: int64(0)},
		{name: "boolean maybe is false", typ: LogicalTypeBoolean, raw: "maybe", want: int64(0)},
		{name: "datetime", typ: LogicalTypeDatetime, raw: "2024-03-01", want: "2024-03-01 00:00:00"},
		{name: "datetime rejects text", typ: LogicalTypeDatetime, raw: "soon", wantErr: true},
		{name: "string passthrough", typ: LogicalTypeString, raw: " As Is ", want: " As Is "},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := CoercerFor(tt.typ)(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertCell(t *testing.T) {
	t.Parallel()

	t.Run("empty cell is null", func(t *testing.T) {
		t.Parallel()

		for _, typ := range []LogicalType{LogicalTypeInteger, LogicalTypeFloat, LogicalTypeBoolean, LogicalTypeDatetime, LogicalTypeString} {
			v, err := ConvertCell(typ, "  ")
			require.NoError(t, err)
			assert.Nil(t, v, typ.String())
		}
	})

	t.Run("boolean cells use inference tokens", func(t *testing.T) {
		t.Parallel()

		v, err := ConvertCell(LogicalTypeBoolean, "No")
		require.NoError(t, err)
		assert.Equal(t, int64(0), v)

		_, err = ConvertCell(LogicalTypeBoolean, "maybe")
		assert.Error(t, err)
	})

	t.Run("schema converts a record", func(t *testing.T) {
		t.Parallel()

		schema := Schema{
			{Name: "region", Type: LogicalTypeString},
			{Name: "amount", Type: LogicalTypeInteger},
		}
		values, err := schema.ConvertRecord(NewRecord([]string{"east", "10"}))
		require.NoError(t, err)
		assert.Equal(t, []any{"east", int64(10)}, values)
	})

	t.Run("conversion failure names the column", func(t *testing.T) {
		t.Parallel()

		schema := Schema{{Name: "amount", Type: LogicalTypeInteger}}
		_, err := schema.ConvertRecord(NewRecord([]string{"ten"}))
		require.ErrorIs(t, err, ErrParse)
		assert.Contains(t, err.Error(), "amount")
	})
}
