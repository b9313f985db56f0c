package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogicalType_SQLType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  LogicalType
		want string
	}{
		{LogicalTypeInteger, "INTEGER"},
		{LogicalTypeFloat, "REAL"},
		{LogicalTypeBoolean, "INTEGER"},
		{LogicalTypeDatetime, "TEXT"},
		{LogicalTypeString, "TEXT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.SQLType(), tt.typ.String())
	}
}

func TestParseLogicalType(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"integer", "float", "boolean", "datetime", "string"} {
		lt, err := ParseLogicalType(name)
		require.NoError(t, err)
		assert.Equal(t, name, lt.String())
	}

	_, err := ParseLogicalType("decimal")
	assert.Error(t, err)
}

func TestSchema_JSON(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "region", Type: LogicalTypeString},
		{Name: "amount", Type: LogicalTypeInteger},
	}

	data, err := MarshalSchema(schema)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"region","type":"string"},{"name":"amount","type":"integer"}]`, data)

	got, err := UnmarshalSchema(data)
	require.NoError(t, err)
	assert.Equal(t, schema, got)

	_, err = json.Marshal(Column{Name: "x", Type: LogicalType(99)})
	assert.Error(t, err)
}

func TestSchema_Lookup(t *testing.T) {
	t.Parallel()

	schema := Schema{{Name: "Region", Type: LogicalTypeString}}

	col, ok := schema.Lookup("Region")
	assert.True(t, ok)
	assert.Equal(t, "Region", col.Name)

	_, ok = schema.Lookup("region")
	assert.False(t, ok, "lookup is exact")

	assert.Equal(t, []string{"Region"}, schema.Names())
}
