package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{5000, 1000},
		{1000, 1000},
		{999, 999},
		{50, 50},
		{1, 1},
		{0, 1},
		{-5, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.in), "ClampLimit(%d)", tt.in)
	}
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  SortKey
	}{
		{"amount", SortKey{Column: "amount", Direction: Ascending}},
		{"amount:desc", SortKey{Column: "amount", Direction: Descending}},
		{"amount:DESC", SortKey{Column: "amount", Direction: Descending}},
		{"amount:asc", SortKey{Column: "amount", Direction: Ascending}},
		{"amount:descending", SortKey{Column: "amount", Direction: Ascending}},
		{"amount:sideways", SortKey{Column: "amount", Direction: Ascending}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseSortKey(tt.token))
		})
	}
}

func TestOperator(t *testing.T) {
	t.Parallel()

	for _, op := range []Operator{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpContains} {
		assert.True(t, op.Supported(), string(op))
		assert.NotEmpty(t, op.SQL(), string(op))
	}
	for _, op := range []Operator{"like", "EQ", "", "in"} {
		assert.False(t, op.Supported(), string(op))
		assert.Empty(t, op.SQL(), string(op))
	}
}

func TestSortDirection_SQL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ASC", Ascending.SQL())
	assert.Equal(t, "DESC", Descending.SQL())
	assert.Equal(t, "desc", Descending.String())
}
