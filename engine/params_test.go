package engine

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/csvapi/domain/model"
)

func TestParseParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  model.QuerySpec
	}{
		{
			name:  "defaults",
			query: "",
			want:  model.QuerySpec{Limit: 100},
		},
		{
			name:  "limit and offset",
			query: "limit=5000&offset=20",
			want:  model.QuerySpec{Limit: 5000, Offset: 20},
		},
		{
			name:  "negative values are kept for validation",
			query: "limit=-5&offset=-1",
			want:  model.QuerySpec{Limit: -5, Offset: -1},
		},
		{
			name:  "limit beyond int range saturates high",
			query: "limit=99999999999999999999",
			want:  model.QuerySpec{Limit: model.MaxLimit},
		},
		{
			name:  "limit beyond int range saturates low",
			query: "limit=-99999999999999999999",
			want:  model.QuerySpec{Limit: model.MinLimit},
		},
		{
			name:  "sort with direction",
			query: "sort=amount:desc",
			want:  model.QuerySpec{Limit: 100, Sort: &model.SortKey{Column: "amount", Direction: model.Descending}},
		},
		{
			name:  "sort with unknown direction falls back to ascending",
			query: "sort=amount:sideways",
			want:  model.QuerySpec{Limit: 100, Sort: &model.SortKey{Column: "amount", Direction: model.Ascending}},
		},
		{
			name:  "repeated filters keep order and colons in values",
			query: "filter=region:eq:east&filter=at:gte:2024-01-01%2010:00:00",
			want: model.QuerySpec{
				Limit: 100,
				Filters: []model.FilterClause{
					{Column: "region", Operator: model.OpEq, RawValue: "east"},
					{Column: "at", Operator: model.OpGte, RawValue: "2024-01-01 10:00:00"},
				},
			},
		},
		{
			name:  "empty filter value",
			query: "filter=note:eq:",
			want: model.QuerySpec{
				Limit:   100,
				Filters: []model.FilterClause{{Column: "note", Operator: model.OpEq, RawValue: ""}},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseParams(values, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseParamsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"non-integer limit", "limit=ten"},
		{"non-integer offset", "offset=1.5"},
		{"filter without operator", "filter=region"},
		{"filter without value", "filter=region:eq"},
		{"filter without column", "filter=:eq:x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			_, err = ParseParams(values, 100)
			require.ErrorIs(t, err, model.ErrInvalidParameter)
		})
	}
}
