package csvapi

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/csvapi/domain/model"
)

func TestServiceExport(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	createSales(t, svc)

	x, err := svc.PrepareExport(context.Background(), "sales", url.Values{
		"format":      {"ltsv"},
		"compression": {"zstd"},
		"filter":      {"amount:gte:10"},
		"limit":       {"1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sales.ltsv.zst", x.FileName())

	var buf bytes.Buffer
	n, err := x.WriteTo(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "limit does not apply to exports")

	// The export is a valid upload of its own.
	ds, err := svc.CreateDataset(context.Background(), Upload{
		Name:     "sales_copy",
		FileName: x.FileName(),
		Body:     &buf,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ds.RowCount)
	assert.Equal(t, model.Schema{
		{Name: "region", Type: model.LogicalTypeString},
		{Name: "amount", Type: model.LogicalTypeInteger},
	}, ds.Schema)
}

func TestServicePrepareExportErrors(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	createSales(t, svc)

	tests := []struct {
		name   string
		target string
		params url.Values
		kind   error
	}{
		{"format", "sales", url.Values{"format": {"parquet"}}, model.ErrInvalidParameter},
		{"bz2", "sales", url.Values{"compression": {"bz2"}}, model.ErrInvalidParameter},
		{"filter column", "sales", url.Values{"filter": {"city:eq:x"}}, model.ErrUnknownColumn},
		{"filter value", "sales", url.Values{"filter": {"amount:gt:ten"}}, model.ErrInvalidFilterValue},
		{"missing", "nope", nil, model.ErrNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.PrepareExport(context.Background(), tt.target, tt.params)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
