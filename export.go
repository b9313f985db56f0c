package csvapi

import (
	"context"
	"io"
	"net/url"

	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/engine"
	"github.com/nao1215/csvapi/export"
)

// Export is a validated export of one dataset. Create it with
// Service.PrepareExport and stream it with WriteTo.
type Export struct {
	Dataset model.Dataset
	Options export.Options

	spec   model.QuerySpec
	engine *engine.Engine
}

// PrepareExport validates an export request. params may carry format and
// compression plus the filter and sort parameters of QueryRows; limit and
// offset are ignored. Every validation error is returned before anything
// is written.
func (s *Service) PrepareExport(ctx context.Context, rawName string, params url.Values) (*Export, error) {
	opts, err := export.ParseOptions(params)
	if err != nil {
		return nil, model.NewErrorContext("export").WithDataset(rawName).
			Wrap(model.ErrInvalidParameter, err)
	}
	spec, err := engine.ParseParams(params, s.opts.DefaultLimit)
	if err != nil {
		return nil, err
	}
	ds, err := s.lookup(ctx, rawName)
	if err != nil {
		return nil, err
	}
	if _, err := engine.NewPlan(ds, spec); err != nil {
		return nil, err
	}
	return &Export{Dataset: ds, Options: opts, spec: spec, engine: s.engine}, nil
}

// FileName is the suggested download name, e.g. "sales.csv.gz".
func (x *Export) FileName() string {
	return x.Options.FileName(x.Dataset.Name)
}

// WriteTo streams every matching row to w and returns the number of rows
// written.
func (x *Export) WriteTo(ctx context.Context, w io.Writer) (int64, error) {
	ew, err := export.NewWriter(w, x.Options, x.Dataset.Schema.Names())
	if err != nil {
		return 0, err
	}

	var n int64
	err = x.engine.Scan(ctx, x.Dataset, x.spec, func(row engine.Row) error {
		n++
		return ew.Write(row.Values())
	})
	if cerr := ew.Close(); err == nil {
		err = cerr
	}
	return n, err
}
