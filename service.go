package csvapi

import (
	"context"
	"database/sql"
	"io"
	"net/url"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/csvapi/catalog"
	"github.com/nao1215/csvapi/config"
	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/engine"
	"github.com/nao1215/csvapi/logging"
	"github.com/nao1215/csvapi/parser"
	"github.com/nao1215/csvapi/storage"
)

// Options tunes a Service. Zero values fall back to the defaults below.
type Options struct {
	SampleSize   int
	InferWorkers int
	DefaultLimit int
	Logger       logging.Logger
}

// Defaults for Options
const (
	DefaultSampleSize   = 5
	DefaultInferWorkers = 4
)

func (o Options) withDefaults() Options {
	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.SampleSize > model.MaxSampleSize {
		o.SampleSize = model.MaxSampleSize
	}
	if o.InferWorkers <= 0 {
		o.InferWorkers = DefaultInferWorkers
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = model.DefaultLimit
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	return o
}

// Upload is one file to turn into a dataset.
type Upload struct {
	// Name is the requested dataset name. Empty means derive it from FileName.
	Name string
	// FileName selects the decoder by extension; unknown extensions are read as CSV.
	FileName string
	Body     io.Reader
}

// DatasetDetail is a dataset plus its first rows.
type DatasetDetail struct {
	model.Dataset
	Sample []engine.Row
}

// Service wires parsing, inference, the catalog and the query engine.
type Service struct {
	db      *sql.DB
	catalog *catalog.Catalog
	engine  *engine.Engine
	opts    Options
	log     logging.Logger
}

// New returns a Service over an already opened and migrated store.
func New(db *sql.DB, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		db:      db,
		catalog: catalog.New(db),
		engine:  engine.New(db, opts.Logger),
		opts:    opts,
		log:     opts.Logger,
	}
}

// Open opens the store described by cfg (creating its directory on fs) and
// returns a Service using it. Close releases the store.
func Open(ctx context.Context, fs afero.Fs, cfg config.Config, log logging.Logger) (*Service, error) {
	db, err := storage.Open(ctx, fs, storage.Options{
		Driver:      cfg.Driver,
		Path:        cfg.DBPath(),
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, model.NewErrorContext("open").WithDetails(cfg.DBPath()).Wrap(model.ErrStorage, err)
	}
	return New(db, Options{
		SampleSize:   cfg.SampleSize,
		InferWorkers: cfg.InferWorkers,
		DefaultLimit: cfg.DefaultLimit,
		Logger:       log,
	}), nil
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.db.Close()
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.catalog.Ping(ctx)
}

// CreateDataset parses up, infers its schema and materializes it.
func (s *Service) CreateDataset(ctx context.Context, up Upload) (model.Dataset, error) {
	name, err := uploadName(up)
	if err != nil {
		return model.Dataset{}, err
	}

	table, err := parser.Parse(ctx, up.FileName, up.Body)
	if err != nil {
		s.log.Debugw("rejected upload", "dataset", name.String(), "file", up.FileName, "error", err)
		return model.Dataset{}, err
	}

	schema, err := s.inferSchema(ctx, table)
	if err != nil {
		return model.Dataset{}, err
	}

	ds, err := s.catalog.Materialize(ctx, name, schema, table)
	if err != nil {
		s.logFailure("materialize failed", name.String(), err)
		return model.Dataset{}, err
	}
	s.log.Infow("dataset created",
		"dataset", ds.Name, "table", ds.PhysicalTable, "rows", ds.RowCount, "columns", len(ds.Schema))
	return ds, nil
}

func uploadName(up Upload) (model.DatasetName, error) {
	if up.Name != "" {
		return model.NewDatasetName(up.Name)
	}
	if up.FileName == "" {
		return model.DatasetName{}, model.NewErrorContext("create").
			WithDetails("a dataset name or a file name is required").
			Error(model.ErrInvalidParameter)
	}
	return model.DatasetNameFromFile(up.FileName)
}

// inferSchema infers every column concurrently, at most InferWorkers at a time.
// A single worker infers sequentially on the calling goroutine.
func (s *Service) inferSchema(ctx context.Context, table *model.Table) (model.Schema, error) {
	if s.opts.InferWorkers == 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return table.Schema(), nil
	}
	header := table.Header()
	schema := make(model.Schema, len(header))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.InferWorkers)
	for i, name := range header {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			schema[i] = model.Column{Name: name, Type: model.InferColumnType(table.Column(i))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return schema, nil
}

// ListDatasets returns dataset summaries, newest first.
func (s *Service) ListDatasets(ctx context.Context) ([]model.DatasetSummary, error) {
	list, err := s.catalog.List(ctx)
	if err != nil {
		s.log.Errorw("list failed", "error", err)
	}
	return list, err
}

// GetDataset returns the dataset called rawName with up to SampleSize rows.
func (s *Service) GetDataset(ctx context.Context, rawName string) (DatasetDetail, error) {
	ds, err := s.lookup(ctx, rawName)
	if err != nil {
		return DatasetDetail{}, err
	}
	sample, err := s.engine.Sample(ctx, ds, s.opts.SampleSize)
	if err != nil {
		s.logFailure("sample failed", ds.Name, err)
		return DatasetDetail{}, err
	}
	return DatasetDetail{Dataset: ds, Sample: sample}, nil
}

// DeleteDataset drops the dataset called rawName.
func (s *Service) DeleteDataset(ctx context.Context, rawName string) error {
	name, err := lookupName(rawName)
	if err != nil {
		return err
	}
	if err := s.catalog.Delete(ctx, name); err != nil {
		s.logFailure("delete failed", name.String(), err)
		return err
	}
	s.log.Infow("dataset deleted", "dataset", name.String(), "table", name.PhysicalTable())
	return nil
}

// QueryRows runs the query described by params (limit, offset, sort,
// filter) against the dataset called rawName.
func (s *Service) QueryRows(ctx context.Context, rawName string, params url.Values) (engine.Result, error) {
	spec, err := engine.ParseParams(params, s.opts.DefaultLimit)
	if err != nil {
		return engine.Result{}, err
	}
	ds, err := s.lookup(ctx, rawName)
	if err != nil {
		return engine.Result{}, err
	}
	return s.engine.Execute(ctx, ds, spec)
}

func (s *Service) lookup(ctx context.Context, rawName string) (model.Dataset, error) {
	name, err := lookupName(rawName)
	if err != nil {
		return model.Dataset{}, err
	}
	ds, err := s.catalog.Get(ctx, name)
	if err != nil {
		s.logFailure("lookup failed", name.String(), err)
		return model.Dataset{}, err
	}
	return ds, nil
}

// lookupName sanitizes rawName the way creation does. A name that cannot
// exist is reported as not found.
func lookupName(rawName string) (model.DatasetName, error) {
	name, err := model.NewDatasetName(rawName)
	if err != nil {
		return model.DatasetName{}, model.NewErrorContext("lookup").WithDataset(rawName).Error(model.ErrNotFound)
	}
	return name, nil
}

// logFailure logs storage failures at error level and expected,
// caller-caused failures at debug level.
func (s *Service) logFailure(msg, dataset string, err error) {
	if model.KindOf(err) == model.ErrStorage || model.KindOf(err) == nil {
		s.log.Errorw(msg, "dataset", dataset, "error", err)
		return
	}
	s.log.Debugw(msg, "dataset", dataset, "error", err)
}
