// Package engine executes validated, parameterized queries against the
// physical table of a dataset.
//
// A request goes through three steps: ParseParams reads the query string
// into a model.QuerySpec, NewPlan validates it against the dataset schema
// and renders SQL, and Engine.Execute runs the page and count queries.
// Nothing reaches the store unless validation succeeded.
package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/logging"
)

// Querier is the read surface the engine needs. *sql.DB satisfies it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Result is one page of rows plus the total number of matching rows.
type Result struct {
	Rows   []Row
	Total  int64
	Limit  int
	Offset int
}

// Engine runs queries against dataset tables.
type Engine struct {
	q   Querier
	log logging.Logger
}

// New returns an Engine reading through q.
func New(q Querier, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{q: q, log: log}
}

// Execute validates spec against ds and returns the requested page and the
// total match count. Validation errors are returned before any storage
// access; failures of the store are wrapped in model.ErrStorage.
func (e *Engine) Execute(ctx context.Context, ds model.Dataset, spec model.QuerySpec) (Result, error) {
	plan, err := NewPlan(ds, spec)
	if err != nil {
		e.log.Debugw("rejected query", "dataset", ds.Name, "error", err)
		return Result{}, err
	}

	rows, err := e.page(ctx, ds, plan)
	if err != nil {
		e.log.Errorw("page query failed", "dataset", ds.Name, "table", ds.PhysicalTable, "error", err)
		return Result{}, err
	}
	total, err := e.count(ctx, ds, plan)
	if err != nil {
		e.log.Errorw("count query failed", "dataset", ds.Name, "table", ds.PhysicalTable, "error", err)
		return Result{}, err
	}

	return Result{
		Rows:   rows,
		Total:  total,
		Limit:  plan.Limit(),
		Offset: plan.Offset(),
	}, nil
}

// Sample returns up to n rows in insertion order.
func (e *Engine) Sample(ctx context.Context, ds model.Dataset, n int) ([]Row, error) {
	plan, err := NewPlan(ds, model.QuerySpec{Limit: n})
	if err != nil {
		return nil, err
	}
	return e.page(ctx, ds, plan)
}

// Scan streams every row matching spec's filters and sort to fn, in order.
// Limit and offset are ignored. An error returned by fn stops the scan and
// is returned unchanged.
func (e *Engine) Scan(ctx context.Context, ds model.Dataset, spec model.QuerySpec, fn func(Row) error) error {
	spec.Limit, spec.Offset = 0, 0
	plan, err := NewPlan(ds, spec)
	if err != nil {
		e.log.Debugw("rejected scan", "dataset", ds.Name, "error", err)
		return err
	}
	query, args := plan.ScanSQL()
	return e.scan(ctx, ds, query, args, fn)
}

func (e *Engine) page(ctx context.Context, ds model.Dataset, plan *Plan) ([]Row, error) {
	query, args := plan.SelectSQL()
	result := make([]Row, 0, plan.Limit())
	err := e.scan(ctx, ds, query, args, func(r Row) error {
		result = append(result, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) scan(ctx context.Context, ds model.Dataset, query string, args []any, fn func(Row) error) error {
	ec := model.NewErrorContext("query").WithDataset(ds.Name)

	rows, err := e.q.QueryContext(ctx, query, args...)
	if err != nil {
		return ec.Wrap(model.ErrStorage, err)
	}
	defer rows.Close()

	names := ds.Schema.Names()
	raw := make([]any, len(ds.Schema))
	dest := make([]any, len(ds.Schema))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return ec.Wrap(model.ErrStorage, err)
		}

		values := make([]any, len(raw))
		for i, col := range ds.Schema {
			v, err := decodeValue(col.Type, raw[i])
			if err != nil {
				return ec.WithColumn(col.Name).Wrap(model.ErrStorage, err)
			}
			values[i] = v
		}
		if err := fn(NewRow(names, values)); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return ec.Wrap(model.ErrStorage, err)
	}
	return nil
}

func (e *Engine) count(ctx context.Context, ds model.Dataset, plan *Plan) (int64, error) {
	query, args := plan.CountSQL()
	var total int64
	if err := e.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, model.NewErrorContext("count").WithDataset(ds.Name).
			Wrap(model.ErrStorage, fmt.Errorf("count rows: %w", err))
	}
	return total, nil
}
