// Package catalog keeps the durable name -> dataset index and creates the
// physical table behind each dataset.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/storage"
)

// timeLayout is fixed-width so created_at sorts lexically in time order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Catalog is the SQLite-backed dataset catalog.
type Catalog struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Catalog over db. The catalog table must already exist
// (see storage.Open).
func New(db *sql.DB) *Catalog {
	return &Catalog{db: db, now: time.Now}
}

// Ping reports whether the underlying store is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return model.NewErrorContext("ping").Wrap(model.ErrStorage, err)
	}
	return nil
}

// Put records ds in the catalog. A name that is already taken yields
// ErrNameConflict; uniqueness is enforced by the store's constraint.
func (c *Catalog) Put(ctx context.Context, ds model.Dataset) error {
	return put(ctx, c.db, ds)
}

func put(ctx context.Context, q storage.Querier, ds model.Dataset) error {
	ec := model.NewErrorContext("put").WithDataset(ds.Name)

	schemaJSON, err := model.MarshalSchema(ds.Schema)
	if err != nil {
		return ec.Wrap(model.ErrStorage, err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO `+storage.CatalogTable+` (name, table_name, schema_json, row_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		ds.Name, ds.PhysicalTable, schemaJSON, ds.RowCount, ds.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return ec.Error(model.ErrNameConflict)
		}
		return ec.Wrap(model.ErrStorage, err)
	}
	return nil
}

// Get returns the dataset called name or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, name model.DatasetName) (model.Dataset, error) {
	ec := model.NewErrorContext("get").WithDataset(name.String())

	var (
		ds         model.Dataset
		schemaJSON string
		createdAt  string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT name, table_name, schema_json, row_count, created_at FROM `+storage.CatalogTable+` WHERE name = ?`,
		name.String(),
	).Scan(&ds.Name, &ds.PhysicalTable, &schemaJSON, &ds.RowCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Dataset{}, ec.Error(model.ErrNotFound)
	}
	if err != nil {
		return model.Dataset{}, ec.Wrap(model.ErrStorage, err)
	}

	if ds.Schema, err = model.UnmarshalSchema(schemaJSON); err != nil {
		return model.Dataset{}, ec.WithDetails("corrupt schema").Wrap(model.ErrStorage, err)
	}
	if ds.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Dataset{}, ec.WithDetails("corrupt created_at").Wrap(model.ErrStorage, err)
	}
	return ds, nil
}

// List returns every dataset, newest first. It returns an empty, non-nil
// slice when the catalog is empty.
func (c *Catalog) List(ctx context.Context) ([]model.DatasetSummary, error) {
	ec := model.NewErrorContext("list")

	rows, err := c.db.QueryContext(ctx,
		`SELECT name, row_count, created_at FROM `+storage.CatalogTable+` ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, ec.Wrap(model.ErrStorage, err)
	}
	defer rows.Close()

	summaries := []model.DatasetSummary{}
	for rows.Next() {
		var (
			s         model.DatasetSummary
			createdAt string
		)
		if err := rows.Scan(&s.Name, &s.RowCount, &createdAt); err != nil {
			return nil, ec.Wrap(model.ErrStorage, err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, ec.WithDataset(s.Name).Wrap(model.ErrStorage, err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, ec.Wrap(model.ErrStorage, err)
	}
	return summaries, nil
}

// Delete removes the catalog record and drops the physical table in one
// transaction. A missing name yields ErrNotFound and changes nothing.
func (c *Catalog) Delete(ctx context.Context, name model.DatasetName) (err error) {
	ec := model.NewErrorContext("delete").WithDataset(name.String())

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return ec.Wrap(model.ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() // Ignore rollback error since we're already returning an error
		}
	}()

	var table string
	err = tx.QueryRowContext(ctx,
		`DELETE FROM `+storage.CatalogTable+` WHERE name = ? RETURNING table_name`,
		name.String(),
	).Scan(&table)
	if errors.Is(err, sql.ErrNoRows) {
		return ec.Error(model.ErrNotFound)
	}
	if err != nil {
		return ec.Wrap(model.ErrStorage, err)
	}

	// table_name was written by Materialize from a sanitized name.
	if _, err = tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+storage.QuoteIdent(table)); err != nil {
		return ec.Wrap(model.ErrStorage, fmt.Errorf("failed to drop %s: %w", table, err))
	}
	if err = tx.Commit(); err != nil {
		return ec.Wrap(model.ErrStorage, err)
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
