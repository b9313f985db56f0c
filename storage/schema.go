package storage

import (
	"context"
	"fmt"
	"strings"
)

// CatalogTable is the name of the catalog table. It never carries the
// dataset table prefix, so dataset tables cannot collide with it.
const CatalogTable = "datasets"

const createCatalogSQL = `CREATE TABLE IF NOT EXISTS ` + CatalogTable + ` (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	table_name  TEXT    NOT NULL,
	schema_json TEXT    NOT NULL,
	row_count   INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT    NOT NULL,
	CONSTRAINT uq_datasets_name UNIQUE (name)
)`

// Migrate creates the catalog table if it does not exist.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, createCatalogSQL); err != nil {
		return fmt.Errorf("storage: failed to migrate catalog: %w", err)
	}
	return nil
}

// QuoteIdent quotes an SQL identifier. Callers must only pass identifiers
// already validated against a dataset schema or derived from a sanitized
// dataset name; quoting alone is not the safety boundary.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// TableExists reports whether a table named name exists.
func TableExists(ctx context.Context, q Querier, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: failed to check table existence: %w", err)
	}
	return n > 0, nil
}
