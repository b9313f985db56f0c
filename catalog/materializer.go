package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/storage"
)

// Materialize creates the physical table for name, bulk-inserts the rows of
// table converted per schema and records the catalog entry. Everything runs
// in one write transaction: on any error neither the table nor the record
// exists afterwards.
//
// The catalog row is inserted first so the UNIQUE constraint decides between
// two concurrent uploads of the same name before any table is created.
func (c *Catalog) Materialize(ctx context.Context, name model.DatasetName, schema model.Schema, table *model.Table) (ds model.Dataset, err error) {
	ec := model.NewErrorContext("materialize").WithDataset(name.String())

	if name.IsZero() {
		return model.Dataset{}, ec.WithDetails("empty dataset name").Error(model.ErrInvalidParameter)
	}
	if table == nil {
		return model.Dataset{}, ec.WithDetails("no table").Error(model.ErrParse)
	}
	if len(schema) != len(table.Header()) {
		return model.Dataset{}, ec.
			WithDetails(fmt.Sprintf("schema has %d columns, table has %d", len(schema), len(table.Header()))).
			Error(model.ErrParse)
	}

	ds = model.Dataset{
		Name:          name.String(),
		PhysicalTable: name.PhysicalTable(),
		Schema:        schema,
		RowCount:      int64(table.RowCount()),
		CreatedAt:     c.now().UTC(),
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Dataset{}, ec.Wrap(model.ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() // Ignore rollback error since we're already returning an error
		}
	}()

	if err = put(ctx, tx, ds); err != nil {
		return model.Dataset{}, err
	}

	exists, err := storage.TableExists(ctx, tx, ds.PhysicalTable)
	if err != nil {
		return model.Dataset{}, ec.Wrap(model.ErrStorage, err)
	}
	if exists {
		err = ec.WithDetails("table " + ds.PhysicalTable + " already exists").Error(model.ErrStorageConflict)
		return model.Dataset{}, err
	}

	if _, err = tx.ExecContext(ctx, createTableSQL(ds.PhysicalTable, schema)); err != nil {
		return model.Dataset{}, ec.Wrap(model.ErrStorage, fmt.Errorf("failed to create table: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(ds.PhysicalTable, len(schema)))
	if err != nil {
		return model.Dataset{}, ec.Wrap(model.ErrStorage, fmt.Errorf("failed to prepare insert statement: %w", err))
	}
	defer stmt.Close()

	for i, record := range table.Records() {
		values, convErr := schema.ConvertRecord(record)
		if convErr != nil {
			err = fmt.Errorf("row %d: %w", i+1, convErr)
			return model.Dataset{}, err
		}
		if _, err = stmt.ExecContext(ctx, values...); err != nil {
			return model.Dataset{}, ec.Wrap(model.ErrStorage, fmt.Errorf("failed to insert row %d: %w", i+1, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return model.Dataset{}, ec.Wrap(model.ErrStorage, err)
	}
	return ds, nil
}

// createTableSQL renders the DDL for a dataset table. Column names come from
// the parsed header and the table name from a sanitized dataset name.
func createTableSQL(table string, schema model.Schema) string {
	columns := make([]string, 0, len(schema))
	for _, col := range schema {
		columns = append(columns, storage.QuoteIdent(col.Name)+" "+col.Type.SQLType())
	}
	return fmt.Sprintf(`CREATE TABLE %s (%s)`, storage.QuoteIdent(table), strings.Join(columns, ", "))
}

func insertSQL(table string, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, storage.QuoteIdent(table), strings.Join(placeholders, ", "))
}
