package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) Querier {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test.db")
	db, err := Open(context.Background(), afero.NewOsFs(), Options{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates data directory and catalog table", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		ok, err := TableExists(context.Background(), db, CatalogTable)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("migration is idempotent", func(t *testing.T) {
		t.Parallel()
		db := openTestDB(t)

		require.NoError(t, Migrate(context.Background(), db))
		require.NoError(t, Migrate(context.Background(), db))
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		_, err := Open(context.Background(), afero.NewOsFs(), Options{Path: " "})
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "x.db")
		_, err := Open(context.Background(), afero.NewOsFs(), Options{Driver: "postgres", Path: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown driver "postgres"`)
	})

	t.Run("data directory cannot be created", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		_, err := Open(context.Background(), fs, Options{Path: "/nope/db.sqlite"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data directory")
	})
}

func TestDrivers(t *testing.T) {
	t.Parallel()
	assert.Contains(t, Drivers(), DriverPure)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	insert := `INSERT INTO datasets (name, table_name, schema_json, row_count, created_at) VALUES (?, ?, '[]', 0, '2024-01-01')`
	_, err := db.ExecContext(ctx, insert, "sales", "ds_sales")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "sales", "ds_sales")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(errors.Join(errors.New("wrapped"), err)))

	_, err = db.ExecContext(ctx, `INSERT INTO datasets (name) VALUES (?)`, "other")
	require.Error(t, err, "NOT NULL violation")
	assert.False(t, IsUniqueViolation(err))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("UNIQUE constraint failed")))
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"amount", `"amount"`},
		{"first name", `"first name"`},
		{`a"b`, `"a""b"`},
		{`x"; DROP TABLE datasets; --`, `"x""; DROP TABLE datasets; --"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QuoteIdent(tt.in))
	}
}

func TestTableExists(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	ok, err := TableExists(ctx, db, "ds_missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = db.ExecContext(ctx, `CREATE TABLE "ds_present" (a TEXT)`)
	require.NoError(t, err)
	ok, err = TableExists(ctx, db, "ds_present")
	require.NoError(t, err)
	assert.True(t, ok)
}
