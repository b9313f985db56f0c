package csvapi

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/csvapi/domain/model"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestCollectFilesFromPaths(t *testing.T) {
	t.Parallel()

	fs := memFS(t, map[string]string{
		"/in/a.csv":        "x\n1\n",
		"/in/a.csv.gz":     "ignored",
		"/in/b.tsv.zst":    "ignored",
		"/in/notes.txt":    "skip me",
		"/in/sub/c.ltsv":   "k:v\n",
		"/other/d.parquet": "",
		"/other/e.md":      "",
	})
	fp := newFileProcessor(fs)

	t.Run("directory walk with dedup", func(t *testing.T) {
		t.Parallel()
		got, err := fp.collectFilesFromPaths([]string{"/in", "/in/a.csv"})
		require.NoError(t, err)
		assert.Equal(t, []string{"/in/a.csv", "/in/b.tsv.zst", "/in/sub/c.ltsv"}, got)
	})

	t.Run("single file", func(t *testing.T) {
		t.Parallel()
		got, err := fp.collectFilesFromPaths([]string{"/other/d.parquet"})
		require.NoError(t, err)
		assert.Equal(t, []string{"/other/d.parquet"}, got)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		for _, paths := range [][]string{{""}, {"/missing.csv"}, {"/other/e.md"}} {
			_, err := fp.collectFilesFromPaths(paths)
			assert.Error(t, err, paths)
		}
	})
}

func TestDeduplicateCompressedFiles(t *testing.T) {
	t.Parallel()

	got := deduplicateCompressedFiles([]string{"b.tsv.xz", "a.CSV.GZ", "a.CSV", "c.csv.bz2"})
	assert.Equal(t, []string{"a.CSV", "b.tsv.xz", "c.csv.bz2"}, got)
}

func TestLoadPaths(t *testing.T) {
	t.Parallel()

	t.Run("loads every file", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		fs := memFS(t, map[string]string{
			"/data/sales.csv":  "region,amount\neast,10\nwest,20\n",
			"/data/users.ltsv": "id:1\tname:alice\nid:2\tname:bob\n",
		})

		created, err := svc.LoadPaths(context.Background(), fs, []string{"/data"}, "")
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, "sales", created[0].Name)
		assert.Equal(t, "users", created[1].Name)
		assert.Equal(t, int64(2), created[1].RowCount)
	})

	t.Run("name override for one file", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		fs := memFS(t, map[string]string{"/data/sales.csv": "region\neast\n"})

		created, err := svc.LoadPaths(context.Background(), fs, []string{"/data/sales.csv"}, "Q1")
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, "q1", created[0].Name)
	})

	t.Run("name override with many files", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		fs := memFS(t, map[string]string{"/d/a.csv": "x\n1\n", "/d/b.csv": "x\n1\n"})

		_, err := svc.LoadPaths(context.Background(), fs, []string{"/d"}, "one")
		require.ErrorIs(t, err, model.ErrInvalidParameter)
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/empty", 0o755))

		_, err := svc.LoadPaths(context.Background(), fs, []string{"/empty"}, "")
		require.ErrorIs(t, err, model.ErrInvalidParameter)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		fs := memFS(t, map[string]string{
			"/d/a.csv": "x\n1\n",
			"/d/b.csv": "",
			"/d/c.csv": "x\n1\n",
		})

		created, err := svc.LoadPaths(context.Background(), fs, []string{"/d"}, "")
		require.ErrorIs(t, err, model.ErrParse)
		assert.Contains(t, err.Error(), "/d/b.csv")
		require.Len(t, created, 1)
		assert.Equal(t, "a", created[0].Name)
	})
}
