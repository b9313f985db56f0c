// Package csvapi turns uploaded tabular files into named, queryable datasets.
//
// Each upload (CSV, TSV, LTSV, Parquet or Excel, optionally compressed with
// gzip, bzip2, xz or zstandard) is parsed, its column types are inferred and
// the rows are materialized into their own table in a local SQLite store.
// Datasets are then listed, sampled, queried and deleted by name.
//
// # Basic Usage
//
//	svc, err := csvapi.Open(ctx, afero.NewOsFs(), cfg, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	ds, err := svc.CreateDataset(ctx, csvapi.Upload{
//	    FileName: "sales.csv",
//	    Body:     f,
//	})
//
//	res, err := svc.QueryRows(ctx, "sales", url.Values{
//	    "filter": {"region:eq:east"},
//	    "sort":   {"amount:desc"},
//	})
//
// # Dataset Naming
//
// Names are case-folded and restricted to letters, digits and underscores:
//   - "Sales 2024" becomes "sales_2024"
//   - without an explicit name, "data.tsv.gz" becomes "data"
//   - the physical table is the name with a "ds_" prefix, e.g. "ds_sales"
//
// # Column Types
//
// Every column gets exactly one type, decided on the full column: integer,
// then float, then boolean, then datetime; anything mixed is a string.
// Empty cells are stored as NULL and ignored by inference.
//
// # Querying
//
// Query parameters are limit (clamped to 1..1000), offset, sort
// ("column" or "column:desc") and any number of filter=column:op:value,
// combined with AND. Supported operators are eq, neq, gt, gte, lt, lte and
// contains. Column names are checked against the dataset schema and values
// are always bound, never spliced into SQL.
//
// # Exporting
//
// A dataset, optionally filtered and sorted, can be written back out as
// CSV, TSV, LTSV or XLSX with gzip, xz or zstandard compression:
//
//	x, err := svc.PrepareExport(ctx, "sales", url.Values{"format": {"tsv"}, "compression": {"gz"}})
//	if err != nil {
//	    return err
//	}
//	n, err := x.WriteTo(ctx, w) // writes sales.tsv.gz content
package csvapi
