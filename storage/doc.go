// Package storage opens the single local SQLite store backing csvapi and
// provides the small amount of SQL plumbing shared by the catalog and the
// query engine: driver selection, catalog migration, identifier quoting and
// classification of constraint violations.
package storage
