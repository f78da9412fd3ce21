// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
)

// ResultSet holds the rows returned by a read query. Columns preserves the
// select-list order so downstream CSV/chart code does not depend on map
// iteration order.
type ResultSet struct {
	Columns []string
	Rows    []map[string]any
}

// Empty returns true if the result set has no rows.
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// Repository defines the interface for executing parameterized SQL.
type Repository interface {
	// RunQuery executes a read statement and returns all fetched rows as
	// field-keyed mappings. When limit > 0, at most limit rows are returned.
	RunQuery(ctx context.Context, query string, limit int, args ...any) (*ResultSet, error)

	// Exec executes a mutation and returns the affected row count.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
