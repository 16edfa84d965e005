package record

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource reads attribute rows from PostgreSQL, for deployments where
// the merged utility layers live in a database rather than file
// exports. Values are rendered to strings via ::text casts so the
// adapter sees the same shape as CSV input.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource connects to the database and verifies the connection.
func NewPGSource(ctx context.Context, databaseURL string) (*PGSource, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &PGSource{pool: pool}, nil
}

// Ping checks database connectivity.
func (s *PGSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PGSource) Close() {
	s.pool.Close()
}

// Rows reads the named columns from a table, ordered by the first
// column so graph construction order is stable across calls. Table and
// column names come from trusted config, not user input; they are
// quoted but not further validated.
func (s *PGSource) Rows(ctx context.Context, table string, columns []string) ([]Row, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns requested from %s", table)
	}

	sel := ""
	for i, c := range columns {
		if i > 0 {
			sel += ", "
		}
		sel += fmt.Sprintf("%q::text", c)
	}
	query := fmt.Sprintf("SELECT %s FROM %q ORDER BY %q", sel, table, columns[0])

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", table, err)
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		values := make([]*string, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row %d failed: %w", table, len(out)+1, err)
		}

		row := make(Row, len(columns))
		for i, c := range columns {
			if values[i] != nil {
				row[c] = *values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s failed: %w", table, err)
	}
	return out, nil
}
