package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func pick(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

// insertEach runs an insert-if-absent statement per row and returns how many
// rows were actually written.
func insertEach[T any](ctx context.Context, exec sqlx.ExtContext, query string, rows []T, label func(T) string) (int64, error) {
	var inserted int64
	for _, row := range rows {
		res, err := sqlx.NamedExecContext(ctx, exec, query, row)
		if err != nil {
			return inserted, fmt.Errorf("insert %s: %w", label(row), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("rows affected for %s: %w", label(row), err)
		}
		inserted += n
	}
	return inserted, nil
}

func countRows(ctx context.Context, exec sqlx.ExtContext, table string) (int, error) {
	var total int
	if err := sqlx.GetContext(ctx, exec, &total, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}
