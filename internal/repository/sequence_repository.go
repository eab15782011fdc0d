package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// serialTables are the tables whose SERIAL id sequence must follow explicit seed ids.
var serialTables = map[string]struct{}{
	"departments": {},
	"clubs":       {},
	"students":    {},
	"events":      {},
}

// SequenceRepository keeps SERIAL sequences ahead of explicitly inserted ids.
type SequenceRepository struct {
	db *sqlx.DB
}

// NewSequenceRepository constructs a SequenceRepository.
func NewSequenceRepository(db *sqlx.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Sync moves each table's id sequence to MAX(id) so later default inserts do not collide.
func (r *SequenceRepository) Sync(ctx context.Context, exec sqlx.ExtContext, tables ...string) error {
	target := pick(r.db, exec)
	for _, table := range tables {
		if _, ok := serialTables[table]; !ok {
			return fmt.Errorf("table %q has no serial id", table)
		}
		query := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 1), (SELECT COUNT(*) > 0 FROM %[1]s))`, table)
		if _, err := target.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("sync %s sequence: %w", table, err)
		}
	}
	return nil
}
