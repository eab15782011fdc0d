package models

import "time"

// AppliedMigration is a row of the schema_migrations ledger.
type AppliedMigration struct {
	Version   string    `db:"version" json:"version"`
	AppliedAt time.Time `db:"applied_at" json:"applied_at"`
}
