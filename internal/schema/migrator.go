package schema

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/pkg/database"
	appErrors "github.com/business-school/campus-api/pkg/errors"
)

// migrationLockKey serialises schema changes across instances sharing a database.
const migrationLockKey int64 = 5_318_008_001

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is a versioned DDL script. Version is the numeric filename prefix.
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// Embedded returns the migrations compiled into the binary, ordered by version.
func Embedded() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := migrationFiles.ReadFile(path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version: strings.SplitN(entry.Name(), "_", 2)[0],
			Name:    entry.Name(),
			SQL:     string(content),
		})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// Migrator applies pending migrations and records them in schema_migrations.
type Migrator struct {
	db         *sqlx.DB
	migrations []Migration
	logger     *zap.Logger
}

// NewMigrator constructs a Migrator over the given migration set.
func NewMigrator(db *sqlx.DB, migrations []Migration, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, migrations: migrations, logger: logger}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    VARCHAR(255) PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema_migrations tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := lockMigrations(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema_migrations: %w", err)
	}
	return nil
}

// Applied lists migrations already recorded, oldest first. It never changes the
// schema: a database that was never migrated reports an empty list.
func (m *Migrator) Applied(ctx context.Context) ([]models.AppliedMigration, error) {
	applied := []models.AppliedMigration{}
	if err := m.db.SelectContext(ctx, &applied, `SELECT version, applied_at FROM schema_migrations ORDER BY version ASC`); err != nil {
		if database.IsUndefinedTable(err) {
			return []models.AppliedMigration{}, nil
		}
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return applied, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns the versions it applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrMigrationFailed, err, "failed to prepare migration state")
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrMigrationFailed, err, "failed to read migration state")
	}
	done := make(map[string]struct{}, len(applied))
	for _, a := range applied {
		done[a.Version] = struct{}{}
	}

	var versions []string
	for _, migration := range m.migrations {
		if _, ok := done[migration.Version]; ok {
			m.logger.Debug("migration already applied", zap.String("version", migration.Version))
			continue
		}
		ran, err := m.apply(ctx, migration)
		if err != nil {
			return versions, appErrors.CloneWrap(appErrors.ErrMigrationFailed, err, fmt.Sprintf("migration %s failed", migration.Name))
		}
		if !ran {
			m.logger.Info("migration applied by another instance", zap.String("version", migration.Version))
			continue
		}
		m.logger.Info("migration applied", zap.String("version", migration.Version), zap.String("name", migration.Name))
		versions = append(versions, migration.Version)
	}
	return versions, nil
}

// apply runs one migration under the migration advisory lock. It reports false
// when another instance recorded the version while this one waited.
func (m *Migrator) apply(ctx context.Context, migration Migration) (bool, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin migration tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := lockMigrations(ctx, tx); err != nil {
		return false, err
	}
	var recorded bool
	if err := tx.GetContext(ctx, &recorded, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, migration.Version); err != nil {
		return false, fmt.Errorf("check %s: %w", migration.Name, err)
	}
	if recorded {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return false, fmt.Errorf("execute %s: %w", migration.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`, migration.Version, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("record %s: %w", migration.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit %s: %w", migration.Name, err)
	}
	return true, nil
}

// lockMigrations blocks until tx holds the migration lock. Postgres releases it
// when tx ends.
func lockMigrations(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	return nil
}
