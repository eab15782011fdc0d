package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/internal/seed"
	"github.com/business-school/campus-api/pkg/database"
	appErrors "github.com/business-school/campus-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// DepartmentWriter inserts departments that are not stored yet.
type DepartmentWriter interface {
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, rows []models.Department) (int64, error)
}

// ClubWriter inserts clubs that are not stored yet.
type ClubWriter interface {
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, rows []models.Club) (int64, error)
}

// StudentWriter inserts students that are not stored yet.
type StudentWriter interface {
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, rows []models.Student) (int64, error)
}

// EventWriter inserts events that are not stored yet.
type EventWriter interface {
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, rows []models.Event) (int64, error)
}

// MembershipWriter inserts student club memberships that are not stored yet.
type MembershipWriter interface {
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, rows []models.StudentClub) (int64, error)
}

// AttendanceWriter inserts event registrations that are not stored yet.
type AttendanceWriter interface {
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, rows []models.EventAttendance) (int64, error)
}

// EventClubWriter inserts event club links that are not stored yet.
type EventClubWriter interface {
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, rows []models.EventClub) (int64, error)
}

// SequenceSyncer realigns id sequences after explicit-id inserts.
type SequenceSyncer interface {
	Sync(ctx context.Context, exec sqlx.ExtContext, tables ...string) error
}

// SeedStores groups the writers used by the seed transaction.
type SeedStores struct {
	Departments DepartmentWriter
	Clubs       ClubWriter
	Students    StudentWriter
	Events      EventWriter
	Memberships MembershipWriter
	Attendances AttendanceWriter
	EventClubs  EventClubWriter
	Sequences   SequenceSyncer
}

// SeedResult reports what a seed run wrote.
type SeedResult struct {
	Inserted map[string]int64 `json:"inserted"`
	Warnings []string         `json:"warnings,omitempty"`
}

// Total returns the number of rows written across all tables.
func (r *SeedResult) Total() int64 {
	if r == nil {
		return 0
	}
	var total int64
	for _, n := range r.Inserted {
		total += n
	}
	return total
}

// SeedService writes a seed dataset in a single all-or-nothing transaction.
type SeedService struct {
	tx        txProvider
	stores    SeedStores
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	strict    bool
}

// NewSeedService constructs the seed service. Strict turns verifier warnings into failures.
func NewSeedService(tx txProvider, stores SeedStores, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, strict bool) *SeedService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{
		tx:        tx,
		stores:    stores,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		strict:    strict,
	}
}

type seedStep struct {
	table string
	run   func(ctx context.Context, exec sqlx.ExtContext) (int64, error)
}

// Apply verifies the dataset and inserts every missing row. Rows already present are left untouched.
func (s *SeedService) Apply(ctx context.Context, data seed.Dataset) (*SeedResult, error) {
	report := seed.Verify(data, s.validator)
	result := &SeedResult{Inserted: make(map[string]int64, len(seed.Tables()))}
	for _, warning := range report.Warnings() {
		s.logger.Warn("seed data warning", zap.String("table", warning.Table), zap.String("key", warning.Key), zap.String("detail", warning.Message))
		result.Warnings = append(result.Warnings, warning.String())
	}
	if err := report.Err(s.strict); err != nil {
		for _, finding := range report.Errors() {
			s.logger.Error("seed data rejected", zap.String("finding", finding.String()))
		}
		return nil, err
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin seed transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, step := range s.steps(data) {
		inserted, err := step.run(ctx, tx)
		if err != nil {
			return nil, storeError(step.table, err)
		}
		result.Inserted[step.table] = inserted
	}

	if err := s.stores.Sequences.Sync(ctx, tx, seed.TableDepartments, seed.TableClubs, seed.TableStudents, seed.TableEvents); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sync id sequences")
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit seed transaction")
	}
	committed = true

	for _, table := range seed.Tables() {
		s.metrics.AddSeedRows(table, result.Inserted[table])
	}
	s.logger.Info("seed applied", zap.Int64("rows_inserted", result.Total()), zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

func (s *SeedService) steps(data seed.Dataset) []seedStep {
	return []seedStep{
		{seed.TableDepartments, func(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
			return s.stores.Departments.InsertIfAbsent(ctx, exec, data.Departments)
		}},
		{seed.TableClubs, func(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
			return s.stores.Clubs.InsertIfAbsent(ctx, exec, data.Clubs)
		}},
		{seed.TableStudents, func(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
			return s.stores.Students.InsertIfAbsent(ctx, exec, data.Students)
		}},
		{seed.TableEvents, func(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
			return s.stores.Events.InsertIfAbsent(ctx, exec, data.Events)
		}},
		{seed.TableStudentClubs, func(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
			return s.stores.Memberships.InsertIfAbsent(ctx, exec, data.StudentClubs)
		}},
		{seed.TableEventAttendances, func(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
			return s.stores.Attendances.InsertIfAbsent(ctx, exec, data.EventAttendances)
		}},
		{seed.TableEventClubs, func(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
			return s.stores.EventClubs.InsertIfAbsent(ctx, exec, data.EventClubs)
		}},
	}
}

// storeError maps integrity violations raised by the store to typed errors.
func storeError(table string, err error) error {
	switch {
	case database.IsForeignKeyViolation(err):
		return appErrors.CloneWrap(appErrors.ErrForeignKeyViolation, err,
			fmt.Sprintf("%s row references a missing parent (%s)", table, database.Constraint(err)))
	case database.IsUniqueViolation(err):
		return appErrors.CloneWrap(appErrors.ErrDuplicateKey, err,
			fmt.Sprintf("%s row collides with an existing key (%s)", table, database.Constraint(err)))
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to seed %s", table))
	}
}
