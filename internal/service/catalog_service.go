package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/internal/seed"
	appErrors "github.com/business-school/campus-api/pkg/errors"
)

type migrationLister interface {
	Applied(ctx context.Context) ([]models.AppliedMigration, error)
}

type rowCounter interface {
	Count(ctx context.Context) (int, error)
}

// DepartmentReader loads departments.
type DepartmentReader interface {
	rowCounter
	FindByID(ctx context.Context, id int) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
}

// ClubReader loads clubs.
type ClubReader interface {
	rowCounter
	FindByID(ctx context.Context, id int) (*models.Club, error)
	ListByDepartment(ctx context.Context, departmentID int) ([]models.Club, error)
}

// StudentReader loads club members.
type StudentReader interface {
	rowCounter
	ListByClub(ctx context.Context, clubID int) ([]models.Student, error)
}

// EventReader loads events.
type EventReader interface {
	rowCounter
	FindByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
}

// MembershipReader loads club memberships.
type MembershipReader interface {
	rowCounter
	ListByClub(ctx context.Context, clubID int) ([]models.StudentClub, error)
}

// AttendanceReader loads event registrations.
type AttendanceReader interface {
	rowCounter
	ListByEvent(ctx context.Context, eventID int) ([]models.EventAttendance, error)
	CountByEvent(ctx context.Context) (map[int]int, error)
}

// EventClubReader loads event/club links.
type EventClubReader interface {
	rowCounter
	ListByEvent(ctx context.Context, eventID int) ([]models.EventClub, error)
}

// CatalogReaders groups the read side of the catalog tables.
type CatalogReaders struct {
	Departments DepartmentReader
	Clubs       ClubReader
	Students    StudentReader
	Events      EventReader
	Memberships MembershipReader
	Attendances AttendanceReader
	EventClubs  EventClubReader
}

// CatalogService answers read-only queries over the seeded catalog.
type CatalogService struct {
	migrations migrationLister
	readers    CatalogReaders
	logger     *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(migrations migrationLister, readers CatalogReaders, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{migrations: migrations, readers: readers, logger: logger}
}

// Status lists applied migrations and the row count of every catalog table.
func (s *CatalogService) Status(ctx context.Context) (*models.CatalogStatus, error) {
	applied, err := s.migrations.Applied(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list migrations")
	}

	counters := map[string]rowCounter{
		seed.TableDepartments:      s.readers.Departments,
		seed.TableClubs:            s.readers.Clubs,
		seed.TableStudents:         s.readers.Students,
		seed.TableEvents:           s.readers.Events,
		seed.TableStudentClubs:     s.readers.Memberships,
		seed.TableEventAttendances: s.readers.Attendances,
		seed.TableEventClubs:       s.readers.EventClubs,
	}
	status := &models.CatalogStatus{Migrations: applied, Tables: make(map[string]int, len(counters))}
	for _, table := range seed.Tables() {
		total, err := counters[table].Count(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count "+table)
		}
		status.Tables[table] = total
	}
	s.logger.Debug("catalog status loaded", zap.Int("migrations", len(applied)))
	return status, nil
}

// Departments lists every department.
func (s *CatalogService) Departments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.readers.Departments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Department returns a department with its clubs.
func (s *CatalogService) Department(ctx context.Context, id int) (*models.DepartmentDetail, error) {
	department, err := s.readers.Departments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "department not found", "failed to load department")
	}
	clubs, err := s.readers.Clubs.ListByDepartment(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list department clubs")
	}
	return &models.DepartmentDetail{Department: *department, Clubs: nonNil(clubs)}, nil
}

// Club returns a club with its memberships and members.
func (s *CatalogService) Club(ctx context.Context, id int) (*models.ClubRoster, error) {
	club, err := s.readers.Clubs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "club not found", "failed to load club")
	}
	memberships, err := s.readers.Memberships.ListByClub(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list club memberships")
	}
	members, err := s.readers.Students.ListByClub(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list club members")
	}
	return &models.ClubRoster{Club: *club, Memberships: nonNil(memberships), Members: nonNil(members)}, nil
}

// Events lists events by start date with their registration counts.
func (s *CatalogService) Events(ctx context.Context) ([]models.EventSummary, error) {
	events, err := s.readers.Events.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	counts, err := s.readers.Attendances.CountByEvent(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count registrations")
	}
	summaries := make([]models.EventSummary, 0, len(events))
	for _, event := range events {
		summaries = append(summaries, models.EventSummary{Event: event, Registrations: counts[event.ID]})
	}
	return summaries, nil
}

// Event returns an event with its clubs and registrations.
func (s *CatalogService) Event(ctx context.Context, id int) (*models.EventDetail, error) {
	event, err := s.readers.Events.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "event not found", "failed to load event")
	}
	clubs, err := s.readers.EventClubs.ListByEvent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list event clubs")
	}
	attendances, err := s.readers.Attendances.ListByEvent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list event registrations")
	}
	return &models.EventDetail{Event: *event, Clubs: nonNil(clubs), Attendances: nonNil(attendances)}, nil
}

func lookupError(err error, notFound, failed string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, failed)
}

// nonNil keeps empty collections rendering as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
