package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/pkg/database"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDepartmentRepositoryInsertIfAbsent(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO departments (id, name, phone_number, email, office_location)")).
		WithArgs(1, "Finance & Accounting", "601-1001", "finance@businessschool.com", "Building A - Room 201").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
		WithArgs(2, "Marketing & Sales", "601-1002", "marketing@businessschool.com", "Building B - Room 105").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertIfAbsent(context.Background(), nil, []models.Department{
		{ID: 1, Name: "Finance & Accounting", PhoneNumber: "601-1001", Email: "finance@businessschool.com", OfficeLocation: "Building A - Room 201"},
		{ID: 2, Name: "Marketing & Sales", PhoneNumber: "601-1002", Email: "marketing@businessschool.com", OfficeLocation: "Building B - Room 105"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepositoryInsertIfAbsentForeignKeyViolation(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewClubRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clubs")).
		WithArgs(1, "Finance Club", "Investment and stock market", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clubs")).
		WithArgs(2, "Orphan Club", "", 99).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "clubs_department_id_fkey"})

	inserted, err := repo.InsertIfAbsent(context.Background(), nil, []models.Club{
		{ID: 1, Name: "Finance Club", Description: "Investment and stock market", DepartmentID: 1},
		{ID: 2, Name: "Orphan Club", DepartmentID: 99},
	})
	require.Error(t, err)
	assert.Equal(t, int64(1), inserted)
	assert.True(t, database.IsForeignKeyViolation(err))
	assert.Equal(t, "clubs_department_id_fkey", database.Constraint(err))
	assert.Contains(t, err.Error(), "club 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryInsertIfAbsentUsesTransaction(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2026, 1, 8, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 8, 20, 0, 0, 0, time.UTC)
	description := "Inspiring talks"
	department := 2

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs(4, "Women Leadership Panel", &description, start, end, nil, 25, &department, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	inserted, err := repo.InsertIfAbsent(context.Background(), tx, []models.Event{{
		ID:           4,
		Title:        "Women Leadership Panel",
		Description:  &description,
		StartDate:    start,
		EndDate:      end,
		PointsReward: 25,
		DepartmentID: &department,
	}})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Equal(t, int64(1), inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2025, 12, 10, 18, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "start_date", "end_date", "capacity", "points_reward", "department_id", "organizer_id"}).
		AddRow(1, "Investment Workshop", "Learn about stocks", start, start.Add(2*time.Hour), 50, 20, 1, nil)
	mock.ExpectQuery("SELECT (.+) FROM events WHERE id = \\$1").WithArgs(1).WillReturnRows(rows)

	event, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Investment Workshop", event.Title)
	require.NotNil(t, event.Capacity)
	assert.Equal(t, 50, *event.Capacity)
	assert.Nil(t, event.OrganizerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepositoryInsertIfAbsentCompositeKey(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewMembershipRepository(db)

	joined := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, club_id) DO NOTHING")).
		WithArgs(1, 1, joined, true, 40).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertIfAbsent(context.Background(), nil, []models.StudentClub{
		{StudentID: 1, ClubID: 1, JoinedAt: joined, IsLeader: true, PointsFromThisClub: 40},
	})
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryInsertIfAbsentCompositeKey(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	registered := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (event_id, student_id) DO NOTHING")).
		WithArgs(2, 3, registered, false, nil, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.InsertIfAbsent(context.Background(), nil, []models.EventAttendance{
		{EventID: 2, StudentID: 3, RegisteredAt: registered},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCountByEvent(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"event_id", "registrations"}).AddRow(1, 2).AddRow(2, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT event_id, COUNT(*) AS registrations FROM event_attendances GROUP BY event_id")).WillReturnRows(rows)

	counts, err := repo.CountByEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2, 2: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventClubRepositoryInsertIfAbsent(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewEventClubRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (event_id, club_id) DO NOTHING")).
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.InsertIfAbsent(context.Background(), nil, []models.EventClub{{EventID: 5, ClubID: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRepositoryCount(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM departments")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepositorySync(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewSequenceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SELECT setval(pg_get_serial_sequence('departments', 'id')")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SELECT setval(pg_get_serial_sequence('events', 'id')")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Sync(context.Background(), nil, "departments", "events"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepositorySyncRejectsUnknownTable(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewSequenceRepository(db)

	err := repo.Sync(context.Background(), nil, "student_clubs")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEachStopsOnFirstError(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO event_clubs")).WillReturnError(errors.New("boom"))

	inserted, err := NewEventClubRepository(db).InsertIfAbsent(context.Background(), nil, []models.EventClub{{EventID: 1, ClubID: 1}, {EventID: 2, ClubID: 2}})
	require.Error(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
