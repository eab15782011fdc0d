package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

// AttendanceRepository manages event_attendances rows keyed by (event_id, student_id).
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// InsertIfAbsent writes registrations, skipping composite keys already present.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, attendances []models.EventAttendance) (int64, error) {
	const query = `INSERT INTO event_attendances (event_id, student_id, registered_at, has_attended, attended_at, points_awarded)
VALUES (:event_id, :student_id, :registered_at, :has_attended, :attended_at, :points_awarded)
ON CONFLICT (event_id, student_id) DO NOTHING`
	return insertEach(ctx, pick(r.db, exec), query, attendances, func(a models.EventAttendance) string {
		return fmt.Sprintf("attendance (event %d, student %d)", a.EventID, a.StudentID)
	})
}

// ListByEvent returns the registrations for an event.
func (r *AttendanceRepository) ListByEvent(ctx context.Context, eventID int) ([]models.EventAttendance, error) {
	const query = `SELECT event_id, student_id, registered_at, has_attended, attended_at, points_awarded
FROM event_attendances WHERE event_id = $1 ORDER BY registered_at ASC, student_id ASC`
	var attendances []models.EventAttendance
	if err := r.db.SelectContext(ctx, &attendances, query, eventID); err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	return attendances, nil
}

// CountByEvent returns registrations per event id.
func (r *AttendanceRepository) CountByEvent(ctx context.Context) (map[int]int, error) {
	const query = `SELECT event_id, COUNT(*) AS registrations FROM event_attendances GROUP BY event_id`
	var rows []struct {
		EventID       int `db:"event_id"`
		Registrations int `db:"registrations"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count attendances by event: %w", err)
	}
	out := make(map[int]int, len(rows))
	for _, row := range rows {
		out[row.EventID] = row.Registrations
	}
	return out, nil
}

// Count returns the number of registrations.
func (r *AttendanceRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "event_attendances")
}
