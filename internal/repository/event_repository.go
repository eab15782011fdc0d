package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

const eventColumns = `id, title, description, start_date, end_date, capacity, points_reward, department_id, organizer_id`

// EventRepository manages persistence for events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// InsertIfAbsent writes events with their explicit ids, skipping ids already present.
func (r *EventRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, events []models.Event) (int64, error) {
	const query = `INSERT INTO events (` + eventColumns + `)
VALUES (:id, :title, :description, :start_date, :end_date, :capacity, :points_reward, :department_id, :organizer_id)
ON CONFLICT (id) DO NOTHING`
	return insertEach(ctx, pick(r.db, exec), query, events, func(e models.Event) string {
		return fmt.Sprintf("event %d", e.ID)
	})
}

// FindByID fetches an event by id.
func (r *EventRepository) FindByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns events ordered by start date.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY start_date ASC, id ASC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Count returns the number of events.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "events")
}
