package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

// EventClubRepository manages event_clubs rows keyed by (event_id, club_id).
type EventClubRepository struct {
	db *sqlx.DB
}

// NewEventClubRepository constructs an EventClubRepository.
func NewEventClubRepository(db *sqlx.DB) *EventClubRepository {
	return &EventClubRepository{db: db}
}

// InsertIfAbsent writes event/club links, skipping composite keys already present.
func (r *EventClubRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, links []models.EventClub) (int64, error) {
	const query = `INSERT INTO event_clubs (event_id, club_id)
VALUES (:event_id, :club_id)
ON CONFLICT (event_id, club_id) DO NOTHING`
	return insertEach(ctx, pick(r.db, exec), query, links, func(l models.EventClub) string {
		return fmt.Sprintf("event club (event %d, club %d)", l.EventID, l.ClubID)
	})
}

// ListByEvent returns the clubs linked to an event.
func (r *EventClubRepository) ListByEvent(ctx context.Context, eventID int) ([]models.EventClub, error) {
	const query = `SELECT event_id, club_id FROM event_clubs WHERE event_id = $1 ORDER BY club_id ASC`
	var links []models.EventClub
	if err := r.db.SelectContext(ctx, &links, query, eventID); err != nil {
		return nil, fmt.Errorf("list event clubs: %w", err)
	}
	return links, nil
}

// Count returns the number of event/club links.
func (r *EventClubRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "event_clubs")
}
