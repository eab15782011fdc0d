package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

// MembershipRepository manages student_clubs rows keyed by (student_id, club_id).
type MembershipRepository struct {
	db *sqlx.DB
}

// NewMembershipRepository constructs a MembershipRepository.
func NewMembershipRepository(db *sqlx.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// InsertIfAbsent writes memberships, skipping composite keys already present.
func (r *MembershipRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, memberships []models.StudentClub) (int64, error) {
	const query = `INSERT INTO student_clubs (student_id, club_id, joined_at, is_leader, points_from_this_club)
VALUES (:student_id, :club_id, :joined_at, :is_leader, :points_from_this_club)
ON CONFLICT (student_id, club_id) DO NOTHING`
	return insertEach(ctx, pick(r.db, exec), query, memberships, func(m models.StudentClub) string {
		return fmt.Sprintf("membership (student %d, club %d)", m.StudentID, m.ClubID)
	})
}

// ListByClub returns a club's memberships, leaders first.
func (r *MembershipRepository) ListByClub(ctx context.Context, clubID int) ([]models.StudentClub, error) {
	const query = `SELECT student_id, club_id, joined_at, is_leader, points_from_this_club
FROM student_clubs WHERE club_id = $1 ORDER BY is_leader DESC, student_id ASC`
	var memberships []models.StudentClub
	if err := r.db.SelectContext(ctx, &memberships, query, clubID); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return memberships, nil
}

// Count returns the number of memberships.
func (r *MembershipRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "student_clubs")
}
