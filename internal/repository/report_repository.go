package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

// ReportRepository runs read-only aggregate queries.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// PointsStandings sums club points and points awarded on attended events per student.
func (r *ReportRepository) PointsStandings(ctx context.Context) ([]models.PointsStanding, error) {
	const query = `SELECT s.id AS student_id, s.first_name, s.last_name, s.level,
    COALESCE(c.points, 0) AS club_points,
    COALESCE(e.points, 0) AS event_points,
    COALESCE(c.points, 0) + COALESCE(e.points, 0) AS total_points
FROM students s
LEFT JOIN (SELECT student_id, SUM(points_from_this_club) AS points FROM student_clubs GROUP BY student_id) c ON c.student_id = s.id
LEFT JOIN (SELECT student_id, SUM(points_awarded) AS points FROM event_attendances WHERE has_attended GROUP BY student_id) e ON e.student_id = s.id
ORDER BY total_points DESC, s.id ASC`
	var standings []models.PointsStanding
	if err := r.db.SelectContext(ctx, &standings, query); err != nil {
		return nil, fmt.Errorf("points standings: %w", err)
	}
	return standings, nil
}
