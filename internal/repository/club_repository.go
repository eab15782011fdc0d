package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

// ClubRepository manages persistence for clubs.
type ClubRepository struct {
	db *sqlx.DB
}

// NewClubRepository constructs a ClubRepository.
func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

// InsertIfAbsent writes clubs with their explicit ids, skipping ids already present.
func (r *ClubRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, clubs []models.Club) (int64, error) {
	const query = `INSERT INTO clubs (id, name, description, department_id)
VALUES (:id, :name, :description, :department_id)
ON CONFLICT (id) DO NOTHING`
	return insertEach(ctx, pick(r.db, exec), query, clubs, func(c models.Club) string {
		return fmt.Sprintf("club %d", c.ID)
	})
}

// FindByID fetches a club by id.
func (r *ClubRepository) FindByID(ctx context.Context, id int) (*models.Club, error) {
	const query = `SELECT id, name, description, department_id FROM clubs WHERE id = $1`
	var club models.Club
	if err := r.db.GetContext(ctx, &club, query, id); err != nil {
		return nil, err
	}
	return &club, nil
}

// ListByDepartment returns the clubs run by a department.
func (r *ClubRepository) ListByDepartment(ctx context.Context, departmentID int) ([]models.Club, error) {
	const query = `SELECT id, name, description, department_id FROM clubs WHERE department_id = $1 ORDER BY id ASC`
	var clubs []models.Club
	if err := r.db.SelectContext(ctx, &clubs, query, departmentID); err != nil {
		return nil, fmt.Errorf("list clubs by department: %w", err)
	}
	return clubs, nil
}

// Count returns the number of clubs.
func (r *ClubRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "clubs")
}
