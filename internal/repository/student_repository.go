package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// InsertIfAbsent writes students with their explicit ids, skipping ids already present.
func (r *StudentRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, students []models.Student) (int64, error) {
	const query = `INSERT INTO students (id, first_name, last_name, email, level)
VALUES (:id, :first_name, :last_name, :email, :level)
ON CONFLICT (id) DO NOTHING`
	return insertEach(ctx, pick(r.db, exec), query, students, func(s models.Student) string {
		return fmt.Sprintf("student %d", s.ID)
	})
}

// ListByClub returns the members of a club ordered by id.
func (r *StudentRepository) ListByClub(ctx context.Context, clubID int) ([]models.Student, error) {
	const query = `SELECT s.id, s.first_name, s.last_name, s.email, s.level
FROM students s JOIN student_clubs sc ON sc.student_id = s.id
WHERE sc.club_id = $1 ORDER BY s.id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, clubID); err != nil {
		return nil, fmt.Errorf("list students by club: %w", err)
	}
	return students, nil
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "students")
}
