package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

// DepartmentRepository manages persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// InsertIfAbsent writes departments with their explicit ids, skipping ids already present.
func (r *DepartmentRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, departments []models.Department) (int64, error) {
	const query = `INSERT INTO departments (id, name, phone_number, email, office_location)
VALUES (:id, :name, :phone_number, :email, :office_location)
ON CONFLICT (id) DO NOTHING`
	return insertEach(ctx, pick(r.db, exec), query, departments, func(d models.Department) string {
		return fmt.Sprintf("department %d", d.ID)
	})
}

// FindByID fetches a department by id.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int) (*models.Department, error) {
	const query = `SELECT id, name, phone_number, email, office_location FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// List returns all departments ordered by id.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, name, phone_number, email, office_location FROM departments ORDER BY id ASC`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// Count returns the number of departments.
func (r *DepartmentRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, "departments")
}
