package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/business-school/campus-api/internal/models"
)

// IdentityRepository stores users, roles and their assignments.
type IdentityRepository struct {
	db *sqlx.DB
}

// NewIdentityRepository creates a new instance of IdentityRepository.
func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// FindRoleByName returns a role by case-insensitive name.
func (r *IdentityRepository) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	const query = `SELECT id, name, normalized_name FROM roles WHERE normalized_name = $1 LIMIT 1`
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, models.Normalize(name)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	return &role, nil
}

// CreateRole inserts a new role.
func (r *IdentityRepository) CreateRole(ctx context.Context, role *models.Role) error {
	role.NormalizedName = models.Normalize(role.Name)
	const query = `INSERT INTO roles (id, name, normalized_name) VALUES (:id, :name, :normalized_name)`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// FindUserByEmail returns a user by case-insensitive email.
func (r *IdentityRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, normalized_email, password_hash, email_confirmed, created_at FROM users WHERE normalized_email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, models.Normalize(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new user.
func (r *IdentityRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.NormalizedEmail = models.Normalize(user.Email)
	const query = `INSERT INTO users (id, email, normalized_email, password_hash, email_confirmed, created_at)
VALUES (:id, :email, :normalized_email, :password_hash, :email_confirmed, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// AddUserToRole assigns a role and reports whether a new assignment was written.
func (r *IdentityRepository) AddUserToRole(ctx context.Context, userID, roleID string) (bool, error) {
	const query = `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT (user_id, role_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, userID, roleID)
	if err != nil {
		return false, fmt.Errorf("add user to role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add user to role rows affected: %w", err)
	}
	return n > 0, nil
}

// UsersWithoutRoles returns users holding no role at all.
func (r *IdentityRepository) UsersWithoutRoles(ctx context.Context) ([]models.User, error) {
	const query = `SELECT u.id, u.email, u.normalized_email, u.password_hash, u.email_confirmed, u.created_at
FROM users u
WHERE NOT EXISTS (SELECT 1 FROM user_roles ur WHERE ur.user_id = u.id)
ORDER BY u.created_at ASC, u.id ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users without roles: %w", err)
	}
	return users, nil
}
