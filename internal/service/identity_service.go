package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/pkg/config"
	"github.com/business-school/campus-api/pkg/database"
	appErrors "github.com/business-school/campus-api/pkg/errors"
)

type identityStore interface {
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
	CreateRole(ctx context.Context, role *models.Role) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	AddUserToRole(ctx context.Context, userID, roleID string) (bool, error)
	UsersWithoutRoles(ctx context.Context) ([]models.User, error)
}

// IdentityService reconciles the fixed role set and bootstrap accounts.
type IdentityService struct {
	store     identityStore
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
	hash      func(password string) ([]byte, error)
}

// NewIdentityService constructs the identity bootstrap service.
func NewIdentityService(store identityStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *IdentityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		store:     store,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		hash: func(password string) ([]byte, error) {
			return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		},
	}
}

// Reconcile makes sure every required role exists, every bootstrap account exists and holds its
// role, and every user without a role receives the default role. Running it again changes nothing.
func (s *IdentityService) Reconcile(ctx context.Context, cfg config.IdentityConfig) (*models.IdentitySummary, error) {
	for _, account := range cfg.Accounts {
		if err := s.validator.Struct(account); err != nil {
			return nil, appErrors.CloneWrap(appErrors.ErrValidation, err, fmt.Sprintf("invalid bootstrap account %q", account.Email))
		}
	}

	summary := &models.IdentitySummary{RolesCreated: []string{}, UsersCreated: []string{}}
	roleIDs := make(map[string]string)
	for _, name := range requiredRoles(cfg) {
		role, created, err := s.ensureRole(ctx, name)
		if err != nil {
			return nil, err
		}
		roleIDs[models.Normalize(name)] = role.ID
		if created {
			summary.RolesCreated = append(summary.RolesCreated, role.Name)
		}
	}

	for _, account := range cfg.Accounts {
		user, created, err := s.ensureUser(ctx, account)
		if err != nil {
			return nil, err
		}
		if created {
			summary.UsersCreated = append(summary.UsersCreated, user.Email)
		}
		added, err := s.store.AddUserToRole(ctx, user.ID, roleIDs[models.Normalize(account.Role)])
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to assign role %s", account.Role))
		}
		if added {
			summary.RolesAssigned++
			s.logger.Info("role assigned", zap.String("email", user.Email), zap.String("role", account.Role))
		}
	}

	if cfg.DefaultRole != "" {
		assigned, err := s.assignDefaultRole(ctx, cfg.DefaultRole, roleIDs[models.Normalize(cfg.DefaultRole)])
		if err != nil {
			return nil, err
		}
		summary.RolesAssigned += assigned
	}

	s.metrics.AddIdentityChanges("role", len(summary.RolesCreated))
	s.metrics.AddIdentityChanges("user", len(summary.UsersCreated))
	s.metrics.AddIdentityChanges("assignment", summary.RolesAssigned)
	s.logger.Info("identity reconciled",
		zap.Strings("roles_created", summary.RolesCreated),
		zap.Strings("users_created", summary.UsersCreated),
		zap.Int("roles_assigned", summary.RolesAssigned),
	)
	return summary, nil
}

// requiredRoles merges configured roles with those referenced by accounts and the default role,
// preserving order and dropping case-insensitive duplicates.
func requiredRoles(cfg config.IdentityConfig) []string {
	seen := make(map[string]struct{})
	var roles []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := models.Normalize(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		roles = append(roles, name)
	}
	for _, name := range cfg.Roles {
		add(name)
	}
	for _, account := range cfg.Accounts {
		add(account.Role)
	}
	add(cfg.DefaultRole)
	return roles
}

func (s *IdentityService) ensureRole(ctx context.Context, name string) (*models.Role, bool, error) {
	role, err := s.store.FindRoleByName(ctx, name)
	if err == nil {
		return role, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load role %s", name))
	}

	role = &models.Role{ID: uuid.NewString(), Name: name}
	if err := s.store.CreateRole(ctx, role); err != nil {
		if database.IsUniqueViolation(err) {
			// another instance created it first
			existing, findErr := s.store.FindRoleByName(ctx, name)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to create role %s", name))
	}
	s.logger.Info("role created", zap.String("role", name))
	return role, true, nil
}

func (s *IdentityService) ensureUser(ctx context.Context, account config.BootstrapAccount) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	user, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load user %s", email))
	}

	hash, err := s.hash(account.Password)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user = &models.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		EmailConfirmed: true,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			existing, findErr := s.store.FindUserByEmail(ctx, email)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to create user %s", email))
	}
	s.logger.Info("bootstrap user created", zap.String("email", email), zap.String("role", account.Role))
	return user, true, nil
}

func (s *IdentityService) assignDefaultRole(ctx context.Context, roleName, roleID string) (int, error) {
	users, err := s.store.UsersWithoutRoles(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users without roles")
	}
	assigned := 0
	for _, user := range users {
		added, err := s.store.AddUserToRole(ctx, user.ID, roleID)
		if err != nil {
			return assigned, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to assign role %s", roleName))
		}
		if added {
			assigned++
			s.logger.Info("default role assigned", zap.String("email", user.Email), zap.String("role", roleName))
		}
	}
	return assigned, nil
}
