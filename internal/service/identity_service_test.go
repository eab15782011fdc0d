package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/pkg/config"
	appErrors "github.com/business-school/campus-api/pkg/errors"
)

type memoryIdentityStore struct {
	roles      map[string]*models.Role
	users      map[string]*models.User
	assigned   map[[2]string]struct{}
	order      []string
	createErr  error
	roleLookup int
}

func newMemoryIdentityStore() *memoryIdentityStore {
	return &memoryIdentityStore{
		roles:    map[string]*models.Role{},
		users:    map[string]*models.User{},
		assigned: map[[2]string]struct{}{},
	}
}

func (m *memoryIdentityStore) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	m.roleLookup++
	if role, ok := m.roles[models.Normalize(name)]; ok {
		copy := *role
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryIdentityStore) CreateRole(ctx context.Context, role *models.Role) error {
	role.NormalizedName = models.Normalize(role.Name)
	copy := *role
	m.roles[role.NormalizedName] = &copy
	return nil
}

func (m *memoryIdentityStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.users[models.Normalize(email)]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryIdentityStore) CreateUser(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.NormalizedEmail = models.Normalize(user.Email)
	copy := *user
	m.users[user.NormalizedEmail] = &copy
	m.order = append(m.order, user.NormalizedEmail)
	return nil
}

func (m *memoryIdentityStore) AddUserToRole(ctx context.Context, userID, roleID string) (bool, error) {
	key := [2]string{userID, roleID}
	if _, ok := m.assigned[key]; ok {
		return false, nil
	}
	m.assigned[key] = struct{}{}
	return true, nil
}

func (m *memoryIdentityStore) UsersWithoutRoles(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, key := range m.order {
		user := m.users[key]
		held := false
		for pair := range m.assigned {
			if pair[0] == user.ID {
				held = true
				break
			}
		}
		if !held {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (m *memoryIdentityStore) rolesOf(email string) []string {
	user := m.users[models.Normalize(email)]
	var names []string
	for pair := range m.assigned {
		if pair[0] != user.ID {
			continue
		}
		for _, role := range m.roles {
			if role.ID == pair[1] {
				names = append(names, role.Name)
			}
		}
	}
	return names
}

func testIdentityConfig() config.IdentityConfig {
	return config.IdentityConfig{
		Roles:       []string{"Admin", "DepartmentManager", "ClubLeader", "Student", "User"},
		DefaultRole: "User",
		Accounts: []config.BootstrapAccount{
			{Email: "admin@businessschool.com", Password: "Admin123!", Role: "Admin"},
			{Email: "manager.finance@businessschool.com", Password: "Manager123!", Role: "DepartmentManager"},
			{Email: "leader.marketing@businessschool.com", Password: "Leader123!", Role: "ClubLeader"},
		},
	}
}

func newIdentityServiceFixture(store identityStore) *IdentityService {
	svc := NewIdentityService(store, validator.New(), NewMetricsService(), zap.NewNop())
	svc.hash = func(password string) ([]byte, error) {
		return bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	}
	return svc
}

func TestIdentityServiceReconcileCreatesRolesAndAccounts(t *testing.T) {
	store := newMemoryIdentityStore()
	svc := newIdentityServiceFixture(store)

	summary, err := svc.Reconcile(context.Background(), testIdentityConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"Admin", "DepartmentManager", "ClubLeader", "Student", "User"}, summary.RolesCreated)
	assert.Equal(t, []string{"admin@businessschool.com", "manager.finance@businessschool.com", "leader.marketing@businessschool.com"}, summary.UsersCreated)
	assert.Equal(t, 3, summary.RolesAssigned)

	admin := store.users[models.Normalize("admin@businessschool.com")]
	require.NotNil(t, admin)
	assert.True(t, admin.EmailConfirmed)
	assert.NotEmpty(t, admin.ID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Admin123!")))

	assert.Equal(t, []string{"Admin"}, store.rolesOf("admin@businessschool.com"))
	assert.Equal(t, []string{"DepartmentManager"}, store.rolesOf("manager.finance@businessschool.com"))
	assert.Equal(t, []string{"ClubLeader"}, store.rolesOf("leader.marketing@businessschool.com"))
}

func TestIdentityServiceReconcileIsIdempotent(t *testing.T) {
	store := newMemoryIdentityStore()
	svc := newIdentityServiceFixture(store)

	_, err := svc.Reconcile(context.Background(), testIdentityConfig())
	require.NoError(t, err)

	summary, err := svc.Reconcile(context.Background(), testIdentityConfig())
	require.NoError(t, err)
	assert.Empty(t, summary.RolesCreated)
	assert.Empty(t, summary.UsersCreated)
	assert.Zero(t, summary.RolesAssigned)
	assert.Len(t, store.roles, 5)
	assert.Len(t, store.users, 3)
	assert.Len(t, store.assigned, 3)
}

func TestIdentityServiceReconcileAssignsDefaultRoleToUsersWithoutRoles(t *testing.T) {
	store := newMemoryIdentityStore()
	require.NoError(t, store.CreateUser(context.Background(), &models.User{ID: "u-self", Email: "ana@alumnos.com"}))
	svc := newIdentityServiceFixture(store)

	summary, err := svc.Reconcile(context.Background(), testIdentityConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.RolesAssigned)
	assert.Equal(t, []string{"User"}, store.rolesOf("ana@alumnos.com"))
	assert.Equal(t, []string{"Admin"}, store.rolesOf("admin@businessschool.com"))
}

func TestIdentityServiceReconcileRestoresMissingAccountRole(t *testing.T) {
	store := newMemoryIdentityStore()
	svc := newIdentityServiceFixture(store)
	_, err := svc.Reconcile(context.Background(), testIdentityConfig())
	require.NoError(t, err)

	admin := store.users[models.Normalize("admin@businessschool.com")]
	for pair := range store.assigned {
		if pair[0] == admin.ID {
			delete(store.assigned, pair)
		}
	}

	summary, err := svc.Reconcile(context.Background(), testIdentityConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RolesAssigned)
	assert.Equal(t, []string{"Admin"}, store.rolesOf("admin@businessschool.com"))
}

func TestIdentityServiceReconcileAddsRolesReferencedByAccounts(t *testing.T) {
	store := newMemoryIdentityStore()
	svc := newIdentityServiceFixture(store)

	cfg := config.IdentityConfig{
		Roles:       []string{"admin"},
		DefaultRole: "User",
		Accounts:    []config.BootstrapAccount{{Email: "auditor@businessschool.com", Password: "Auditor123!", Role: "Auditor"}},
	}
	summary, err := svc.Reconcile(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "Auditor", "User"}, summary.RolesCreated)
	assert.Equal(t, []string{"Auditor"}, store.rolesOf("auditor@businessschool.com"))
}

func TestIdentityServiceReconcileRejectsInvalidAccount(t *testing.T) {
	store := newMemoryIdentityStore()
	svc := newIdentityServiceFixture(store)

	cfg := testIdentityConfig()
	cfg.Accounts[0].Email = "not-an-email"
	_, err := svc.Reconcile(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, store.roleLookup)
}

func TestIdentityServiceReconcileStoreFailure(t *testing.T) {
	store := newMemoryIdentityStore()
	store.createErr = errors.New("connection reset")
	svc := newIdentityServiceFixture(store)

	_, err := svc.Reconcile(context.Background(), testIdentityConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestRequiredRolesDeduplicatesCaseInsensitively(t *testing.T) {
	roles := requiredRoles(config.IdentityConfig{
		Roles:       []string{"Admin", " admin ", "Student"},
		DefaultRole: "user",
		Accounts:    []config.BootstrapAccount{{Role: "STUDENT"}, {Role: "ClubLeader"}},
	})
	assert.Equal(t, []string{"Admin", "Student", "ClubLeader", "user"}, roles)
}
