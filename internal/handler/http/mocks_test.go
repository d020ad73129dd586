package http

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/service"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// ─────────────────────────────────────────────
// Service mocks. Each method field can be overridden per test case; an
// unset field panics, which flags an unexpected call.
// ─────────────────────────────────────────────

type mockAuthService struct {
	registerFn               func(ctx context.Context, request models.RegisterRequest, device models.DeviceInfo) (models.RegisterResult, error)
	loginFn                  func(ctx context.Context, request models.LoginRequest, device models.DeviceInfo) (models.TokenPair, error)
	refreshSessionFn         func(ctx context.Context, user models.User, session models.Session, request models.RefreshRequest, device models.DeviceInfo) (models.TokenPair, error)
	resolveRefreshTokenFn    func(ctx context.Context, refreshToken string) (models.User, models.Session, error)
	loadCurrentUserSessionFn func(ctx context.Context, accessToken string) (models.User, models.Session, error)
	logoutFn                 func(ctx context.Context, user models.User, session models.Session) error
}

func (m *mockAuthService) Register(ctx context.Context, request models.RegisterRequest, device models.DeviceInfo) (models.RegisterResult, error) {
	return m.registerFn(ctx, request, device)
}

func (m *mockAuthService) Login(ctx context.Context, request models.LoginRequest, device models.DeviceInfo) (models.TokenPair, error) {
	return m.loginFn(ctx, request, device)
}

func (m *mockAuthService) RefreshSession(ctx context.Context, user models.User, session models.Session, request models.RefreshRequest, device models.DeviceInfo) (models.TokenPair, error) {
	return m.refreshSessionFn(ctx, user, session, request, device)
}

func (m *mockAuthService) ResolveRefreshToken(ctx context.Context, refreshToken string) (models.User, models.Session, error) {
	return m.resolveRefreshTokenFn(ctx, refreshToken)
}

func (m *mockAuthService) LoadCurrentUserSession(ctx context.Context, accessToken string) (models.User, models.Session, error) {
	return m.loadCurrentUserSessionFn(ctx, accessToken)
}

func (m *mockAuthService) Logout(ctx context.Context, user models.User, session models.Session) error {
	return m.logoutFn(ctx, user, session)
}

type mockUserService struct {
	createFn            func(ctx context.Context, user models.UserCreate) (models.User, error)
	getFn               func(ctx context.Context, id uuid.UUID) (models.User, bool, error)
	getByEmailFn        func(ctx context.Context, email string) (models.User, bool, error)
	getWithRolesFn      func(ctx context.Context, id uuid.UUID) (models.UserWithRoles, error)
	updateFn            func(ctx context.Context, id uuid.UUID, patch models.UserPatch) (models.User, error)
	updateFromRequestFn func(ctx context.Context, id uuid.UUID, request models.UserUpdateRequest) (models.User, error)
	softDeleteFn        func(ctx context.Context, id uuid.UUID) (models.User, error)
	hardDeleteFn        func(ctx context.Context, id uuid.UUID) error
	assignRolesFn       func(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error)
	removeRolesFn       func(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error)
}

func (m *mockUserService) Create(ctx context.Context, user models.UserCreate) (models.User, error) {
	return m.createFn(ctx, user)
}

func (m *mockUserService) Get(ctx context.Context, id uuid.UUID) (models.User, bool, error) {
	return m.getFn(ctx, id)
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return m.getByEmailFn(ctx, email)
}

func (m *mockUserService) GetWithRoles(ctx context.Context, id uuid.UUID) (models.UserWithRoles, error) {
	return m.getWithRolesFn(ctx, id)
}

func (m *mockUserService) Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (models.User, error) {
	return m.updateFn(ctx, id, patch)
}

func (m *mockUserService) UpdateFromRequest(ctx context.Context, id uuid.UUID, request models.UserUpdateRequest) (models.User, error) {
	return m.updateFromRequestFn(ctx, id, request)
}

func (m *mockUserService) SoftDelete(ctx context.Context, id uuid.UUID) (models.User, error) {
	return m.softDeleteFn(ctx, id)
}

func (m *mockUserService) HardDelete(ctx context.Context, id uuid.UUID) error {
	return m.hardDeleteFn(ctx, id)
}

func (m *mockUserService) AssignRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error) {
	return m.assignRolesFn(ctx, userID, roleIDs)
}

func (m *mockUserService) RemoveRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error) {
	return m.removeRolesFn(ctx, userID, roleIDs)
}

type mockRoleService struct {
	createFn             func(ctx context.Context, role models.RoleCreate) (models.Role, error)
	getFn                func(ctx context.Context, id int64) (models.Role, error)
	getWithPermissionsFn func(ctx context.Context, id int64) (models.RoleWithPermissions, error)
	assignPermissionsFn  func(ctx context.Context, roleID int64, permissionIDs []int64) (models.RoleWithPermissions, error)
}

func (m *mockRoleService) Create(ctx context.Context, role models.RoleCreate) (models.Role, error) {
	return m.createFn(ctx, role)
}

func (m *mockRoleService) Get(ctx context.Context, id int64) (models.Role, error) {
	return m.getFn(ctx, id)
}

func (m *mockRoleService) GetWithPermissions(ctx context.Context, id int64) (models.RoleWithPermissions, error) {
	return m.getWithPermissionsFn(ctx, id)
}

func (m *mockRoleService) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) (models.RoleWithPermissions, error) {
	return m.assignPermissionsFn(ctx, roleID, permissionIDs)
}

type mockPermissionService struct {
	createFn       func(ctx context.Context, permission models.PermissionCreate) (models.Permission, error)
	getFn          func(ctx context.Context, id int64) (models.Permission, error)
	getWithRolesFn func(ctx context.Context, id int64) (models.PermissionWithRoles, error)
}

func (m *mockPermissionService) Create(ctx context.Context, permission models.PermissionCreate) (models.Permission, error) {
	return m.createFn(ctx, permission)
}

func (m *mockPermissionService) Get(ctx context.Context, id int64) (models.Permission, error) {
	return m.getFn(ctx, id)
}

func (m *mockPermissionService) GetWithRoles(ctx context.Context, id int64) (models.PermissionWithRoles, error) {
	return m.getWithRolesFn(ctx, id)
}

type mockAppInfoService struct {
	version string
}

func (m *mockAppInfoService) GetAppVersion(_ context.Context) string {
	return m.version
}

var (
	_ service.AuthService       = (*mockAuthService)(nil)
	_ service.UserService       = (*mockUserService)(nil)
	_ service.RoleService       = (*mockRoleService)(nil)
	_ service.PermissionService = (*mockPermissionService)(nil)
	_ service.AppInfoService    = (*mockAppInfoService)(nil)
)

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

const testAccessToken = "valid-access-token"

var (
	testUser    = models.User{ID: uuid.MustParse("0190a4b2-7c1e-7000-8000-000000000001"), Email: "alice@example.com", Name: "Alice", IsActive: true}
	testSession = models.Session{ID: uuid.MustParse("0190a4b2-7c1e-7000-8000-0000000000aa"), UserID: testUser.ID, Status: models.SessionStatusActive}
)

// authenticated returns an AuthService mock that accepts testAccessToken.
func authenticated() *mockAuthService {
	return &mockAuthService{
		loadCurrentUserSessionFn: func(_ context.Context, token string) (models.User, models.Session, error) {
			if token != testAccessToken {
				return models.User{}, models.Session{}, service.ErrInvalidCredentials
			}
			return testUser, testSession, nil
		},
	}
}

// newTestServer builds the full router over svcs. Missing services get
// empty mocks.
func newTestServer(t *testing.T, svcs *service.Services) *Handler {
	t.Helper()
	if svcs.AppInfoService == nil {
		svcs.AppInfoService = &mockAppInfoService{version: "test"}
	}
	if svcs.AuthService == nil {
		svcs.AuthService = authenticated()
	}
	return NewHandler(svcs, nil, config.Server{}, logger.Nop())
}
