package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// SessionService drives the session state machine: active sessions move to
// expired or revoked and never come back.
type SessionService interface {
	// InitSession creates an active session for userID, evicting the least
	// recently used sessions over the per-user cap, and returns the raw token
	// pair. The raw refresh token is never stored.
	InitSession(ctx context.Context, userID uuid.UUID, device models.DeviceInfo) (models.TokenPair, models.Session, error)

	// Refresh stores newRefreshTokenHash on session and extends its expiry by
	// extension, never past created_at plus the session lifetime.
	// ErrSessionExpired when the session is already past expiry.
	Refresh(ctx context.Context, session models.Session, newRefreshTokenHash string, extension time.Duration) (models.Session, error)

	// Rotate locks the session row, runs check against the locked state and
	// rotates the refresh token when it passes. A failed check revokes the
	// session before the error is returned.
	Rotate(ctx context.Context, sessionID uuid.UUID, check RotationCheck) (models.TokenPair, models.Session, error)

	Revoke(ctx context.Context, sessionID uuid.UUID) (models.Session, error)
	MarkExpired(ctx context.Context, sessionID uuid.UUID) (models.Session, error)

	// MarkUsed advances last_used_at unless it was advanced less than the
	// touch interval ago.
	MarkUsed(ctx context.Context, session models.Session) (models.Session, error)

	Get(ctx context.Context, sessionID uuid.UUID) (models.Session, bool, error)
}

// RotationCheck validates a locked session before its refresh token is
// rotated.
type RotationCheck func(ctx context.Context, current models.Session) error

// AuthService is the entry point of every authentication flow.
type AuthService interface {
	Register(ctx context.Context, request models.RegisterRequest, device models.DeviceInfo) (models.RegisterResult, error)
	Login(ctx context.Context, request models.LoginRequest, device models.DeviceInfo) (models.TokenPair, error)

	// RefreshSession rotates the refresh token of session. Any token or
	// device mismatch revokes the session and returns ErrInvalidSession.
	RefreshSession(ctx context.Context, user models.User, session models.Session, request models.RefreshRequest, device models.DeviceInfo) (models.TokenPair, error)

	// ResolveRefreshToken loads the user and session a refresh token points at.
	ResolveRefreshToken(ctx context.Context, refreshToken string) (models.User, models.Session, error)

	// LoadCurrentUserSession is the gate of every authenticated request.
	LoadCurrentUserSession(ctx context.Context, accessToken string) (models.User, models.Session, error)

	Logout(ctx context.Context, user models.User, session models.Session) error
}

// UserService manages user accounts and role assignment.
type UserService interface {
	Create(ctx context.Context, user models.UserCreate) (models.User, error)
	Get(ctx context.Context, id uuid.UUID) (models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (models.User, bool, error)
	GetWithRoles(ctx context.Context, id uuid.UUID) (models.UserWithRoles, error)

	// Update rejects any patch that would leave the user without a password
	// and without an OAuth login.
	Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (models.User, error)

	// UpdateFromRequest hashes a new password, if any, and applies Update.
	UpdateFromRequest(ctx context.Context, id uuid.UUID, request models.UserUpdateRequest) (models.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (models.User, error)
	HardDelete(ctx context.Context, id uuid.UUID) error

	AssignRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error)
	RemoveRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error)
}

// RoleService creates roles and links permissions to them.
type RoleService interface {
	Create(ctx context.Context, role models.RoleCreate) (models.Role, error)
	Get(ctx context.Context, id int64) (models.Role, error)
	GetWithPermissions(ctx context.Context, id int64) (models.RoleWithPermissions, error)
	AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) (models.RoleWithPermissions, error)
}

// PermissionService creates permissions.
type PermissionService interface {
	Create(ctx context.Context, permission models.PermissionCreate) (models.Permission, error)
	Get(ctx context.Context, id int64) (models.Permission, error)
	GetWithRoles(ctx context.Context, id int64) (models.PermissionWithRoles, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// AuthServiceWrapper defines middleware composition for AuthService.
// Implementations wrap an existing AuthService to add behavior such as
// validating.
type AuthServiceWrapper interface {
	Wrap(AuthService) AuthService
}

// UserServiceWrapper defines middleware composition for UserService.
type UserServiceWrapper interface {
	Wrap(UserService) UserService
}

// RoleServiceWrapper defines middleware composition for RoleService.
type RoleServiceWrapper interface {
	Wrap(RoleService) RoleService
}

// PermissionServiceWrapper defines middleware composition for PermissionService.
type PermissionServiceWrapper interface {
	Wrap(PermissionService) PermissionService
}
