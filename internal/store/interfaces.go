package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// Lookups return (value, found, err): a missing row is (zero, false, nil).

// UserRepository persists user accounts and their role links.
type UserRepository interface {
	Create(ctx context.Context, user models.UserCreate) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (models.User, bool, error)
	GetWithRoles(ctx context.Context, id uuid.UUID) (models.UserWithRoles, bool, error)

	// Update writes only the fields present in patch.
	Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (models.User, bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (models.User, bool, error)
	HardDelete(ctx context.Context, id uuid.UUID) (bool, error)

	// AddRoles links every role in roleIDs to the user. When any role does not
	// exist nothing is written and the missing ids are returned.
	AddRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) ([]int64, error)
	RemoveRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (int64, error)
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session models.SessionCreate) (models.Session, error)

	// CreateWithinLimit evicts the least recently used active sessions of the
	// user so that at most limit remain after the insert, all in one
	// transaction.
	CreateWithinLimit(ctx context.Context, session models.SessionCreate, limit int) (models.SessionCreated, error)

	GetByID(ctx context.Context, id uuid.UUID) (models.Session, bool, error)
	GetByRefreshTokenHash(ctx context.Context, hash string) (models.Session, bool, error)
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	CountActiveForUser(ctx context.Context, userID uuid.UUID) (int, error)

	Update(ctx context.Context, id uuid.UUID, patch models.SessionPatch) (models.Session, bool, error)

	// Revoke and MarkExpired only move active sessions; a session already in a
	// terminal status is returned unchanged.
	Revoke(ctx context.Context, id uuid.UUID) (models.Session, bool, error)
	MarkExpired(ctx context.Context, id uuid.UUID) (models.Session, bool, error)

	// EvictOldestIfOverLimit revokes active sessions, oldest last_used_at
	// first, until fewer than limit remain, and returns the revoked ids.
	EvictOldestIfOverLimit(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error)

	// LockAndMutate locks the session row, calls mutate with its current
	// state, persists the returned patch and commits, then returns mutate's
	// error. The patch is persisted even when mutate fails.
	LockAndMutate(ctx context.Context, id uuid.UUID, mutate models.SessionMutation) (models.Session, bool, error)
}

// RoleRepository persists roles and their permission links.
type RoleRepository interface {
	Create(ctx context.Context, role models.RoleCreate) (models.Role, error)
	GetByID(ctx context.Context, id int64) (models.Role, bool, error)
	GetWithPermissions(ctx context.Context, id int64) (models.RoleWithPermissions, bool, error)

	// AddPermissions behaves like [UserRepository.AddRoles].
	AddPermissions(ctx context.Context, roleID int64, permissionIDs []int64) ([]int64, error)
}

// PermissionRepository persists permissions.
type PermissionRepository interface {
	Create(ctx context.Context, permission models.PermissionCreate) (models.Permission, error)
	GetByID(ctx context.Context, id int64) (models.Permission, bool, error)
	GetWithRoles(ctx context.Context, id int64) (models.PermissionWithRoles, bool, error)
}

// ErrorClassificator decides whether a failed database call may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
