package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// psql builds statements with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	userColumns = `id, email, username, name, password_hash, oauth_provider, oauth_provider_id, is_active, is_verified, created_at, updated_at, deleted_at`

	createUser = `INSERT INTO users (id, email, username, name, password_hash, oauth_provider, oauth_provider_id, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns + `;`

	findUserByID = `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1;`

	findUserByEmail = `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1;`

	softDeleteUser = `UPDATE users
		SET deleted_at = NOW(), is_active = FALSE
		WHERE id = $1
		RETURNING ` + userColumns + `;`

	hardDeleteUser = `DELETE FROM users WHERE id = $1;`

	findRolesByUserID = `SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.id;`

	lockUserForSessions = `SELECT id FROM users WHERE id = $1 FOR NO KEY UPDATE;`
)

const (
	sessionColumns = `id, user_id, refresh_token_hash, status, device_info, expires_at, created_at, last_used_at, revoked_at`

	createSession = `INSERT INTO sessions (id, user_id, refresh_token_hash, status, device_info, expires_at, last_used_at)
		VALUES ($1, $2, $3, 'active', $4, $5, NOW())
		RETURNING ` + sessionColumns + `;`

	findSessionByID = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1;`

	findSessionByRefreshTokenHash = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE refresh_token_hash = $1;`

	findActiveSessionsByUserID = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND status = 'active' AND expires_at > NOW()
		ORDER BY last_used_at DESC;`

	countActiveSessions = `SELECT COUNT(*)
		FROM sessions
		WHERE user_id = $1 AND status = 'active' AND expires_at > NOW();`

	lockSessionByID = `SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1
		FOR UPDATE;`

	// transitionSession moves an active session into a terminal status.
	transitionSession = `UPDATE sessions
		SET status = $2
		WHERE id = $1 AND status = 'active'
		RETURNING ` + sessionColumns + `;`

	expireStaleSessions = `UPDATE sessions
		SET status = 'expired'
		WHERE user_id = $1 AND status = 'active' AND expires_at <= NOW();`

	selectSessionsToEvict = `SELECT id
		FROM sessions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY last_used_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED;`
)

const (
	roleColumns       = `id, name, description, created_at, updated_at`
	permissionColumns = `id, name, description, created_at, updated_at`

	createRole = `INSERT INTO roles (name, description)
		VALUES ($1, $2)
		RETURNING ` + roleColumns + `;`

	findRoleByID = `SELECT ` + roleColumns + `
		FROM roles
		WHERE id = $1;`

	findPermissionsByRoleID = `SELECT p.id, p.name, p.description, p.created_at, p.updated_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.id;`

	createPermission = `INSERT INTO permissions (name, description)
		VALUES ($1, $2)
		RETURNING ` + permissionColumns + `;`

	findPermissionByID = `SELECT ` + permissionColumns + `
		FROM permissions
		WHERE id = $1;`

	findRolesByPermissionID = `SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		FROM roles r
		JOIN role_permissions rp ON rp.role_id = r.id
		WHERE rp.permission_id = $1
		ORDER BY r.id;`
)

// buildUserUpdateQuery builds an UPDATE touching only the fields present in
// patch. It returns ErrBuildingSQLQuery for an empty patch.
func buildUserUpdateQuery(id uuid.UUID, patch models.UserPatch) (string, []any, error) {
	if patch.IsEmpty() {
		return "", nil, fmt.Errorf("%w: empty user patch", ErrBuildingSQLQuery)
	}

	q := psql.Update("users")
	if v, ok := patch.Email.Get(); ok {
		q = q.Set("email", v)
	}
	if v, ok := patch.Username.Get(); ok {
		q = q.Set("username", v)
	}
	if v, ok := patch.Name.Get(); ok {
		q = q.Set("name", v)
	}
	if v, ok := patch.PasswordHash.Get(); ok {
		q = q.Set("password_hash", v)
	}
	if v, ok := patch.OAuthProvider.Get(); ok {
		q = q.Set("oauth_provider", v)
	}
	if v, ok := patch.OAuthProviderID.Get(); ok {
		q = q.Set("oauth_provider_id", v)
	}
	if v, ok := patch.IsActive.Get(); ok {
		q = q.Set("is_active", v)
	}
	if v, ok := patch.IsVerified.Get(); ok {
		q = q.Set("is_verified", v)
	}

	query, args, err := q.
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildSessionUpdateQuery builds an UPDATE touching only the fields present
// in patch. Only active rows are written: expired, invalid and revoked
// sessions are terminal.
func buildSessionUpdateQuery(id uuid.UUID, patch models.SessionPatch) (string, []any, error) {
	if patch.IsEmpty() {
		return "", nil, fmt.Errorf("%w: empty session patch", ErrBuildingSQLQuery)
	}

	q := psql.Update("sessions").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": string(models.SessionStatusActive)})
	if v, ok := patch.RefreshTokenHash.Get(); ok {
		q = q.Set("refresh_token_hash", v)
	}
	if v, ok := patch.Status.Get(); ok {
		q = q.Set("status", string(v))
	}
	if v, ok := patch.ExpiresAt.Get(); ok {
		q = q.Set("expires_at", v)
	}
	if v, ok := patch.LastUsedAt.Get(); ok {
		q = q.Set("last_used_at", v)
	}

	query, args, err := q.Suffix("RETURNING " + sessionColumns).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildExistingIDsQuery selects which of ids exist in table.
func buildExistingIDsQuery(table string, ids []int64) (string, []any, error) {
	query, args, err := psql.Select("id").From(table).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildLinkQuery inserts (owner, id) pairs into a junction table, keeping
// links that already exist.
func buildLinkQuery(table, ownerColumn, idColumn string, owner any, ids []int64) (string, []any, error) {
	q := psql.Insert(table).Columns(ownerColumn, idColumn)
	for _, id := range ids {
		q = q.Values(owner, id)
	}
	query, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildUnlinkQuery deletes (owner, id) pairs from a junction table.
func buildUnlinkQuery(table, ownerColumn, idColumn string, owner any, ids []int64) (string, []any, error) {
	query, args, err := psql.Delete(table).
		Where(sq.Eq{ownerColumn: owner}).
		Where(sq.Eq{idColumn: ids}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildRevokeSessionsQuery revokes the given active sessions.
func buildRevokeSessionsQuery(ids []uuid.UUID) (string, []any, error) {
	query, args, err := psql.Update("sessions").
		Set("status", string(models.SessionStatusRevoked)).
		Where(sq.Eq{"id": ids}).
		Where(sq.Eq{"status": string(models.SessionStatusActive)}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
