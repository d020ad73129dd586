package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"

	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles user accounts in the "users" table and their role links in
// "user_roles".
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new user record and returns it with the server-assigned
// timestamps.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrUserAlreadyExists].
//   - Any other driver-level error → wrapped [ErrExecutingQuery].
func (r *userRepository) Create(ctx context.Context, user models.UserCreate) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser,
		user.ID, user.Email, user.Username, user.Name, user.PasswordHash,
		user.OAuthProvider, user.OAuthProviderID, user.IsActive, user.IsVerified,
	)

	created, err := scanUser(row)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.Create").Msg("error creating user")
		return models.User{}, translateUserError(err)
	}

	return created, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, bool, error) {
	return r.findOne(ctx, "*userRepository.GetByID", findUserByID, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return r.findOne(ctx, "*userRepository.GetByEmail", findUserByEmail, email)
}

// GetWithRoles loads the user and its roles with an explicit join.
func (r *userRepository) GetWithRoles(ctx context.Context, id uuid.UUID) (models.UserWithRoles, bool, error) {
	log := logger.FromContext(ctx)

	user, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return models.UserWithRoles{}, found, err
	}

	roles, err := queryRoles(ctx, r.db, findRolesByUserID, id)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.GetWithRoles").Str("user_id", id.String()).Msg("error loading user roles")
		return models.UserWithRoles{}, false, err
	}

	return models.UserWithRoles{User: user, Roles: roles}, true, nil
}

// Update applies the present fields of patch. An empty patch returns the
// stored user unchanged.
func (r *userRepository) Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (models.User, bool, error) {
	log := logger.FromContext(ctx)

	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	query, args, err := buildUserUpdateQuery(id, patch)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.Update").Msg("failed to create query")
		return models.User{}, false, err
	}

	updated, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.Update").Str("user_id", id.String()).Msg("error updating user")
		return models.User{}, false, translateUserError(err)
	}

	return updated, true, nil
}

// SoftDelete marks the user deleted and inactive.
func (r *userRepository) SoftDelete(ctx context.Context, id uuid.UUID) (models.User, bool, error) {
	return r.findOne(ctx, "*userRepository.SoftDelete", softDeleteUser, id)
}

// HardDelete removes the user row; sessions and role links cascade.
func (r *userRepository) HardDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	log := logger.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, hardDeleteUser, id)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.HardDelete").Str("user_id", id.String()).Msg("error deleting user")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return affected > 0, nil
}

func (r *userRepository) AddRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) ([]int64, error) {
	log := logger.FromContext(ctx)

	missing, err := linkIDs(ctx, r.db, "roles", "user_roles", "user_id", "role_id", userID, roleIDs)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.AddRoles").Str("user_id", userID.String()).Msg("error assigning roles")
		if postgresError(err) == pgerrcode.ForeignKeyViolation {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return missing, nil
}

func (r *userRepository) RemoveRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (int64, error) {
	log := logger.FromContext(ctx)

	if len(roleIDs) == 0 {
		return 0, nil
	}

	query, args, err := buildUnlinkQuery("user_roles", "user_id", "role_id", userID, roleIDs)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.RemoveRoles").Str("user_id", userID.String()).Msg("error removing roles")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return affected, nil
}

func (r *userRepository) findOne(ctx context.Context, fn, query string, arg any) (models.User, bool, error) {
	log := logger.FromContext(ctx)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", fn).Msg("error querying user")
		return models.User{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return user, true, nil
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Name,
		&u.PasswordHash,
		&u.OAuthProvider,
		&u.OAuthProviderID,
		&u.IsActive,
		&u.IsVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.DeletedAt,
	)
	return u, err
}

func translateUserError(err error) error {
	switch postgresError(err) {
	case pgerrcode.UniqueViolation:
		return ErrUserAlreadyExists
	case pgerrcode.CheckViolation:
		switch postgresConstraint(err) {
		case "users_login_method":
			return ErrUserLoginMethodRequired
		case "users_oauth_pair":
			return ErrUserOAuthPairIncomplete
		}
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	default:
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
}
