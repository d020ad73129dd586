package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

type roleRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRoleRepository constructs a PostgreSQL-backed [RoleRepository].
func NewRoleRepository(db *DB, logger *logger.Logger) RoleRepository {
	logger.Debug().Msg("creating role repository")
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

func (r *roleRepository) Create(ctx context.Context, role models.RoleCreate) (models.Role, error) {
	log := logger.FromContext(ctx)

	created, err := scanRole(r.db.QueryRowContext(ctx, createRole, role.Name, role.Description))
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.Create").Str("role", role.Name).Msg("error creating role")
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.Role{}, ErrRoleAlreadyExists
		}
		return models.Role{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return created, nil
}

func (r *roleRepository) GetByID(ctx context.Context, id int64) (models.Role, bool, error) {
	log := logger.FromContext(ctx)

	role, err := scanRole(r.db.QueryRowContext(ctx, findRoleByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Role{}, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.GetByID").Int64("role_id", id).Msg("error querying role")
		return models.Role{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return role, true, nil
}

func (r *roleRepository) GetWithPermissions(ctx context.Context, id int64) (models.RoleWithPermissions, bool, error) {
	role, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return models.RoleWithPermissions{}, found, err
	}

	permissions, err := queryPermissions(ctx, r.db, findPermissionsByRoleID, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*roleRepository.GetWithPermissions").
			Int64("role_id", id).
			Msg("error loading role permissions")
		return models.RoleWithPermissions{}, false, err
	}

	return models.RoleWithPermissions{Role: role, Permissions: permissions}, true, nil
}

func (r *roleRepository) AddPermissions(ctx context.Context, roleID int64, permissionIDs []int64) ([]int64, error) {
	missing, err := linkIDs(ctx, r.db, "permissions", "role_permissions", "role_id", "permission_id", roleID, permissionIDs)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*roleRepository.AddPermissions").
			Int64("role_id", roleID).
			Msg("error assigning permissions")
		if postgresError(err) == pgerrcode.ForeignKeyViolation {
			return nil, ErrInvalidReference
		}
		return nil, err
	}
	return missing, nil
}
