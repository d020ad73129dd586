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

type permissionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewPermissionRepository constructs a PostgreSQL-backed [PermissionRepository].
func NewPermissionRepository(db *DB, logger *logger.Logger) PermissionRepository {
	logger.Debug().Msg("creating permission repository")
	return &permissionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *permissionRepository) Create(ctx context.Context, permission models.PermissionCreate) (models.Permission, error) {
	log := logger.FromContext(ctx)

	created, err := scanPermission(r.db.QueryRowContext(ctx, createPermission, permission.Name, permission.Description))
	if err != nil {
		log.Err(err).Str("func", "*permissionRepository.Create").Str("permission", permission.Name).Msg("error creating permission")
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.Permission{}, ErrPermissionAlreadyExists
		}
		return models.Permission{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return created, nil
}

func (r *permissionRepository) GetByID(ctx context.Context, id int64) (models.Permission, bool, error) {
	log := logger.FromContext(ctx)

	permission, err := scanPermission(r.db.QueryRowContext(ctx, findPermissionByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Permission{}, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*permissionRepository.GetByID").Int64("permission_id", id).Msg("error querying permission")
		return models.Permission{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return permission, true, nil
}

func (r *permissionRepository) GetWithRoles(ctx context.Context, id int64) (models.PermissionWithRoles, bool, error) {
	permission, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return models.PermissionWithRoles{}, found, err
	}

	roles, err := queryRoles(ctx, r.db, findRolesByPermissionID, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*permissionRepository.GetWithRoles").
			Int64("permission_id", id).
			Msg("error loading permission roles")
		return models.PermissionWithRoles{}, false, err
	}

	return models.PermissionWithRoles{Permission: permission, Roles: roles}, true, nil
}
