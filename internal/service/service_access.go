package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/store"
	"github.com/pedro-fs-garcia/filmmash-api/internal/validators"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

type roleService struct {
	roleRepository store.RoleRepository
	logger         *logger.Logger
}

func NewRoleService(roleRepository store.RoleRepository, logger *logger.Logger) RoleService {
	return &roleService{roleRepository: roleRepository, logger: logger}
}

func (r *roleService) Create(ctx context.Context, role models.RoleCreate) (models.Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if !models.RoleNamePattern.MatchString(role.Name) {
		return models.Role{}, fmt.Errorf("%w: role name %q", ErrInvalidDataProvided, role.Name)
	}

	created, err := r.roleRepository.Create(ctx, role)
	if errors.Is(err, store.ErrRoleAlreadyExists) {
		return models.Role{}, fmt.Errorf("%w: role %q", ErrResourceAlreadyExists, role.Name)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*roleService.Create").Msg("role creation ended with error")
		return models.Role{}, fmt.Errorf("role creation ended with error: %w", err)
	}
	return created, nil
}

func (r *roleService) Get(ctx context.Context, id int64) (models.Role, error) {
	role, found, err := r.roleRepository.GetByID(ctx, id)
	if err != nil {
		return models.Role{}, fmt.Errorf("role search ended with error: %w", err)
	}
	if !found {
		return models.Role{}, fmt.Errorf("%w: role %d", ErrResourceNotFound, id)
	}
	return role, nil
}

func (r *roleService) GetWithPermissions(ctx context.Context, id int64) (models.RoleWithPermissions, error) {
	role, found, err := r.roleRepository.GetWithPermissions(ctx, id)
	if err != nil {
		return models.RoleWithPermissions{}, fmt.Errorf("role search ended with error: %w", err)
	}
	if !found {
		return models.RoleWithPermissions{}, fmt.Errorf("%w: role %d", ErrResourceNotFound, id)
	}
	return role, nil
}

func (r *roleService) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) (models.RoleWithPermissions, error) {
	missing, err := r.roleRepository.AddPermissions(ctx, roleID, permissionIDs)
	if errors.Is(err, store.ErrInvalidReference) {
		return models.RoleWithPermissions{}, fmt.Errorf("%w: role %d", ErrResourceNotFound, roleID)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*roleService.AssignPermissions").Int64("role_id", roleID).Msg("permission assignment ended with error")
		return models.RoleWithPermissions{}, fmt.Errorf("permission assignment ended with error: %w", err)
	}
	if len(missing) > 0 {
		return models.RoleWithPermissions{}, fmt.Errorf("%w: permissions %v", ErrResourceNotFound, missing)
	}
	return r.GetWithPermissions(ctx, roleID)
}

type permissionService struct {
	permissionRepository store.PermissionRepository
	logger               *logger.Logger
}

func NewPermissionService(permissionRepository store.PermissionRepository, logger *logger.Logger) PermissionService {
	return &permissionService{permissionRepository: permissionRepository, logger: logger}
}

// Create stores a permission named "<resource>:<action>". The name is
// normalized first, so "Movies:Rate " and "movies:rate" are the same
// permission.
func (p *permissionService) Create(ctx context.Context, permission models.PermissionCreate) (models.Permission, error) {
	permission.Name = validators.NormalizePermissionName(permission.Name)
	if !models.PermissionNamePattern.MatchString(permission.Name) {
		return models.Permission{}, fmt.Errorf("%w: permission name %q", ErrInvalidDataProvided, permission.Name)
	}

	created, err := p.permissionRepository.Create(ctx, permission)
	if errors.Is(err, store.ErrPermissionAlreadyExists) {
		return models.Permission{}, fmt.Errorf("%w: permission %q", ErrResourceAlreadyExists, permission.Name)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*permissionService.Create").Msg("permission creation ended with error")
		return models.Permission{}, fmt.Errorf("permission creation ended with error: %w", err)
	}
	return created, nil
}

func (p *permissionService) Get(ctx context.Context, id int64) (models.Permission, error) {
	permission, found, err := p.permissionRepository.GetByID(ctx, id)
	if err != nil {
		return models.Permission{}, fmt.Errorf("permission search ended with error: %w", err)
	}
	if !found {
		return models.Permission{}, fmt.Errorf("%w: permission %d", ErrResourceNotFound, id)
	}
	return permission, nil
}

func (p *permissionService) GetWithRoles(ctx context.Context, id int64) (models.PermissionWithRoles, error) {
	permission, found, err := p.permissionRepository.GetWithRoles(ctx, id)
	if err != nil {
		return models.PermissionWithRoles{}, fmt.Errorf("permission search ended with error: %w", err)
	}
	if !found {
		return models.PermissionWithRoles{}, fmt.Errorf("%w: permission %d", ErrResourceNotFound, id)
	}
	return permission, nil
}
