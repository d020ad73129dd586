package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/internal/validators"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// AuthValidationService normalizes and validates auth requests before they
// reach the wrapped AuthService.
type AuthValidationService struct {
	inner     AuthService
	validator validators.Validator
}

func NewAuthValidationService() AuthServiceWrapper {
	return &AuthValidationService{validator: validators.NewUserValidator()}
}

func (v *AuthValidationService) Wrap(inner AuthService) AuthService {
	v.inner = inner
	return v
}

func (v *AuthValidationService) Register(ctx context.Context, request models.RegisterRequest, device models.DeviceInfo) (models.RegisterResult, error) {
	request.Email = validators.NormalizeEmail(request.Email)
	if err := v.validator.Validate(ctx, request); err != nil {
		return models.RegisterResult{}, invalid(err)
	}
	if request.Username != nil {
		username, err := validators.NormalizeUsername(*request.Username)
		if err != nil {
			return models.RegisterResult{}, invalid(err)
		}
		request.Username = &username
	}

	return v.inner.Register(ctx, request, device)
}

func (v *AuthValidationService) Login(ctx context.Context, request models.LoginRequest, device models.DeviceInfo) (models.TokenPair, error) {
	request.Email = validators.NormalizeEmail(request.Email)
	if err := v.validator.Validate(ctx, request); err != nil {
		return models.TokenPair{}, invalid(err)
	}
	return v.inner.Login(ctx, request, device)
}

func (v *AuthValidationService) RefreshSession(ctx context.Context, user models.User, session models.Session, request models.RefreshRequest, device models.DeviceInfo) (models.TokenPair, error) {
	if err := v.validator.Validate(ctx, request); err != nil {
		return models.TokenPair{}, invalid(err)
	}
	return v.inner.RefreshSession(ctx, user, session, request, device)
}

func (v *AuthValidationService) ResolveRefreshToken(ctx context.Context, refreshToken string) (models.User, models.Session, error) {
	if err := v.validator.Validate(ctx, models.RefreshRequest{RefreshToken: refreshToken}); err != nil {
		return models.User{}, models.Session{}, invalid(err)
	}
	return v.inner.ResolveRefreshToken(ctx, refreshToken)
}

func (v *AuthValidationService) LoadCurrentUserSession(ctx context.Context, accessToken string) (models.User, models.Session, error) {
	if accessToken == "" {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}
	return v.inner.LoadCurrentUserSession(ctx, accessToken)
}

func (v *AuthValidationService) Logout(ctx context.Context, user models.User, session models.Session) error {
	return v.inner.Logout(ctx, user, session)
}

// UserValidationService validates user patches and role id lists.
type UserValidationService struct {
	inner     UserService
	validator validators.Validator
	ids       validators.Validator
}

func NewUserValidationService() UserServiceWrapper {
	return &UserValidationService{
		validator: validators.NewUserValidator(),
		ids:       validators.NewAccessValidator(),
	}
}

func (v *UserValidationService) Wrap(inner UserService) UserService {
	v.inner = inner
	return v
}

func (v *UserValidationService) Create(ctx context.Context, user models.UserCreate) (models.User, error) {
	user.Email = validators.NormalizeEmail(user.Email)
	return v.inner.Create(ctx, user)
}

func (v *UserValidationService) Get(ctx context.Context, id uuid.UUID) (models.User, bool, error) {
	return v.inner.Get(ctx, id)
}

func (v *UserValidationService) GetByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return v.inner.GetByEmail(ctx, validators.NormalizeEmail(email))
}

func (v *UserValidationService) GetWithRoles(ctx context.Context, id uuid.UUID) (models.UserWithRoles, error) {
	return v.inner.GetWithRoles(ctx, id)
}

func (v *UserValidationService) Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (models.User, error) {
	return v.inner.Update(ctx, id, patch)
}

func (v *UserValidationService) UpdateFromRequest(ctx context.Context, id uuid.UUID, request models.UserUpdateRequest) (models.User, error) {
	if email, ok := request.Email.Get(); ok {
		request.Email = models.Some(validators.NormalizeEmail(email))
	}
	if err := v.validator.Validate(ctx, request); err != nil {
		return models.User{}, invalid(err)
	}
	if username, ok := request.Username.Get(); ok && username != nil {
		normalized, err := validators.NormalizeUsername(*username)
		if err != nil {
			return models.User{}, invalid(err)
		}
		request.Username = models.Some(&normalized)
	}

	return v.inner.UpdateFromRequest(ctx, id, request)
}

func (v *UserValidationService) SoftDelete(ctx context.Context, id uuid.UUID) (models.User, error) {
	return v.inner.SoftDelete(ctx, id)
}

func (v *UserValidationService) HardDelete(ctx context.Context, id uuid.UUID) error {
	return v.inner.HardDelete(ctx, id)
}

func (v *UserValidationService) AssignRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error) {
	if err := v.ids.Validate(ctx, models.IDsRequest{IDs: roleIDs}); err != nil {
		return models.UserWithRoles{}, invalid(err)
	}
	return v.inner.AssignRoles(ctx, userID, roleIDs)
}

func (v *UserValidationService) RemoveRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error) {
	if err := v.ids.Validate(ctx, models.IDsRequest{IDs: roleIDs}); err != nil {
		return models.UserWithRoles{}, invalid(err)
	}
	return v.inner.RemoveRoles(ctx, userID, roleIDs)
}

// RoleValidationService validates role payloads.
type RoleValidationService struct {
	inner     RoleService
	validator validators.Validator
}

func NewRoleValidationService() RoleServiceWrapper {
	return &RoleValidationService{validator: validators.NewAccessValidator()}
}

func (v *RoleValidationService) Wrap(inner RoleService) RoleService {
	v.inner = inner
	return v
}

func (v *RoleValidationService) Create(ctx context.Context, role models.RoleCreate) (models.Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if err := v.validator.Validate(ctx, role); err != nil {
		return models.Role{}, invalid(err)
	}
	return v.inner.Create(ctx, role)
}

func (v *RoleValidationService) Get(ctx context.Context, id int64) (models.Role, error) {
	return v.inner.Get(ctx, id)
}

func (v *RoleValidationService) GetWithPermissions(ctx context.Context, id int64) (models.RoleWithPermissions, error) {
	return v.inner.GetWithPermissions(ctx, id)
}

func (v *RoleValidationService) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) (models.RoleWithPermissions, error) {
	if err := v.validator.Validate(ctx, models.IDsRequest{IDs: permissionIDs}); err != nil {
		return models.RoleWithPermissions{}, invalid(err)
	}
	return v.inner.AssignPermissions(ctx, roleID, permissionIDs)
}

// PermissionValidationService normalizes and validates permission payloads.
type PermissionValidationService struct {
	inner     PermissionService
	validator validators.Validator
}

func NewPermissionValidationService() PermissionServiceWrapper {
	return &PermissionValidationService{validator: validators.NewAccessValidator()}
}

func (v *PermissionValidationService) Wrap(inner PermissionService) PermissionService {
	v.inner = inner
	return v
}

func (v *PermissionValidationService) Create(ctx context.Context, permission models.PermissionCreate) (models.Permission, error) {
	permission.Name = validators.NormalizePermissionName(permission.Name)
	if err := v.validator.Validate(ctx, permission); err != nil {
		return models.Permission{}, invalid(err)
	}
	return v.inner.Create(ctx, permission)
}

func (v *PermissionValidationService) Get(ctx context.Context, id int64) (models.Permission, error) {
	return v.inner.Get(ctx, id)
}

func (v *PermissionValidationService) GetWithRoles(ctx context.Context, id int64) (models.PermissionWithRoles, error) {
	return v.inner.GetWithRoles(ctx, id)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
}
