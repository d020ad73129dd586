package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/internal/crypto"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/store"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

type userService struct {
	userRepository store.UserRepository
	hasher         crypto.Hasher

	logger *logger.Logger
}

func NewUserService(userRepository store.UserRepository, hasher crypto.Hasher, logger *logger.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		hasher:         hasher,
		logger:         logger,
	}
}

func (u *userService) Create(ctx context.Context, user models.UserCreate) (models.User, error) {
	if !user.User().HasLoginMethod() {
		return models.User{}, ErrUserCannotLoseLoginMethod
	}
	if user.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return models.User{}, fmt.Errorf("error generating user id: %w", err)
		}
		user.ID = id
	}

	created, err := u.userRepository.Create(ctx, user)
	if err != nil {
		return models.User{}, u.translate(ctx, "*userService.Create", err)
	}
	return created, nil
}

func (u *userService) Get(ctx context.Context, id uuid.UUID) (models.User, bool, error) {
	user, found, err := u.userRepository.GetByID(ctx, id)
	if err != nil {
		return models.User{}, false, u.translate(ctx, "*userService.Get", err)
	}
	return user, found, nil
}

func (u *userService) GetByEmail(ctx context.Context, email string) (models.User, bool, error) {
	user, found, err := u.userRepository.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, false, u.translate(ctx, "*userService.GetByEmail", err)
	}
	return user, found, nil
}

func (u *userService) GetWithRoles(ctx context.Context, id uuid.UUID) (models.UserWithRoles, error) {
	user, found, err := u.userRepository.GetWithRoles(ctx, id)
	if err != nil {
		return models.UserWithRoles{}, u.translate(ctx, "*userService.GetWithRoles", err)
	}
	if !found {
		return models.UserWithRoles{}, ErrUserNotFound
	}
	return user, nil
}

// Update applies patch to the stored user. The candidate state is checked
// before anything is written: a user keeps a password or a complete OAuth
// pair at all times.
func (u *userService) Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (models.User, error) {
	current, found, err := u.userRepository.GetByID(ctx, id)
	if err != nil {
		return models.User{}, u.translate(ctx, "*userService.Update", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	if patch.IsEmpty() {
		return current, nil
	}

	candidate := patch.Apply(current)
	if (candidate.OAuthProvider == nil) != (candidate.OAuthProviderID == nil) {
		return models.User{}, fmt.Errorf("%w: oauth provider and provider id go together", ErrInvalidDataProvided)
	}
	if !candidate.HasLoginMethod() {
		logger.FromContext(ctx).Info().Str("user_id", id.String()).Msg("update would remove the last login method")
		return models.User{}, ErrUserCannotLoseLoginMethod
	}

	updated, found, err := u.userRepository.Update(ctx, id, patch)
	if err != nil {
		return models.User{}, u.translate(ctx, "*userService.Update", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	return updated, nil
}

func (u *userService) UpdateFromRequest(ctx context.Context, id uuid.UUID, request models.UserUpdateRequest) (models.User, error) {
	patch := models.UserPatch{
		Email:           request.Email,
		Username:        request.Username,
		Name:            request.Name,
		OAuthProvider:   request.OAuthProvider,
		OAuthProviderID: request.OAuthProviderID,
		IsActive:        request.IsActive,
		IsVerified:      request.IsVerified,
	}

	if password, ok := request.Password.Get(); ok {
		if password == nil {
			patch.PasswordHash = models.Some[*string](nil)
		} else {
			passwordHash, err := u.hasher.Hash(ctx, *password)
			if err != nil {
				return models.User{}, fmt.Errorf("password hashing ended with error: %w", err)
			}
			patch.PasswordHash = models.Some(&passwordHash)
		}
	}

	return u.Update(ctx, id, patch)
}

func (u *userService) SoftDelete(ctx context.Context, id uuid.UUID) (models.User, error) {
	user, found, err := u.userRepository.SoftDelete(ctx, id)
	if err != nil {
		return models.User{}, u.translate(ctx, "*userService.SoftDelete", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (u *userService) HardDelete(ctx context.Context, id uuid.UUID) error {
	deleted, err := u.userRepository.HardDelete(ctx, id)
	if err != nil {
		return u.translate(ctx, "*userService.HardDelete", err)
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

// AssignRoles links roleIDs to the user. Nothing is linked when any role is
// missing; the error lists the missing ids.
func (u *userService) AssignRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error) {
	missing, err := u.userRepository.AddRoles(ctx, userID, roleIDs)
	if err != nil {
		return models.UserWithRoles{}, u.translate(ctx, "*userService.AssignRoles", err)
	}
	if len(missing) > 0 {
		return models.UserWithRoles{}, fmt.Errorf("%w: roles %v", ErrResourceNotFound, missing)
	}
	return u.GetWithRoles(ctx, userID)
}

func (u *userService) RemoveRoles(ctx context.Context, userID uuid.UUID, roleIDs []int64) (models.UserWithRoles, error) {
	if _, err := u.userRepository.RemoveRoles(ctx, userID, roleIDs); err != nil {
		return models.UserWithRoles{}, u.translate(ctx, "*userService.RemoveRoles", err)
	}
	return u.GetWithRoles(ctx, userID)
}

func (u *userService) translate(ctx context.Context, fn string, err error) error {
	switch {
	case errors.Is(err, store.ErrUserAlreadyExists):
		return ErrUserAlreadyExists
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrUserLoginMethodRequired):
		// a concurrent write removed the other login method first
		logger.FromContext(ctx).Info().Str("func", fn).Msg("write rejected by the login method constraint")
		return ErrUserCannotLoseLoginMethod
	case errors.Is(err, store.ErrUserOAuthPairIncomplete):
		return fmt.Errorf("%w: oauth provider and provider id go together", ErrInvalidDataProvided)
	}
	logger.FromContext(ctx).Err(err).Str("func", fn).Msg("user storage call ended with error")
	return fmt.Errorf("user storage call ended with error: %w", err)
}
