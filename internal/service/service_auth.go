package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/internal/crypto"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/store"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// authService is the concrete implementation of AuthService.
// It checks credentials against the UserRepository and delegates every
// session state change to the SessionService.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// sessions owns session creation, rotation and revocation.
	sessions SessionService

	// hasher hashes passwords and verifies passwords and refresh tokens.
	hasher crypto.Hasher

	// issuer decodes the tokens presented by clients.
	issuer crypto.TokenIssuer

	now func() time.Time

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(
	userRepository store.UserRepository,
	sessions SessionService,
	hasher crypto.Hasher,
	issuer crypto.TokenIssuer,
	logger *logger.Logger,
) AuthService {
	return &authService{
		userRepository: userRepository,
		sessions:       sessions,
		hasher:         hasher,
		issuer:         issuer,
		now:            time.Now,
		logger:         logger,
	}
}

// Register creates a local account and opens its first session.
//
// Returns the persisted user with a fresh token pair or:
//   - ErrUserAlreadyExists if the email or username is taken.
//   - A wrapped error if hashing, persistence or session creation fails.
func (a *authService) Register(ctx context.Context, request models.RegisterRequest, device models.DeviceInfo) (models.RegisterResult, error) {
	log := logger.FromContext(ctx)

	passwordHash, err := a.hasher.Hash(ctx, request.Password)
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Msg("password hashing ended with error")
		return models.RegisterResult{}, fmt.Errorf("password hashing ended with error: %w", err)
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return models.RegisterResult{}, fmt.Errorf("error generating user id: %w", err)
	}

	user, err := a.userRepository.Create(ctx, models.UserCreate{
		ID:           userID,
		Email:        request.Email,
		Username:     request.Username,
		Name:         request.Name,
		PasswordHash: &passwordHash,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			log.Info().Str("email", request.Email).Msg("registration with taken email or username")
			return models.RegisterResult{}, ErrUserAlreadyExists
		}
		log.Err(err).Str("func", "*authService.Register").Msg("user creation ended with error")
		return models.RegisterResult{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	pair, _, err := a.sessions.InitSession(ctx, user.ID, device)
	if err != nil {
		return models.RegisterResult{}, fmt.Errorf("session initialization ended with error: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return models.RegisterResult{User: user, Tokens: pair}, nil
}

// Login verifies the password of the account registered under
// request.Email and opens a new session.
//
// Returns a fresh token pair or:
//   - ErrUserNotFound if no account uses the email.
//   - ErrUserPasswordNotConfigured if the account only signs in through OAuth.
//   - ErrInvalidPassword if the password does not match.
//   - ErrInvalidCredentials if the account is deactivated.
func (a *authService) Login(ctx context.Context, request models.LoginRequest, device models.DeviceInfo) (models.TokenPair, error) {
	log := logger.FromContext(ctx)

	user, found, err := a.userRepository.GetByEmail(ctx, request.Email)
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Msg("user search by email failed")
		return models.TokenPair{}, fmt.Errorf("user search by email failed: %w", err)
	}
	if !found {
		return models.TokenPair{}, ErrUserNotFound
	}

	if !user.HasPassword() {
		return models.TokenPair{}, ErrUserPasswordNotConfigured
	}

	ok, err := a.hasher.Verify(ctx, request.Password, *user.PasswordHash)
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Str("user_id", user.ID.String()).Msg("password verification ended with error")
		return models.TokenPair{}, fmt.Errorf("password verification ended with error: %w", err)
	}
	if !ok {
		log.Info().Str("user_id", user.ID.String()).Msg("wrong password")
		return models.TokenPair{}, ErrInvalidPassword
	}

	if !user.CanLogin() {
		return models.TokenPair{}, ErrInvalidCredentials
	}

	a.rehashPassword(ctx, user, request.Password)

	pair, _, err := a.sessions.InitSession(ctx, user.ID, device)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("session initialization ended with error: %w", err)
	}

	return pair, nil
}

// RefreshSession rotates the refresh token of session under its row lock.
// The presented token must decode for this user and session, match the
// stored hash and come from a device with the recorded fingerprint.
func (a *authService) RefreshSession(ctx context.Context, user models.User, session models.Session, request models.RefreshRequest, device models.DeviceInfo) (models.TokenPair, error) {
	check := func(ctx context.Context, current models.Session) error {
		identity, err := a.issuer.DecodeRefreshToken(request.RefreshToken)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSession, err)
		}
		if identity.UserID != user.ID || identity.SessionID != current.ID || current.UserID != user.ID {
			return ErrInvalidSession
		}

		ok, err := a.hasher.Verify(ctx, request.RefreshToken, current.RefreshTokenHash)
		if errors.Is(err, crypto.ErrMalformedHash) {
			return fmt.Errorf("%w: %w", ErrInvalidSession, err)
		}
		if err != nil {
			return fmt.Errorf("refresh token verification ended with error: %w", err)
		}
		if !ok {
			return ErrInvalidSession
		}

		if current.DeviceInfo.Fingerprint() != device.Fingerprint() {
			logger.FromContext(ctx).Warn().
				Str("session_id", current.ID.String()).
				Str("recorded", current.DeviceInfo.Fingerprint()).
				Str("presented", device.Fingerprint()).
				Msg("device fingerprint mismatch")
			return ErrInvalidSession
		}
		return nil
	}

	pair, _, err := a.sessions.Rotate(ctx, session.ID, check)
	if err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// ResolveRefreshToken loads the user and the session a refresh token was
// issued for.
//
// Returns:
//   - ErrSessionExpired if the token lifetime has elapsed.
//   - ErrInvalidCredentials if the token cannot be decoded, the user cannot
//     log in or the session belongs to someone else.
//   - ErrUserNotFound or ErrSessionNotFound if a referenced row is gone.
func (a *authService) ResolveRefreshToken(ctx context.Context, refreshToken string) (models.User, models.Session, error) {
	identity, err := a.issuer.DecodeRefreshToken(refreshToken)
	if errors.Is(err, crypto.ErrTokenExpired) {
		return models.User{}, models.Session{}, ErrSessionExpired
	}
	if err != nil {
		return models.User{}, models.Session{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	return a.loadIdentity(ctx, identity)
}

// LoadCurrentUserSession resolves the user and session behind an access
// token and advances the session's last_used_at.
func (a *authService) LoadCurrentUserSession(ctx context.Context, accessToken string) (models.User, models.Session, error) {
	identity, err := a.issuer.DecodeAccessToken(accessToken)
	if err != nil {
		return models.User{}, models.Session{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	user, session, err := a.loadIdentity(ctx, identity)
	if err != nil {
		return models.User{}, models.Session{}, err
	}

	now := a.now()
	if !session.IsValidAt(now) {
		if session.IsActive() && session.IsExpiredAt(now) {
			if _, err := a.sessions.MarkExpired(ctx, session.ID); err != nil {
				logger.FromContext(ctx).Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to mark session expired")
			}
		}
		return models.User{}, models.Session{}, ErrInvalidSession
	}

	touched, err := a.sessions.MarkUsed(ctx, session)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to mark session used")
		return user, session, nil
	}
	return user, touched, nil
}

// Logout revokes session. Logging out of an already closed session succeeds.
func (a *authService) Logout(ctx context.Context, user models.User, session models.Session) error {
	if session.UserID != user.ID {
		return ErrInvalidCredentials
	}

	if _, err := a.sessions.Revoke(ctx, session.ID); err != nil {
		return fmt.Errorf("logout ended with error: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("user_id", user.ID.String()).
		Str("session_id", session.ID.String()).
		Msg("user logged out")
	return nil
}

func (a *authService) loadIdentity(ctx context.Context, identity models.TokenIdentity) (models.User, models.Session, error) {
	log := logger.FromContext(ctx)

	user, found, err := a.userRepository.GetByID(ctx, identity.UserID)
	if err != nil {
		log.Err(err).Str("func", "*authService.loadIdentity").Msg("user search by id failed")
		return models.User{}, models.Session{}, fmt.Errorf("user search by id failed: %w", err)
	}
	if !found {
		return models.User{}, models.Session{}, ErrUserNotFound
	}
	if !user.CanLogin() {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}

	session, found, err := a.sessions.Get(ctx, identity.SessionID)
	if err != nil {
		return models.User{}, models.Session{}, err
	}
	if !found {
		return models.User{}, models.Session{}, ErrSessionNotFound
	}
	if session.UserID != user.ID {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}

	return user, session, nil
}

// rehashPassword upgrades a hash made with outdated parameters. Failures
// are logged and do not affect the login.
func (a *authService) rehashPassword(ctx context.Context, user models.User, password string) {
	if !a.hasher.NeedsRehash(*user.PasswordHash) {
		return
	}

	log := logger.FromContext(ctx)

	passwordHash, err := a.hasher.Hash(ctx, password)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("password rehash failed")
		return
	}
	if _, _, err = a.userRepository.Update(ctx, user.ID, models.UserPatch{PasswordHash: models.Some(&passwordHash)}); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("storing rehashed password failed")
	}
}
