package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/internal/adapter"
	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/internal/crypto"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/store"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// Reasons attached to published session events.
const (
	reasonSessionLimit    = "max_active_sessions"
	reasonRefreshRejected = "refresh_rejected"
	reasonLogout          = "logout"
)

// sessionService is the concrete implementation of SessionService.
type sessionService struct {
	sessions  store.SessionRepository
	hasher    crypto.Hasher
	issuer    crypto.TokenIssuer
	publisher adapter.SessionEventPublisher

	// sessionTTL bounds a session's whole lifetime, counted from creation.
	// Rotation never moves expires_at past created_at + sessionTTL.
	sessionTTL time.Duration

	// maxActive caps the active sessions of one user.
	maxActive int

	// touchInterval throttles last_used_at writes made by MarkUsed.
	touchInterval time.Duration

	now    func() time.Time
	logger *logger.Logger
}

// NewSessionService constructs a SessionService. A nil publisher disables
// session events.
func NewSessionService(
	sessions store.SessionRepository,
	hasher crypto.Hasher,
	issuer crypto.TokenIssuer,
	publisher adapter.SessionEventPublisher,
	cfg config.App,
	logger *logger.Logger,
) SessionService {
	if publisher == nil {
		publisher = adapter.NewNoopSessionEventPublisher(logger)
	}

	return &sessionService{
		sessions:      sessions,
		hasher:        hasher,
		issuer:        issuer,
		publisher:     publisher,
		sessionTTL:    cfg.SessionTTL(),
		maxActive:     cfg.MaxActiveSessions,
		touchInterval: cfg.SessionTouchInterval,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *sessionService) InitSession(ctx context.Context, userID uuid.UUID, device models.DeviceInfo) (models.TokenPair, models.Session, error) {
	log := logger.FromContext(ctx)

	sessionID, err := uuid.NewV7()
	if err != nil {
		return models.TokenPair{}, models.Session{}, fmt.Errorf("error generating session id: %w", err)
	}

	pair, refreshHash, err := s.issuePair(ctx, userID, sessionID)
	if err != nil {
		log.Err(err).Str("func", "*sessionService.InitSession").Str("user_id", userID.String()).Msg("error issuing token pair")
		return models.TokenPair{}, models.Session{}, err
	}

	created, err := s.sessions.CreateWithinLimit(ctx, models.SessionCreate{
		ID:               sessionID,
		UserID:           userID,
		RefreshTokenHash: refreshHash,
		DeviceInfo:       device,
		ExpiresAt:        s.now().Add(s.sessionTTL),
	}, s.maxActive)
	if err != nil {
		log.Err(err).Str("func", "*sessionService.InitSession").Str("user_id", userID.String()).Msg("session creation ended with error")
		if errors.Is(err, store.ErrUserNotFound) {
			return models.TokenPair{}, models.Session{}, ErrUserNotFound
		}
		return models.TokenPair{}, models.Session{}, fmt.Errorf("session creation ended with error: %w", err)
	}

	for _, evictedID := range created.Evicted {
		s.publish(ctx, models.SessionEvent{
			Type:       models.SessionEventEvicted,
			SessionID:  evictedID,
			UserID:     userID,
			Reason:     reasonSessionLimit,
			OccurredAt: s.now().UTC(),
		})
	}
	s.publish(ctx, models.NewSessionEvent(models.SessionEventCreated, created.Session))

	log.Info().
		Str("user_id", userID.String()).
		Str("session_id", sessionID.String()).
		Int("evicted", len(created.Evicted)).
		Msg("session created")

	return pair, created.Session, nil
}

func (s *sessionService) Refresh(ctx context.Context, session models.Session, newRefreshTokenHash string, extension time.Duration) (models.Session, error) {
	now := s.now()
	if err := s.checkRotatable(session, now); err != nil {
		return models.Session{}, err
	}

	updated, found, err := s.sessions.Update(ctx, session.ID, s.rotationPatch(session, newRefreshTokenHash, now, extension))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionService.Refresh").Str("session_id", session.ID.String()).Msg("error refreshing session")
		return models.Session{}, fmt.Errorf("error refreshing session: %w", err)
	}
	if !found {
		return models.Session{}, ErrSessionNotFound
	}
	if updated.RefreshTokenHash != newRefreshTokenHash {
		// a concurrent revoke won
		return updated, ErrInvalidSession
	}

	s.publish(ctx, models.NewSessionEvent(models.SessionEventRotated, updated))
	return updated, nil
}

func (s *sessionService) Rotate(ctx context.Context, sessionID uuid.UUID, check RotationCheck) (models.TokenPair, models.Session, error) {
	log := logger.FromContext(ctx)

	var (
		pair  models.TokenPair
		event models.SessionEventType
	)

	session, found, err := s.sessions.LockAndMutate(ctx, sessionID, func(current models.Session) (models.SessionPatch, error) {
		now := s.now()
		if err := s.checkRotatable(current, now); err != nil {
			if errors.Is(err, ErrSessionExpired) && current.IsActive() {
				return models.SessionPatch{Status: models.Some(models.SessionStatusExpired)}, err
			}
			return models.SessionPatch{}, err
		}

		if err := check(ctx, current); err != nil {
			if errors.Is(err, ErrInvalidSession) {
				event = models.SessionEventRevoked
				return models.SessionPatch{Status: models.Some(models.SessionStatusRevoked)}, err
			}
			return models.SessionPatch{}, err
		}

		issued, refreshHash, err := s.issuePair(ctx, current.UserID, current.ID)
		if err != nil {
			return models.SessionPatch{}, err
		}
		pair = issued
		event = models.SessionEventRotated
		return s.rotationPatch(current, refreshHash, now, s.sessionTTL), nil
	})
	if !found {
		if err != nil {
			log.Err(err).Str("func", "*sessionService.Rotate").Str("session_id", sessionID.String()).Msg("error rotating session")
			return models.TokenPair{}, models.Session{}, fmt.Errorf("error rotating session: %w", err)
		}
		return models.TokenPair{}, models.Session{}, ErrSessionNotFound
	}

	switch event {
	case models.SessionEventRevoked:
		revoked := models.NewSessionEvent(event, session)
		revoked.Reason = reasonRefreshRejected
		s.publish(ctx, revoked)
		log.Warn().
			Str("user_id", session.UserID.String()).
			Str("session_id", session.ID.String()).
			Msg("refresh rejected, session revoked")
	case models.SessionEventRotated:
		if err == nil {
			s.publish(ctx, models.NewSessionEvent(event, session))
		}
	}

	if err != nil {
		return models.TokenPair{}, session, err
	}
	return pair, session, nil
}

func (s *sessionService) Revoke(ctx context.Context, sessionID uuid.UUID) (models.Session, error) {
	current, found, err := s.Get(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if !found {
		return models.Session{}, ErrSessionNotFound
	}
	if current.Status.IsTerminal() {
		return current, nil
	}

	revoked, found, err := s.sessions.Revoke(ctx, sessionID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionService.Revoke").Str("session_id", sessionID.String()).Msg("error revoking session")
		return models.Session{}, fmt.Errorf("error revoking session: %w", err)
	}
	if !found {
		return models.Session{}, ErrSessionNotFound
	}

	if revoked.IsRevoked() {
		event := models.NewSessionEvent(models.SessionEventRevoked, revoked)
		event.Reason = reasonLogout
		s.publish(ctx, event)
	}
	return revoked, nil
}

func (s *sessionService) MarkExpired(ctx context.Context, sessionID uuid.UUID) (models.Session, error) {
	expired, found, err := s.sessions.MarkExpired(ctx, sessionID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionService.MarkExpired").Str("session_id", sessionID.String()).Msg("error expiring session")
		return models.Session{}, fmt.Errorf("error expiring session: %w", err)
	}
	if !found {
		return models.Session{}, ErrSessionNotFound
	}
	return expired, nil
}

func (s *sessionService) MarkUsed(ctx context.Context, session models.Session) (models.Session, error) {
	now := s.now()
	if !session.IsActive() || now.Sub(session.LastUsedAt) < s.touchInterval {
		return session, nil
	}

	touched, found, err := s.sessions.Update(ctx, session.ID, models.SessionPatch{LastUsedAt: models.Some(now)})
	if err != nil {
		return session, fmt.Errorf("error touching session: %w", err)
	}
	if !found {
		return models.Session{}, ErrSessionNotFound
	}
	return touched, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (models.Session, bool, error) {
	session, found, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionService.Get").Str("session_id", sessionID.String()).Msg("error loading session")
		return models.Session{}, false, fmt.Errorf("error loading session: %w", err)
	}
	return session, found, nil
}

// issuePair signs both tokens for the session and hashes the refresh token.
func (s *sessionService) issuePair(ctx context.Context, userID, sessionID uuid.UUID) (models.TokenPair, string, error) {
	access, err := s.issuer.CreateAccessToken(userID, sessionID)
	if err != nil {
		return models.TokenPair{}, "", fmt.Errorf("error creating access token: %w", err)
	}
	refresh, err := s.issuer.CreateRefreshToken(userID, sessionID)
	if err != nil {
		return models.TokenPair{}, "", fmt.Errorf("error creating refresh token: %w", err)
	}
	refreshHash, err := s.hasher.Hash(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, "", fmt.Errorf("error hashing refresh token: %w", err)
	}
	return models.NewTokenPair(access, refresh), refreshHash, nil
}

// publish never fails the caller: events are a side channel.
func (s *sessionService) publish(ctx context.Context, event models.SessionEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("event", string(event.Type)).
			Str("session_id", event.SessionID.String()).
			Msg("failed to publish session event")
	}
}

// checkRotatable rejects terminal sessions and sessions past either their
// expires_at or their absolute deadline.
func (s *sessionService) checkRotatable(session models.Session, now time.Time) error {
	switch {
	case session.Status == models.SessionStatusExpired:
		return ErrSessionExpired
	case session.Status.IsTerminal():
		return ErrInvalidSession
	case session.IsExpiredAt(now):
		return ErrSessionExpired
	case s.sessionTTL > 0 && !now.Before(s.deadline(session)):
		return ErrSessionExpired
	}
	return nil
}

// deadline is the latest expires_at a session may ever carry.
func (s *sessionService) deadline(session models.Session) time.Time {
	return session.CreatedAt.Add(s.sessionTTL)
}

func (s *sessionService) rotationPatch(session models.Session, refreshHash string, now time.Time, extension time.Duration) models.SessionPatch {
	expiresAt := now.Add(extension)
	if deadline := s.deadline(session); s.sessionTTL > 0 && expiresAt.After(deadline) {
		expiresAt = deadline
	}

	return models.SessionPatch{
		RefreshTokenHash: models.Some(refreshHash),
		Status:           models.Some(models.SessionStatusActive),
		LastUsedAt:       models.Some(now),
		ExpiresAt:        models.Some(expiresAt),
	}
}
