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

// sessionRepository is the PostgreSQL-backed implementation of
// [SessionRepository].
//
// The per-user session cap is enforced inside a transaction that first locks
// the owning user row, so concurrent logins of one user are serialized while
// logins of different users proceed in parallel. Eviction candidates are
// selected with FOR UPDATE SKIP LOCKED so a session being refreshed is never
// waited on.
type sessionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSessionRepository constructs a [SessionRepository] backed by the
// provided database connection and logger.
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an active session without enforcing the per-user cap.
func (r *sessionRepository) Create(ctx context.Context, session models.SessionCreate) (models.Session, error) {
	log := logger.FromContext(ctx)

	created, err := insertSession(ctx, r.db, session)
	if err != nil {
		log.Err(err).
			Str("func", "*sessionRepository.Create").
			Str("user_id", session.UserID.String()).
			Msg("error creating session")
		return models.Session{}, err
	}

	return created, nil
}

func (r *sessionRepository) CreateWithinLimit(ctx context.Context, session models.SessionCreate, limit int) (models.SessionCreated, error) {
	log := logger.FromContext(ctx).WithIdentity(session.UserID.String(), session.ID.String())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateWithinLimit").Msg("failed to begin transaction")
		return models.SessionCreated{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var lockedUserID uuid.UUID
	err = tx.QueryRowContext(ctx, lockUserForSessions, session.UserID).Scan(&lockedUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionCreated{}, ErrUserNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateWithinLimit").Msg("failed to lock user row")
		return models.SessionCreated{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	evicted, err := evictOverLimit(ctx, tx, session.UserID, limit)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateWithinLimit").Msg("failed to evict sessions")
		return models.SessionCreated{}, err
	}

	created, err := insertSession(ctx, tx, session)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateWithinLimit").Msg("failed to insert session")
		return models.SessionCreated{}, err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*sessionRepository.CreateWithinLimit").Msg("failed to commit transaction")
		return models.SessionCreated{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	if len(evicted) > 0 {
		log.Info().Int("evicted", len(evicted)).Msg("session limit reached, least recently used sessions revoked")
	}
	return models.SessionCreated{Session: created, Evicted: evicted}, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Session, bool, error) {
	return r.findOne(ctx, "*sessionRepository.GetByID", findSessionByID, id)
}

func (r *sessionRepository) GetByRefreshTokenHash(ctx context.Context, hash string) (models.Session, bool, error) {
	return r.findOne(ctx, "*sessionRepository.GetByRefreshTokenHash", findSessionByRefreshTokenHash, hash)
}

// GetActiveByUserID returns the active, unexpired sessions of the user, most
// recently used first.
func (r *sessionRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, findActiveSessionsByUserID, userID)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.GetActiveByUserID").Str("user_id", userID.String()).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Err(err).Str("func", "*sessionRepository.GetActiveByUserID").Msg("failed to scan session row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return sessions, nil
}

func (r *sessionRepository) CountActiveForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, countActiveSessions, userID).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionRepository.CountActiveForUser").Msg("failed to count sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return count, nil
}

// Update applies the present fields of patch to an active session. When the
// row exists but is already expired, invalid or revoked nothing is written
// and the stored session is returned unchanged.
func (r *sessionRepository) Update(ctx context.Context, id uuid.UUID, patch models.SessionPatch) (models.Session, bool, error) {
	log := logger.FromContext(ctx)

	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	updated, applied, err := updateSession(ctx, r.db, id, patch)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.Update").Str("session_id", id.String()).Msg("failed to update session")
		return models.Session{}, false, err
	}
	if !applied {
		return r.GetByID(ctx, id)
	}

	return updated, true, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, id uuid.UUID) (models.Session, bool, error) {
	return r.transition(ctx, id, models.SessionStatusRevoked)
}

func (r *sessionRepository) MarkExpired(ctx context.Context, id uuid.UUID) (models.Session, bool, error) {
	return r.transition(ctx, id, models.SessionStatusExpired)
}

func (r *sessionRepository) EvictOldestIfOverLimit(ctx context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	evicted, err := evictOverLimit(ctx, tx, userID, limit)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.EvictOldestIfOverLimit").Str("user_id", userID.String()).Msg("failed to evict sessions")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return evicted, nil
}

func (r *sessionRepository) LockAndMutate(ctx context.Context, id uuid.UUID, mutate models.SessionMutation) (models.Session, bool, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.LockAndMutate").Msg("failed to begin transaction")
		return models.Session{}, false, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	current, err := scanSession(tx.QueryRowContext(ctx, lockSessionByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.LockAndMutate").Str("session_id", id.String()).Msg("failed to lock session")
		return models.Session{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	patch, mutateErr := mutate(current)

	result := current
	if !patch.IsEmpty() {
		updated, applied, err := updateSession(ctx, tx, id, patch)
		if err != nil {
			log.Err(err).Str("func", "*sessionRepository.LockAndMutate").Str("session_id", id.String()).Msg("failed to apply session patch")
			return models.Session{}, false, err
		}
		if applied {
			result = updated
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*sessionRepository.LockAndMutate").Msg("failed to commit transaction")
		return models.Session{}, false, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return result, true, mutateErr
}

func (r *sessionRepository) transition(ctx context.Context, id uuid.UUID, to models.SessionStatus) (models.Session, bool, error) {
	session, err := scanSession(r.db.QueryRowContext(ctx, transitionSession, id, string(to)))
	if errors.Is(err, sql.ErrNoRows) {
		// missing or already terminal
		return r.GetByID(ctx, id)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*sessionRepository.transition").
			Str("session_id", id.String()).
			Str("status", string(to)).
			Msg("failed to change session status")
		return models.Session{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return session, true, nil
}

func (r *sessionRepository) findOne(ctx context.Context, fn, query string, arg any) (models.Session, bool, error) {
	session, err := scanSession(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("error querying session")
		return models.Session{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return session, true, nil
}

// evictOverLimit marks lapsed sessions expired, then revokes the least
// recently used active sessions so that fewer than limit remain.
func evictOverLimit(ctx context.Context, q queryer, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit < 1 {
		limit = 1
	}

	if _, err := q.ExecContext(ctx, expireStaleSessions, userID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	var count int
	if err := q.QueryRowContext(ctx, countActiveSessions, userID).Scan(&count); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if count < limit {
		return nil, nil
	}

	rows, err := q.QueryContext(ctx, selectSessionsToEvict, userID, count-limit+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := buildRevokeSessionsQuery(ids)
	if err != nil {
		return nil, err
	}
	if _, err = q.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return ids, nil
}

func insertSession(ctx context.Context, q queryer, s models.SessionCreate) (models.Session, error) {
	created, err := scanSession(q.QueryRowContext(ctx, createSession, s.ID, s.UserID, s.RefreshTokenHash, s.DeviceInfo, s.ExpiresAt))
	if err != nil {
		return models.Session{}, translateSessionError(err)
	}
	return created, nil
}

// updateSession reports applied=false when no row matched the update.
func updateSession(ctx context.Context, q queryer, id uuid.UUID, patch models.SessionPatch) (models.Session, bool, error) {
	query, args, err := buildSessionUpdateQuery(id, patch)
	if err != nil {
		return models.Session{}, false, err
	}

	updated, err := scanSession(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, translateSessionError(err)
	}
	return updated, true, nil
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&s.Status,
		&s.DeviceInfo,
		&s.ExpiresAt,
		&s.CreatedAt,
		&s.LastUsedAt,
		&s.RevokedAt,
	)
	return s, err
}

func translateSessionError(err error) error {
	switch postgresError(err) {
	case pgerrcode.UniqueViolation:
		return ErrRefreshTokenCollision
	case pgerrcode.ForeignKeyViolation:
		return ErrUserNotFound
	default:
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
}
