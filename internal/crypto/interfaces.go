package crypto

import (
	"context"

	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// Hasher turns secrets (passwords, refresh tokens) into one-way encoded
// hashes and checks candidates against them.
type Hasher interface {
	// Hash returns a self-describing encoded hash of secret.
	Hash(ctx context.Context, secret string) (string, error)

	// Verify reports whether secret matches encoded. A mismatch is (false, nil);
	// a malformed encoded value is (false, ErrMalformedHash).
	Verify(ctx context.Context, secret, encoded string) (bool, error)

	// NeedsRehash reports whether encoded was produced with parameters that
	// differ from the current ones.
	NeedsRehash(encoded string) bool
}

// TokenIssuer signs and decodes the access and refresh tokens bound to a
// user session.
type TokenIssuer interface {
	CreateAccessToken(userID, sessionID uuid.UUID) (string, error)
	CreateRefreshToken(userID, sessionID uuid.UUID) (string, error)

	// DecodeAccessToken returns ErrTokenExpired for a well-signed token past
	// its expiry and ErrTokenInvalid for anything else that is not an access
	// token issued by this service.
	DecodeAccessToken(token string) (models.TokenIdentity, error)
	DecodeRefreshToken(token string) (models.TokenIdentity, error)
}

// Executor runs fn somewhere else and waits for it. *workers.Pool
// satisfies it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}
