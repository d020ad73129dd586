package crypto

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
)

// ArgonParams are the Argon2id cost parameters used for new hashes.
type ArgonParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// ArgonParamsFromConfig copies the configured cost parameters.
func ArgonParamsFromConfig(cfg config.Argon) ArgonParams {
	return ArgonParams{
		MemoryKiB:   cfg.MemoryKiB,
		Iterations:  cfg.Iterations,
		Parallelism: cfg.Parallelism,
		SaltLength:  cfg.SaltLength,
		KeyLength:   cfg.KeyLength,
	}
}

// argon2Hasher implements [Hasher] with Argon2id and the PHC string format:
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
//
// The key derivation runs on the executor so request goroutines only wait.
type argon2Hasher struct {
	params   ArgonParams
	executor Executor
}

// NewArgon2Hasher builds a [Hasher]. A nil executor runs the derivation on
// the calling goroutine.
func NewArgon2Hasher(params ArgonParams, executor Executor) Hasher {
	if executor == nil {
		executor = inlineExecutor{}
	}
	return &argon2Hasher{params: params, executor: executor}
}

func (h *argon2Hasher) Hash(ctx context.Context, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	var key []byte
	err := h.executor.Do(ctx, func() {
		key = argon2.IDKey([]byte(secret), salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)
	})
	if err != nil {
		return "", fmt.Errorf("hashing secret: %w", err)
	}

	return encodeHash(h.params, salt, key), nil
}

func (h *argon2Hasher) Verify(ctx context.Context, secret, encoded string) (bool, error) {
	params, salt, expected, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	if !withinBounds(params, h.params) {
		return false, ErrMalformedHash
	}

	var key []byte
	err = h.executor.Do(ctx, func() {
		key = argon2.IDKey([]byte(secret), salt, params.Iterations, params.MemoryKiB, params.Parallelism, params.KeyLength)
	})
	if err != nil {
		return false, fmt.Errorf("verifying secret: %w", err)
	}

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func (h *argon2Hasher) NeedsRehash(encoded string) bool {
	params, _, _, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	return params != h.params
}

func encodeHash(p ArgonParams, salt, key []byte) string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key))
}

func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrMalformedHash
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return ArgonParams{}, nil, nil, ErrMalformedHash
	}

	var mem, iter, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return ArgonParams{}, nil, nil, ErrMalformedHash
	}
	if mem == 0 || iter == 0 || par == 0 || par > 255 {
		return ArgonParams{}, nil, nil, ErrMalformedHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return ArgonParams{}, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return ArgonParams{}, nil, nil, ErrMalformedHash
	}

	return ArgonParams{
		MemoryKiB:   mem,
		Iterations:  iter,
		Parallelism: uint8(par),
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(key)),
	}, salt, key, nil
}

// withinBounds rejects stored costs above twice the configured ones and
// salt or key lengths outside sane limits.
func withinBounds(got, limits ArgonParams) bool {
	if got.MemoryKiB > limits.MemoryKiB*2 || got.Iterations > limits.Iterations*2 {
		return false
	}
	if uint32(got.Parallelism) > uint32(limits.Parallelism)*2 {
		return false
	}
	if got.SaltLength < 8 || got.SaltLength > 64 {
		return false
	}
	return got.KeyLength >= 16 && got.KeyLength <= 128
}

type inlineExecutor struct{}

func (inlineExecutor) Do(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}
