package crypto

import "errors"

var (
	ErrMalformedHash = errors.New("malformed encoded hash")
	ErrEmptySecret   = errors.New("secret must not be empty")

	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")

	ErrUnsupportedAlgorithm = errors.New("unsupported token signing algorithm")
	ErrEmptySigningKey      = errors.New("token signing key must not be empty")
)
