package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims is the claim set carried by every issued JWT.
//
// It embeds [jwt.RegisteredClaims] for the standard claims (sub, exp, iat,
// iss, aud, jti) and adds the session binding and the token kind.
type TokenClaims struct {
	jwt.RegisteredClaims

	// SessionID is the "sid" claim: the session the token belongs to.
	SessionID string `json:"sid"`

	// Type is the "type" claim. A token is only accepted where its type is expected.
	Type TokenType `json:"type"`
}

// TokenIdentity is what a successfully decoded token proves.
type TokenIdentity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// TokenPair is returned to the client exactly once per login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// BearerTokenType is the token_type value of every issued pair.
const BearerTokenType = "bearer"

// NewTokenPair builds a bearer token pair.
func NewTokenPair(access, refresh string) TokenPair {
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    BearerTokenType,
	}
}
