package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

var signingMethods = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// TokenSettings configures a [TokenIssuer].
type TokenSettings struct {
	// Issuer is used as both the "iss" and the "aud" claim.
	Issuer     string
	Algorithm  string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenSettingsFromConfig derives token settings from the application config.
func TokenSettingsFromConfig(cfg config.App) TokenSettings {
	return TokenSettings{
		Issuer:     cfg.ProjectName,
		Algorithm:  cfg.JWTAlgorithm,
		SigningKey: cfg.JWTSecretKey,
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	}
}

type jwtIssuer struct {
	settings TokenSettings
	method   jwt.SigningMethod
	key      []byte
	parser   *jwt.Parser
	now      func() time.Time
}

// NewJWTIssuer builds a [TokenIssuer] signing HMAC JWTs.
func NewJWTIssuer(settings TokenSettings) (TokenIssuer, error) {
	method, ok := signingMethods[settings.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, settings.Algorithm)
	}
	if settings.SigningKey == "" {
		return nil, ErrEmptySigningKey
	}

	return &jwtIssuer{
		settings: settings,
		method:   method,
		key:      []byte(settings.SigningKey),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithIssuer(settings.Issuer),
			jwt.WithAudience(settings.Issuer),
			jwt.WithIssuedAt(),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

func (j *jwtIssuer) CreateAccessToken(userID, sessionID uuid.UUID) (string, error) {
	return j.sign(userID, sessionID, models.TokenTypeAccess, j.settings.AccessTTL)
}

func (j *jwtIssuer) CreateRefreshToken(userID, sessionID uuid.UUID) (string, error) {
	return j.sign(userID, sessionID, models.TokenTypeRefresh, j.settings.RefreshTTL)
}

func (j *jwtIssuer) DecodeAccessToken(token string) (models.TokenIdentity, error) {
	return j.decode(token, models.TokenTypeAccess)
}

func (j *jwtIssuer) DecodeRefreshToken(token string) (models.TokenIdentity, error) {
	return j.decode(token, models.TokenTypeRefresh)
}

func (j *jwtIssuer) sign(userID, sessionID uuid.UUID, tokenType models.TokenType, ttl time.Duration) (string, error) {
	now := j.now()
	claims := models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.settings.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{j.settings.Issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SessionID: sessionID.String(),
		Type:      tokenType,
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("error occurred during signing %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (j *jwtIssuer) decode(token string, expected models.TokenType) (models.TokenIdentity, error) {
	claims := &models.TokenClaims{}
	_, err := j.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.TokenIdentity{}, ErrTokenExpired
		}
		return models.TokenIdentity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Type != expected {
		return models.TokenIdentity{}, fmt.Errorf("%w: expected %s token, got %q", ErrTokenInvalid, expected, claims.Type)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.TokenIdentity{}, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return models.TokenIdentity{}, fmt.Errorf("%w: bad session id", ErrTokenInvalid)
	}

	return models.TokenIdentity{UserID: userID, SessionID: sessionID}, nil
}
