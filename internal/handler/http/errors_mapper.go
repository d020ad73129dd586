package http

import (
	"errors"
	"net/http"

	"github.com/pedro-fs-garcia/filmmash-api/internal/app"
	"github.com/pedro-fs-garcia/filmmash-api/internal/crypto"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/service"
	"github.com/pedro-fs-garcia/filmmash-api/internal/store"
	"github.com/pedro-fs-garcia/filmmash-api/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrUserNotFound:              http.StatusNotFound,
	service.ErrInvalidPassword:           http.StatusUnauthorized,
	service.ErrInvalidCredentials:        http.StatusUnauthorized,
	service.ErrInvalidSession:            http.StatusUnauthorized,
	service.ErrSessionExpired:            http.StatusUnauthorized,
	service.ErrUserPasswordNotConfigured: http.StatusBadRequest,
	service.ErrUserAlreadyExists:         http.StatusConflict,
	service.ErrResourceAlreadyExists:     http.StatusConflict,
	service.ErrSessionNotFound:           http.StatusNotFound,
	service.ErrResourceNotFound:          http.StatusNotFound,
	service.ErrUserCannotLoseLoginMethod: http.StatusUnprocessableEntity,
	service.ErrInvalidDataProvided:       http.StatusUnprocessableEntity,

	utils.ErrInvalidJSON:          http.StatusBadRequest,
	utils.ErrInvalidPathParam:     http.StatusBadRequest,
	ErrNoIdentityInContext:        http.StatusUnauthorized,
	ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	ErrEmptyToken:                 http.StatusUnauthorized,
	ErrTooManyRequests:            http.StatusTooManyRequests,
}

// authErrorStatusMap overrides errorStatusMap on the credential routes, where
// an unknown account must look like a bad password.
var authErrorStatusMap = map[error]int{
	service.ErrUserNotFound: http.StatusUnauthorized,
}

// authGateStatusMap is used by the auth middleware: any identity that cannot
// be loaded is unauthorized.
var authGateStatusMap = map[error]int{
	service.ErrUserNotFound:    http.StatusUnauthorized,
	service.ErrSessionNotFound: http.StatusUnauthorized,
}

// statusFromError resolves the response status of err. Overrides are checked
// first; retryable storage failures answer 503.
func statusFromError(err error, overrides ...map[error]int) int {
	_, status := matchError(err, overrides...)
	return status
}

// matchError returns the mapped sentinel err wraps together with its status.
// The sentinel is nil for unmapped errors.
func matchError(err error, overrides ...map[error]int) (error, int) {
	for _, override := range overrides {
		for target, status := range override {
			if errors.Is(err, target) {
				return target, status
			}
		}
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return target, status
		}
	}
	if store.IsRetryable(err) {
		return nil, http.StatusServiceUnavailable
	}
	return nil, http.StatusInternalServerError
}

// writeError logs err and answers with its mapped status. Server-side
// failures never expose their message, and 401 replies carry only the
// sentinel text so token parser details stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error, overrides ...map[error]int) {
	target, status := matchError(err, overrides...)
	log := logger.FromRequest(r)

	message := err.Error()
	switch {
	case errors.Is(err, ErrTooManyRequests):
		log.Warn().Int("status", status).Msg("request rate limited")
		message = app.MsgTooManyRequests
	case status >= http.StatusInternalServerError:
		log.Err(err).Int("status", status).Msg("request failed")
		message = http.StatusText(status)
	case errors.Is(err, service.ErrUserNotFound) && status == http.StatusUnauthorized,
		errors.Is(err, service.ErrInvalidPassword):
		log.Info().Err(err).Int("status", status).Msg("credentials rejected")
		message = app.MsgInvalidEmailOrPassword
	case errors.Is(err, crypto.ErrTokenExpired):
		log.Info().Err(err).Int("status", status).Msg("token expired")
		message = app.MsgTokenExpired
	case status == http.StatusUnauthorized && target != nil:
		log.Info().Err(err).Int("status", status).Msg("request unauthorized")
		message = target.Error()
	default:
		log.Info().Err(err).Int("status", status).Msg("request rejected")
	}

	utils.WriteError(w, message, status)
}

// bearerChallenge picks the WWW-Authenticate value for a rejected token.
func bearerChallenge(err error) string {
	if errors.Is(err, crypto.ErrTokenExpired) {
		return app.BearerExpiredTokenChallenge
	}
	return app.BearerInvalidTokenChallenge
}
