package http

import (
	"net/http"
	"strings"

	"github.com/pedro-fs-garcia/filmmash-api/internal/app"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/utils"
)

// auth is an HTTP middleware that enforces bearer access tokens.
//
// It extracts the token from the "Authorization" header and loads the
// user and session it is bound to via [service.AuthService.LoadCurrentUserSession].
// On success both are stored in the request context (see
// [utils.GetIdentityFromContext]) and the request logger is tagged with
// user_id and session_id.
//
// Requests are rejected with 401 when the header is missing or malformed, the
// token does not decode, the session is no longer active or the account
// cannot sign in. An expired access token gets an error_description so the
// client knows to refresh. Storage failures keep their own status.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := getTokenFromAuthHeader(r.Header.Get("Authorization"))
		if err != nil {
			w.Header().Set("WWW-Authenticate", app.BearerChallenge)
			writeError(w, r, err, authGateStatusMap)
			return
		}

		ctx := r.Context()
		user, session, err := h.services.AuthService.LoadCurrentUserSession(ctx, tokenString)
		if err != nil {
			if statusFromError(err, authGateStatusMap) == http.StatusUnauthorized {
				w.Header().Set("WWW-Authenticate", bearerChallenge(err))
			}
			writeError(w, r, err, authGateStatusMap)
			return
		}

		ctx = utils.WithIdentity(ctx, user, session)
		ctx = logger.FromContext(ctx).WithIdentity(user.ID.String(), session.ID.String()).WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getTokenFromAuthHeader extracts the token of an "Authorization: Bearer
// <token>" header value. The scheme is matched case-insensitively.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrEmptyAuthorizationHeader
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthorizationHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}
