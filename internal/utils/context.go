// Package utils provides small helpers shared by the HTTP transport:
// request-scoped identity in context, JSON response writing and path
// parameter parsing.
package utils

import (
	"context"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

var (
	// UserCtxKey holds the authenticated [models.User].
	UserCtxKey = contextKey("currentUser")

	// SessionCtxKey holds the [models.Session] the access token is bound to.
	SessionCtxKey = contextKey("currentSession")
)

// WithIdentity returns a copy of ctx carrying the authenticated user and
// session.
func WithIdentity(ctx context.Context, user models.User, session models.Session) context.Context {
	ctx = context.WithValue(ctx, UserCtxKey, user)
	return context.WithValue(ctx, SessionCtxKey, session)
}

// GetIdentityFromContext retrieves the user and session stored by
// WithIdentity.
//
// ok is false when either value is missing or has an unexpected type:
//
//	user, session, ok := utils.GetIdentityFromContext(r.Context())
//	if !ok {
//	    // the route is not behind the auth middleware
//	}
func GetIdentityFromContext(ctx context.Context) (models.User, models.Session, bool) {
	user, userOK := ctx.Value(UserCtxKey).(models.User)
	session, sessionOK := ctx.Value(SessionCtxKey).(models.Session)
	if !userOK || !sessionOK {
		return models.User{}, models.Session{}, false
	}
	return user, session, true
}
