package service

import "errors"

// Business outcomes returned by the services. They reach the HTTP boundary
// wrapped with %w and are matched there with errors.Is.
var (
	ErrUserNotFound              = errors.New("user not found")
	ErrUserAlreadyExists         = errors.New("user already exists")
	ErrUserPasswordNotConfigured = errors.New("user has no password configured")
	ErrInvalidPassword           = errors.New("invalid password")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrUserCannotLoseLoginMethod = errors.New("user must keep a password or an oauth login")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidSession  = errors.New("invalid session")

	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrResourceNotFound      = errors.New("resource not found")

	ErrInvalidDataProvided   = errors.New("invalid data provided")
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
