// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// filmmash auth handlers and middleware.
//
// Msg* constants are human-readable strings written into HTTP response
// bodies. Keeping them in one place ensures consistent wording throughout
// the API.
package app

const (
	// MsgInvalidEmailOrPassword is returned for every rejected credential
	// pair, whether the account is unknown or the password is wrong.
	MsgInvalidEmailOrPassword = "invalid email or password"

	// MsgTooManyRequests is returned when the rate limiter rejects a
	// credential request.
	MsgTooManyRequests = "too many requests, retry later"

	// MsgTokenExpired is returned when a well-signed token is past its
	// expiry. Clients answer it by refreshing.
	MsgTokenExpired = "token expired"
)

// Bearer challenges sent in the WWW-Authenticate header of 401 replies.
const (
	BearerChallenge             = `Bearer realm="filmmash-api"`
	BearerInvalidTokenChallenge = `Bearer realm="filmmash-api", error="invalid_token"`
	BearerExpiredTokenChallenge = `Bearer realm="filmmash-api", error="invalid_token", error_description="token expired"`
)
