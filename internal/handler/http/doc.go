// Package http implements the REST transport of the auth service.
//
// It wires chi routes for registration, login, token refresh, logout and the
// user, role and permission resources. Cross-cutting concerns such as request
// tracing, access logging, compression, rate limiting and bearer
// authentication are handled here before requests reach the service layer.
package http
