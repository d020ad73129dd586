package models

// RegisterRequest is the payload of POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Username *string `json:"username,omitempty"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
}

// LoginRequest is the payload of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the payload of POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserUpdateRequest is the payload of PATCH /api/v1/users/{id}.
//
// Keys that are absent from the JSON document leave the field unchanged;
// a null password removes the local credential.
type UserUpdateRequest struct {
	Email           Optional[string]        `json:"email"`
	Username        Optional[*string]       `json:"username"`
	Name            Optional[string]        `json:"name"`
	Password        Optional[*string]       `json:"password"`
	OAuthProvider   Optional[*AuthProvider] `json:"oauth_provider"`
	OAuthProviderID Optional[*string]       `json:"oauth_provider_id"`
	IsActive        Optional[bool]          `json:"is_active"`
	IsVerified      Optional[bool]          `json:"is_verified"`
}

// AuthResponse is returned by the registration endpoint: the new user and
// the token pair of its first session.
type AuthResponse struct {
	User User `json:"user"`
	TokenPair
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterResult is what the auth service returns after a registration.
type RegisterResult struct {
	User   User
	Tokens TokenPair
}
