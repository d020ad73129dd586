package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider names the identity provider that vouches for an OAuth login.
type AuthProvider string

const (
	AuthProviderLocal     AuthProvider = "local"
	AuthProviderGoogle    AuthProvider = "google"
	AuthProviderMicrosoft AuthProvider = "microsoft"
)

// Valid reports whether p is one of the known providers.
func (p AuthProvider) Valid() bool {
	switch p {
	case AuthProviderLocal, AuthProviderGoogle, AuthProviderMicrosoft:
		return true
	}
	return false
}

// User represents an account entity used for authentication and authorization.
//
// A user always owns at least one login method: a local password hash, an
// external provider identity (provider + provider id), or both.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// ID is the unique identifier of the user (UUIDv7).
	ID uuid.UUID `json:"id"`

	// Email is the unique address used for local logins.
	Email string `json:"email"`

	// Username is an optional unique handle.
	Username *string `json:"username,omitempty"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// PasswordHash is the encoded Argon2id hash of the local password.
	// Nil for OAuth-only accounts. Never serialized.
	PasswordHash *string `json:"-"`

	// OAuthProvider and OAuthProviderID identify an external login.
	// Both are set or both are nil.
	OAuthProvider   *AuthProvider `json:"oauth_provider,omitempty"`
	OAuthProviderID *string       `json:"-"`

	IsActive   bool `json:"is_active"`
	IsVerified bool `json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// DeletedAt is set when the user has been soft-deleted.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// HasPassword reports whether the user can authenticate with a local password.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// HasOAuth reports whether the user carries a complete external identity.
func (u User) HasOAuth() bool {
	return u.OAuthProvider != nil && u.OAuthProviderID != nil && *u.OAuthProviderID != ""
}

// HasLoginMethod reports whether at least one login method is configured.
func (u User) HasLoginMethod() bool {
	return u.HasPassword() || u.HasOAuth()
}

// CanLogin reports whether the user may authenticate at all.
func (u User) CanLogin() bool {
	return u.IsActive && u.HasLoginMethod()
}

// IsDeleted reports whether the user has been soft-deleted.
func (u User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// UserCreate is the statically typed input of UserRepository.Create.
type UserCreate struct {
	ID              uuid.UUID
	Email           string
	Username        *string
	Name            string
	PasswordHash    *string
	OAuthProvider   *AuthProvider
	OAuthProviderID *string
	IsActive        bool
	IsVerified      bool
}

// User returns the entity the create request would produce, without
// server-assigned timestamps.
func (c UserCreate) User() User {
	return User{
		ID:              c.ID,
		Email:           c.Email,
		Username:        c.Username,
		Name:            c.Name,
		PasswordHash:    c.PasswordHash,
		OAuthProvider:   c.OAuthProvider,
		OAuthProviderID: c.OAuthProviderID,
		IsActive:        c.IsActive,
		IsVerified:      c.IsVerified,
	}
}

// UserPatch describes a partial update of a user. Only fields that are set
// are written.
type UserPatch struct {
	Email           Optional[string]
	Username        Optional[*string]
	Name            Optional[string]
	PasswordHash    Optional[*string]
	OAuthProvider   Optional[*AuthProvider]
	OAuthProviderID Optional[*string]
	IsActive        Optional[bool]
	IsVerified      Optional[bool]
}

// IsEmpty reports whether the patch would not change anything.
func (p UserPatch) IsEmpty() bool {
	return !p.Email.IsSet() &&
		!p.Username.IsSet() &&
		!p.Name.IsSet() &&
		!p.PasswordHash.IsSet() &&
		!p.OAuthProvider.IsSet() &&
		!p.OAuthProviderID.IsSet() &&
		!p.IsActive.IsSet() &&
		!p.IsVerified.IsSet()
}

// Apply returns a copy of u with every set field of p written over it.
func (p UserPatch) Apply(u User) User {
	if v, ok := p.Email.Get(); ok {
		u.Email = v
	}
	if v, ok := p.Username.Get(); ok {
		u.Username = v
	}
	if v, ok := p.Name.Get(); ok {
		u.Name = v
	}
	if v, ok := p.PasswordHash.Get(); ok {
		u.PasswordHash = v
	}
	if v, ok := p.OAuthProvider.Get(); ok {
		u.OAuthProvider = v
	}
	if v, ok := p.OAuthProviderID.Get(); ok {
		u.OAuthProviderID = v
	}
	if v, ok := p.IsActive.Get(); ok {
		u.IsActive = v
	}
	if v, ok := p.IsVerified.Get(); ok {
		u.IsVerified = v
	}
	return u
}

// UserWithRoles is a user together with its fully loaded roles.
type UserWithRoles struct {
	User
	Roles []Role `json:"roles"`
}
