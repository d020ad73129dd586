package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidName          = errors.New("name must be between 1 and 50 characters")
	ErrInvalidUsername      = errors.New("username must be 3 to 32 letters, digits, '.', '-' or '_'")
	ErrEmptyPassword        = errors.New("password is required")
	ErrPasswordTooShort     = errors.New("password must have at least 8 characters")
	ErrPasswordTooLong      = errors.New("password must have at most 128 characters")
	ErrEmptyRefreshToken    = errors.New("refresh token is required")
	ErrInvalidOAuthProvider = errors.New("unknown oauth provider")
	ErrNoFieldsToUpdate     = errors.New("at least one field must be provided for update")

	ErrInvalidRoleName       = errors.New("role name can have only letters and '_' and at least 3 characters")
	ErrInvalidPermissionName = errors.New("permission name must follow '<resource>:<action>' with lowercase letters and '_', at least 3 characters each")
	ErrInvalidDescription    = errors.New("description must have at most 255 characters")
	ErrEmptyIDs              = errors.New("IDs list cannot be empty")
	ErrInvalidID             = errors.New("IDs must be positive")
)
