package validators

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/secure/precis"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// Field name constants accepted by [UserValidator.Validate] to restrict
// validation to a subset of fields.
const (
	FieldEmail         = "email"
	FieldName          = "name"
	FieldUsername      = "username"
	FieldPassword      = "password"
	FieldRefreshToken  = "refresh_token"
	FieldOAuthProvider = "oauth_provider"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxNameLength     = 50
	minUsernameLength = 3
	maxUsernameLength = 32
)

// UserValidator validates the account payloads: RegisterRequest,
// LoginRequest, RefreshRequest and UserUpdateRequest. Value and pointer
// forms are accepted.
type UserValidator struct{}

func NewUserValidator() Validator {
	return &UserValidator{}
}

func (v *UserValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RegisterRequest:
		return v.validateRegisterRequest(value, fields...)
	case *models.RegisterRequest:
		return v.validateRegisterRequest(*value, fields...)

	case models.LoginRequest:
		return v.validateLoginRequest(value, fields...)
	case *models.LoginRequest:
		return v.validateLoginRequest(*value, fields...)

	case models.RefreshRequest:
		return v.validateRefreshRequest(value, fields...)
	case *models.RefreshRequest:
		return v.validateRefreshRequest(*value, fields...)

	case models.UserUpdateRequest:
		return v.validateUserUpdateRequest(value)
	case *models.UserUpdateRequest:
		return v.validateUserUpdateRequest(*value)

	default:
		return ErrUnsupportedType
	}
}

func (v *UserValidator) validateRegisterRequest(req models.RegisterRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldName, FieldUsername, FieldPassword}
	}

	for _, f := range fields {
		var err error
		switch f {
		case FieldEmail:
			err = validateEmail(req.Email)
		case FieldName:
			err = validateName(req.Name)
		case FieldUsername:
			if req.Username != nil {
				err = validateUsername(*req.Username)
			}
		case FieldPassword:
			err = validatePassword(req.Password)
		default:
			return ErrUnknownField
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// validateLoginRequest only checks presence: the password policy applies to
// new passwords, not to the ones being verified.
func (v *UserValidator) validateLoginRequest(req models.LoginRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEmail, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldEmail:
			if strings.TrimSpace(req.Email) == "" {
				return ErrInvalidEmail
			}
		case FieldPassword:
			if req.Password == "" {
				return ErrEmptyPassword
			}
			if len(req.Password) > maxPasswordLength {
				return ErrPasswordTooLong
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *UserValidator) validateRefreshRequest(req models.RefreshRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldRefreshToken}
	}

	for _, f := range fields {
		switch f {
		case FieldRefreshToken:
			if strings.TrimSpace(req.RefreshToken) == "" {
				return ErrEmptyRefreshToken
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateUserUpdateRequest checks every field present in the patch. A null
// username or password is allowed; whether the user keeps a login method is
// decided by the service against the stored state.
func (v *UserValidator) validateUserUpdateRequest(req models.UserUpdateRequest) error {
	empty := true

	if email, ok := req.Email.Get(); ok {
		empty = false
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if name, ok := req.Name.Get(); ok {
		empty = false
		if err := validateName(name); err != nil {
			return err
		}
	}
	if username, ok := req.Username.Get(); ok {
		empty = false
		if username != nil {
			if err := validateUsername(*username); err != nil {
				return err
			}
		}
	}
	if password, ok := req.Password.Get(); ok {
		empty = false
		if password != nil {
			if err := validatePassword(*password); err != nil {
				return err
			}
		}
	}
	if provider, ok := req.OAuthProvider.Get(); ok {
		empty = false
		if provider != nil && !provider.Valid() {
			return ErrInvalidOAuthProvider
		}
	}
	if req.OAuthProviderID.IsSet() || req.IsActive.IsSet() || req.IsVerified.IsSet() {
		empty = false
	}

	if empty {
		return ErrNoFieldsToUpdate
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 || n > maxNameLength {
		return ErrInvalidName
	}
	return nil
}

func validateUsername(username string) error {
	normalized, err := NormalizeUsername(username)
	if err != nil {
		return err
	}
	for _, r := range normalized {
		if !isUsernameRune(r) {
			return ErrInvalidUsername
		}
	}
	return nil
}

func validatePassword(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n == 0:
		return ErrEmptyPassword
	case n < minPasswordLength:
		return ErrPasswordTooShort
	case len(password) > maxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// NormalizeUsername applies the PRECIS UsernameCaseMapped profile (width
// mapping, case folding, NFC) and checks the length bounds. The result is
// the form that is stored and compared.
func NormalizeUsername(username string) (string, error) {
	normalized, err := precis.UsernameCaseMapped.String(strings.TrimSpace(username))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidUsername, err)
	}
	if n := utf8.RuneCountInString(normalized); n < minUsernameLength || n > maxUsernameLength {
		return "", ErrInvalidUsername
	}
	return normalized, nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '_':
		return true
	}
	return false
}
