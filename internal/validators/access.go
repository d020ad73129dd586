package validators

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

const maxDescriptionLength = 255

// AccessValidator validates role and permission payloads.
type AccessValidator struct{}

func NewAccessValidator() Validator {
	return &AccessValidator{}
}

func (v *AccessValidator) Validate(_ context.Context, obj any, _ ...string) error {
	switch value := obj.(type) {
	case models.RoleCreate:
		return validateRoleCreate(value)
	case *models.RoleCreate:
		return validateRoleCreate(*value)

	case models.PermissionCreate:
		return validatePermissionCreate(value)
	case *models.PermissionCreate:
		return validatePermissionCreate(*value)

	case models.IDsRequest:
		return validateIDs(value.IDs)
	case *models.IDsRequest:
		return validateIDs(value.IDs)

	default:
		return ErrUnsupportedType
	}
}

func validateRoleCreate(role models.RoleCreate) error {
	if !models.RoleNamePattern.MatchString(role.Name) {
		return ErrInvalidRoleName
	}
	return validateDescription(role.Description)
}

func validatePermissionCreate(permission models.PermissionCreate) error {
	if !models.PermissionNamePattern.MatchString(permission.Name) {
		return ErrInvalidPermissionName
	}
	return validateDescription(permission.Description)
}

func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLength {
		return ErrInvalidDescription
	}
	return nil
}

func validateIDs(ids []int64) error {
	if len(ids) == 0 {
		return ErrEmptyIDs
	}
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidID
		}
	}
	return nil
}

// NormalizePermissionName trims, lower-cases and replaces spaces with '_'.
func NormalizePermissionName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
