package models

import (
	"regexp"
	"time"
)

var (
	// RoleNamePattern matches valid role names: letters and underscores, at least 3.
	RoleNamePattern = regexp.MustCompile(`^[A-Za-z_]{3,}$`)

	// PermissionNamePattern matches valid permission names in resource:action form.
	PermissionNamePattern = regexp.MustCompile(`^[a-z_]{3,}:[a-z_]{3,}$`)
)

// Role is a named group of permissions that can be granted to users.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleCreate is the statically typed input of RoleRepository.Create.
type RoleCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// RoleWithPermissions is a role together with its fully loaded permissions.
type RoleWithPermissions struct {
	Role
	Permissions []Permission `json:"permissions"`
}

// Permission grants a single action on a resource, e.g. "movies:create".
type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PermissionCreate is the statically typed input of PermissionRepository.Create.
type PermissionCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// PermissionWithRoles is a permission together with the roles that grant it.
type PermissionWithRoles struct {
	Permission
	Roles []Role `json:"roles"`
}

// IDsRequest carries a list of related identifiers, e.g. roles to assign.
type IDsRequest struct {
	IDs []int64 `json:"ids"`
}
