// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks inbound payloads of the auth API before they
// reach the services.
//
// Two validators are provided:
//   - [UserValidator] for registration, login, refresh and user patches;
//   - [AccessValidator] for role and permission creation and id lists.
//
// Validation errors are package-level sentinels so the HTTP layer can map
// them to 422 with [errors.Is].
package validators

import "context"

// Validator validates obj. Some validators accept field names that restrict
// validation to those fields; an unknown field yields ErrUnknownField.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
