package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUserAlreadyExists is returned when an INSERT or UPDATE of a user
	// violates the uniqueness of email, username or OAuth provider id.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUserNotFound is returned when a write references a user row that
	// does not exist.
	ErrUserNotFound = errors.New("user was not found")

	// ErrUserLoginMethodRequired is returned when a user write would leave
	// the row with neither a password hash nor an OAuth provider id.
	ErrUserLoginMethodRequired = errors.New("user must keep a login method")

	// ErrUserOAuthPairIncomplete is returned when a user write sets only one
	// of oauth_provider and oauth_provider_id.
	ErrUserOAuthPairIncomplete = errors.New("oauth provider and provider id must be set together")

	// ErrRoleAlreadyExists is returned when a role name is already taken.
	ErrRoleAlreadyExists = errors.New("role already exists")

	// ErrPermissionAlreadyExists is returned when a permission name is
	// already taken.
	ErrPermissionAlreadyExists = errors.New("permission already exists")

	// ErrRefreshTokenCollision is returned when a session write would store a
	// refresh token hash that is already in use. It is never retried.
	ErrRefreshTokenCollision = errors.New("refresh token hash collision")

	// ErrInvalidReference is returned when a junction row references a
	// missing parent.
	ErrInvalidReference = errors.New("referenced row does not exist")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
