package store

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewDB(conn, logger.Nop()), mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

var (
	testNow     = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	userCols    = []string{"id", "email", "username", "name", "password_hash", "oauth_provider", "oauth_provider_id", "is_active", "is_verified", "created_at", "updated_at", "deleted_at"}
	sessionCols = []string{"id", "user_id", "refresh_token_hash", "status", "device_info", "expires_at", "created_at", "last_used_at", "revoked_at"}
	roleCols    = []string{"id", "name", "description", "created_at", "updated_at"}
)

func userRow(id uuid.UUID, email string, passwordHash any) []driver.Value {
	return []driver.Value{id.String(), email, nil, "Jane", passwordHash, nil, nil, true, false, testNow, testNow, nil}
}

func sessionRow(id, userID uuid.UUID, hash, status string) []driver.Value {
	return []driver.Value{
		id.String(), userID.String(), hash, status,
		[]byte(`{"device_type":"desktop","os":"Linux","browser":"Chrome 120"}`),
		testNow.Add(time.Hour), testNow, testNow, nil,
	}
}

