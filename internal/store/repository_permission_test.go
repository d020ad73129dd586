package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

func TestPermissionRepository_Create(t *testing.T) {
	desc := "create movies"

	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewPermissionRepository(db, db.logger)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO permissions (name, description)")).
			WithArgs("movies:create", desc).
			WillReturnRows(sqlmock.NewRows(permissionCols).AddRow(int64(4), "movies:create", desc, testNow, testNow))

		p, err := repo.Create(context.Background(), models.PermissionCreate{Name: "movies:create", Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, int64(4), p.ID)
		require.NotNil(t, p.Description)
		assert.Equal(t, desc, *p.Description)
	})

	t.Run("duplicate name", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewPermissionRepository(db, db.logger)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO permissions")).
			WillReturnError(pgError(pgerrcode.UniqueViolation))

		_, err := repo.Create(context.Background(), models.PermissionCreate{Name: "movies:create"})
		assert.ErrorIs(t, err, ErrPermissionAlreadyExists)
	})
}

func TestPermissionRepository_GetWithRoles(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewPermissionRepository(db, db.logger)

	mock.ExpectQuery(regexp.QuoteMeta("FROM permissions")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(permissionCols).AddRow(int64(4), "movies:create", nil, testNow, testNow))
	mock.ExpectQuery(regexp.QuoteMeta("JOIN role_permissions rp ON rp.role_id = r.id")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(roleCols).
			AddRow(int64(1), "admin", nil, testNow, testNow).
			AddRow(int64(2), "editor", nil, testNow, testNow))

	p, found, err := repo.GetWithRoles(context.Background(), 4)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, p.Roles, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepository_GetByID_Missing(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewPermissionRepository(db, db.logger)

	mock.ExpectQuery(regexp.QuoteMeta("FROM permissions")).
		WillReturnRows(sqlmock.NewRows(permissionCols))

	_, found, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, found)
}
