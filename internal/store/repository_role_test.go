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

var permissionCols = []string{"id", "name", "description", "created_at", "updated_at"}

func TestRoleRepository_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoleRepository(db, db.logger)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO roles (name, description)")).
			WithArgs("admin", nil).
			WillReturnRows(sqlmock.NewRows(roleCols).AddRow(int64(1), "admin", nil, testNow, testNow))

		role, err := repo.Create(context.Background(), models.RoleCreate{Name: "admin"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), role.ID)
		assert.Nil(t, role.Description)
	})

	t.Run("duplicate name", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoleRepository(db, db.logger)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO roles")).
			WillReturnError(pgError(pgerrcode.UniqueViolation))

		_, err := repo.Create(context.Background(), models.RoleCreate{Name: "admin"})
		assert.ErrorIs(t, err, ErrRoleAlreadyExists)
	})
}

func TestRoleRepository_GetWithPermissions(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoleRepository(db, db.logger)

		mock.ExpectQuery(regexp.QuoteMeta("FROM roles")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(roleCols).AddRow(int64(3), "editor", nil, testNow, testNow))
		mock.ExpectQuery(regexp.QuoteMeta("JOIN role_permissions rp ON rp.permission_id = p.id")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(permissionCols).AddRow(int64(10), "movies:update", nil, testNow, testNow))

		role, found, err := repo.GetWithPermissions(context.Background(), 3)
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, role.Permissions, 1)
		assert.Equal(t, "movies:update", role.Permissions[0].Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoleRepository(db, db.logger)

		mock.ExpectQuery(regexp.QuoteMeta("FROM roles")).
			WillReturnRows(sqlmock.NewRows(roleCols))

		_, found, err := repo.GetWithPermissions(context.Background(), 3)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestRoleRepository_AddPermissions(t *testing.T) {
	t.Run("links permissions", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoleRepository(db, db.logger)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM permissions WHERE id IN ($1)")).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO role_permissions (role_id,permission_id) VALUES ($1,$2) ON CONFLICT DO NOTHING")).
			WithArgs(int64(3), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		missing, err := repo.AddPermissions(context.Background(), 3, []int64{10})
		require.NoError(t, err)
		assert.Empty(t, missing)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown role", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewRoleRepository(db, db.logger)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM permissions")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO role_permissions")).
			WillReturnError(pgError(pgerrcode.ForeignKeyViolation))
		mock.ExpectRollback()

		_, err := repo.AddPermissions(context.Background(), 3, []int64{10})
		assert.ErrorIs(t, err, ErrInvalidReference)
	})
}
