package store

import "github.com/pedro-fs-garcia/filmmash-api/internal/logger"

// Storages groups every repository backed by one database.
type Storages struct {
	UserRepository       UserRepository
	SessionRepository    SessionRepository
	RoleRepository       RoleRepository
	PermissionRepository PermissionRepository
}

// NewStorages wires all repositories on top of db.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository:       NewUserRepository(db, log),
		SessionRepository:    NewSessionRepository(db, log),
		RoleRepository:       NewRoleRepository(db, log),
		PermissionRepository: NewPermissionRepository(db, log),
	}
}
