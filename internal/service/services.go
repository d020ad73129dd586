package service

import (
	"github.com/pedro-fs-garcia/filmmash-api/internal/adapter"
	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/internal/crypto"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/store"
)

type Services struct {
	AuthService       AuthService
	SessionService    SessionService
	UserService       UserService
	RoleService       RoleService
	PermissionService PermissionService
	AppInfoService    AppInfoService
}

// NewServices wires every service on top of storages. Request-facing
// services are wrapped with their validation decorators.
func NewServices(
	storages *store.Storages,
	cfg config.StructuredConfig,
	hasher crypto.Hasher,
	issuer crypto.TokenIssuer,
	publisher adapter.SessionEventPublisher,
	logger *logger.Logger,
) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	sessions := NewSessionService(storages.SessionRepository, hasher, issuer, publisher, cfg.App, logger)
	auth := NewAuthService(storages.UserRepository, sessions, hasher, issuer, logger)

	return &Services{
		AuthService:       NewAuthValidationService().Wrap(auth),
		SessionService:    sessions,
		UserService:       NewUserValidationService().Wrap(NewUserService(storages.UserRepository, hasher, logger)),
		RoleService:       NewRoleValidationService().Wrap(NewRoleService(storages.RoleRepository, logger)),
		PermissionService: NewPermissionValidationService().Wrap(NewPermissionService(storages.PermissionRepository, logger)),
		AppInfoService:    appInfo,
	}, nil
}
