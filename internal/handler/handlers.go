package handler

import (
	"github.com/pedro-fs-garcia/filmmash-api/internal/adapter"
	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/internal/handler/http"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, limiter adapter.RateLimiter, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, limiter, cfg, logger),
	}, nil
}
