package http

import (
	"github.com/pedro-fs-garcia/filmmash-api/internal/adapter"
	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/service"
)

type Handler struct {
	services *service.Services
	limiter  adapter.RateLimiter
	cfg      config.Server

	logger *logger.Logger
}

// NewHandler builds the REST handler. A nil limiter lets every request through.
func NewHandler(services *service.Services, limiter adapter.RateLimiter, cfg config.Server, logger *logger.Logger) *Handler {
	if limiter == nil {
		limiter = adapter.NewNoopRateLimiter(cfg.RateLimit.Capacity)
	}

	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
	}
}
