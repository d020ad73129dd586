package main

import (
	"context"
	"fmt"

	"github.com/pedro-fs-garcia/filmmash-api/internal/adapter"
	"github.com/pedro-fs-garcia/filmmash-api/internal/config"
	"github.com/pedro-fs-garcia/filmmash-api/internal/crypto"
	"github.com/pedro-fs-garcia/filmmash-api/internal/handler"
	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
	"github.com/pedro-fs-garcia/filmmash-api/internal/server"
	"github.com/pedro-fs-garcia/filmmash-api/internal/service"
	"github.com/pedro-fs-garcia/filmmash-api/internal/store"
	"github.com/pedro-fs-garcia/filmmash-api/internal/workers"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(orNA(buildVersion), orNA(buildDate), orNA(buildCommit))
	printBuildInfo(buildInfo)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("filmmash-auth").Fatal().Err(err).Msg("error getting configs")
	}
	if buildVersion != "" {
		cfg.App.Version = buildVersion
	}

	log := logger.NewLogger("filmmash-auth", cfg.App.LogLevel)
	log.Debug().Str("version", cfg.App.Version).Str("address", cfg.Server.HTTPAddress).Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err = db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	hashPool := workers.NewPool(cfg.Workers.HashPoolSize, cfg.Workers.HashQueueSize, log)
	background := workers.NewWorkers(hashPool)
	background.Run()
	defer background.Stop()

	hasher := crypto.NewArgon2Hasher(crypto.ArgonParamsFromConfig(cfg.App.Argon), hashPool)
	issuer, err := crypto.NewJWTIssuer(crypto.TokenSettingsFromConfig(cfg.App))
	if err != nil {
		log.Fatal().Err(err).Msg("error creating token issuer")
	}

	publisher, err := adapter.NewSessionEventPublisher(cfg.Adapter, log)
	if err != nil {
		log.Warn().Err(err).Msg("session events are disabled")
		publisher = adapter.NewNoopSessionEventPublisher(log)
	}
	defer publisher.Close()

	limiter := adapter.NewRateLimiter(ctx, cfg.Storage.Redis, cfg.Server.RateLimit, log)
	defer limiter.Close()

	storages := store.NewStorages(db, log)

	services, err := service.NewServices(storages, *cfg, hasher, issuer, publisher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, limiter, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
