package config

import (
	"runtime"
	"time"
)

const (
	defaultProjectName          = "filmmash-api"
	defaultVersion              = "dev"
	defaultLogLevel             = "info"
	defaultJWTAlgorithm         = "HS256"
	defaultAccessTokenMinutes   = 15
	defaultRefreshTokenDays     = 60
	defaultSessionDays          = 180
	defaultMaxActiveSessions    = 5
	defaultSessionTouchInterval = time.Minute
	defaultHTTPAddress          = ":8080"
	defaultRequestTimeout       = 30 * time.Second
	defaultMaxOpenConns         = 10
	defaultRateLimitCapacity    = 10
	defaultRateLimitRefill      = 1
	defaultRateLimitInterval    = 6 * time.Second
	defaultRateLimitPrefix      = "rl:auth"
	defaultSessionEventsQueue   = "session.events"
	defaultHashQueueSize        = 64
	defaultDotEnvPath           = ".env"
)

// defaultConfig returns the lowest-priority configuration layer.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			ProjectName:              defaultProjectName,
			Version:                  defaultVersion,
			LogLevel:                 defaultLogLevel,
			JWTAlgorithm:             defaultJWTAlgorithm,
			AccessTokenExpireMinutes: defaultAccessTokenMinutes,
			RefreshTokenExpireDays:   defaultRefreshTokenDays,
			SessionExpireDays:        defaultSessionDays,
			MaxActiveSessions:        defaultMaxActiveSessions,
			SessionTouchInterval:     defaultSessionTouchInterval,
			Argon: Argon{
				MemoryKiB:   64 * 1024,
				Iterations:  3,
				Parallelism: 2,
				SaltLength:  16,
				KeyLength:   32,
			},
		},
		Storage: Storage{
			DB: DB{MaxOpenConns: defaultMaxOpenConns},
		},
		Server: Server{
			HTTPAddress:    defaultHTTPAddress,
			RequestTimeout: defaultRequestTimeout,
			RateLimit: RateLimit{
				Capacity:       defaultRateLimitCapacity,
				RefillTokens:   defaultRateLimitRefill,
				RefillInterval: defaultRateLimitInterval,
				Prefix:         defaultRateLimitPrefix,
			},
		},
		Adapter: Adapter{
			SessionEventsQueue: defaultSessionEventsQueue,
		},
		Workers: Workers{
			HashPoolSize:  runtime.NumCPU(),
			HashQueueSize: defaultHashQueueSize,
		},
	}
}
