// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

var supportedJWTAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or an error wrapping one of the
// ErrInvalid*Configs sentinels otherwise.
func (cfg *StructuredConfig) validate() error {
	if err := cfg.App.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAppConfigs, err)
	}

	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: database DSN is required", ErrInvalidStorageConfigs)
	}

	if cfg.Server.HTTPAddress == "" {
		return fmt.Errorf("%w: HTTP address is required", ErrInvalidServerConfigs)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidServerConfigs)
	}

	if cfg.Workers.HashPoolSize < 1 || cfg.Workers.HashQueueSize < 0 {
		return fmt.Errorf("%w: hash pool size must be at least 1", ErrInvalidWorkerConfigs)
	}

	return nil
}

func (a App) validate() error {
	switch {
	case a.JWTSecretKey == "":
		return fmt.Errorf("jwt secret key is required")
	case a.ProjectName == "":
		return fmt.Errorf("project name is required")
	case a.AccessTokenExpireMinutes <= 0:
		return fmt.Errorf("access token lifetime must be positive")
	case a.RefreshTokenExpireDays <= 0:
		return fmt.Errorf("refresh token lifetime must be positive")
	case a.SessionExpireDays < a.RefreshTokenExpireDays:
		return fmt.Errorf("session lifetime (%d days) is shorter than refresh token lifetime (%d days)",
			a.SessionExpireDays, a.RefreshTokenExpireDays)
	case a.MaxActiveSessions < 1:
		return fmt.Errorf("max active sessions must be at least 1")
	case a.Argon.MemoryKiB == 0 || a.Argon.Iterations == 0 || a.Argon.Parallelism == 0:
		return fmt.Errorf("argon2 cost parameters must be positive")
	case a.Argon.SaltLength < 8 || a.Argon.KeyLength < 16:
		return fmt.Errorf("argon2 salt or key length too short")
	}

	if _, ok := supportedJWTAlgorithms[a.JWTAlgorithm]; !ok {
		return fmt.Errorf("unsupported jwt algorithm %q", a.JWTAlgorithm)
	}

	return nil
}
