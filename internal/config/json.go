package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON shape of the configuration.
type StructuredJSONConfig struct {
	App struct {
		ProjectName              string   `json:"project_name"`
		Version                  string   `json:"version"`
		LogLevel                 string   `json:"log_level"`
		JWTSecretKey             string   `json:"jwt_secret_key"`
		JWTAlgorithm             string   `json:"jwt_algorithm"`
		AccessTokenExpireMinutes int      `json:"access_token_expire_minutes"`
		RefreshTokenExpireDays   int      `json:"refresh_token_expire_days"`
		SessionExpireDays        int      `json:"session_expire_days"`
		MaxActiveSessions        int      `json:"max_active_sessions"`
		SessionTouchInterval     Duration `json:"session_touch_interval"`
		Argon                    struct {
			MemoryKiB   uint32 `json:"memory_kib"`
			Iterations  uint32 `json:"iterations"`
			Parallelism uint8  `json:"parallelism"`
			SaltLength  uint32 `json:"salt_length"`
			KeyLength   uint32 `json:"key_length"`
		} `json:"argon,omitempty"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN          string `json:"dsn"`
			MaxOpenConns int    `json:"max_open_conns"`
		} `json:"db,omitempty"`

		Redis struct {
			Address  string `json:"address"`
			Password string `json:"password"`
			DB       int    `json:"db"`
		} `json:"redis,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		RateLimit      struct {
			Capacity       int      `json:"capacity"`
			RefillTokens   int      `json:"refill_tokens"`
			RefillInterval Duration `json:"refill_interval"`
			Prefix         string   `json:"prefix"`
		} `json:"rate_limit,omitempty"`
	} `json:"server,omitempty"`

	Adapter struct {
		AMQPURL            string `json:"amqp_url"`
		SessionEventsQueue string `json:"session_events_queue"`
	} `json:"adapter,omitempty"`

	Workers struct {
		HashPoolSize  int `json:"hash_pool_size"`
		HashQueueSize int `json:"hash_queue_size"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	j := jsonCfg
	cfg := &StructuredConfig{
		App: App{
			ProjectName:              j.App.ProjectName,
			Version:                  j.App.Version,
			LogLevel:                 j.App.LogLevel,
			JWTSecretKey:             j.App.JWTSecretKey,
			JWTAlgorithm:             j.App.JWTAlgorithm,
			AccessTokenExpireMinutes: j.App.AccessTokenExpireMinutes,
			RefreshTokenExpireDays:   j.App.RefreshTokenExpireDays,
			SessionExpireDays:        j.App.SessionExpireDays,
			MaxActiveSessions:        j.App.MaxActiveSessions,
			SessionTouchInterval:     time.Duration(j.App.SessionTouchInterval),
			Argon: Argon{
				MemoryKiB:   j.App.Argon.MemoryKiB,
				Iterations:  j.App.Argon.Iterations,
				Parallelism: j.App.Argon.Parallelism,
				SaltLength:  j.App.Argon.SaltLength,
				KeyLength:   j.App.Argon.KeyLength,
			},
		},
		Storage: Storage{
			DB: DB{
				DSN:          j.Storage.DB.DSN,
				MaxOpenConns: j.Storage.DB.MaxOpenConns,
			},
			Redis: Redis{
				Address:  j.Storage.Redis.Address,
				Password: j.Storage.Redis.Password,
				DB:       j.Storage.Redis.DB,
			},
		},
		Server: Server{
			HTTPAddress:    j.Server.HTTPAddress,
			RequestTimeout: time.Duration(j.Server.RequestTimeout),
			RateLimit: RateLimit{
				Capacity:       j.Server.RateLimit.Capacity,
				RefillTokens:   j.Server.RateLimit.RefillTokens,
				RefillInterval: time.Duration(j.Server.RateLimit.RefillInterval),
				Prefix:         j.Server.RateLimit.Prefix,
			},
		},
		Adapter: Adapter{
			AMQPURL:            j.Adapter.AMQPURL,
			SessionEventsQueue: j.Adapter.SessionEventsQueue,
		},
		Workers: Workers{
			HashPoolSize:  j.Workers.HashPoolSize,
			HashQueueSize: j.Workers.HashQueueSize,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
