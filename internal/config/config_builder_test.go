package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// validConfig returns defaults completed with the required secrets.
func validConfig() *StructuredConfig {
	cfg := defaultConfig()
	cfg.App.JWTSecretKey = "secret"
	cfg.Storage.DB.DSN = "postgres://localhost/db"
	return cfg
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilderFailsValidation verifies that a config without any
// source is rejected.
func TestBuild_EmptyBuilderFailsValidation(t *testing.T) {
	_, err := newConfigBuilder().build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAppConfigs)
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_LaterSourcesOverride verifies that non-zero fields of later
// layers win while zero fields keep earlier values.
func TestBuild_LaterSourcesOverride(t *testing.T) {
	b := newConfigBuilder().withDefaults()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{JWTSecretKey: "env-secret", MaxActiveSessions: 3}, Storage: Storage{DB: DB{DSN: "postgres://env"}}},
		&StructuredConfig{App: App{JWTSecretKey: "flag-secret"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "flag-secret", cfg.App.JWTSecretKey)
	assert.Equal(t, 3, cfg.App.MaxActiveSessions)
	assert.Equal(t, "postgres://env", cfg.Storage.DB.DSN)
	assert.Equal(t, defaultAccessTokenMinutes, cfg.App.AccessTokenExpireMinutes)
	assert.Equal(t, defaultSessionDays, cfg.App.SessionExpireDays)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

// TestWithJSON_LoadsFileFromEarlierLayer verifies that the JSON path set by
// an earlier layer is read and merged last.
func TestWithJSON_LoadsFileFromEarlierLayer(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"app": map[string]any{"jwt_secret_key": "json-secret"},
	})

	b := newConfigBuilder().withDefaults()
	b.configs = append(b.configs, &StructuredConfig{
		JSONFilePath: path,
		App:          App{JWTSecretKey: "env-secret"},
		Storage:      Storage{DB: DB{DSN: "postgres://env"}},
	})

	cfg, err := b.withJSON().build()
	require.NoError(t, err)
	assert.Equal(t, "json-secret", cfg.App.JWTSecretKey)
}

// TestWithJSON_MissingFile verifies that a dangling JSON path is an error.
func TestWithJSON_MissingFile(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: filepath.Join(t.TempDir(), "nope.json")})

	_, err := b.withJSON().build()
	require.Error(t, err)
}

// ── withDotEnv ────────────────────────────────────────────────────────────────

// TestWithDotEnv_LoadsFileWithoutOverriding verifies that dotenv values fill
// unset variables only.
func TestWithDotEnv_LoadsFileWithoutOverriding(t *testing.T) {
	clearEnvVars(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_JWT_SECRET_KEY=from-file\nSTORAGE_DB_DATABASE_URI=postgres://file\n"), 0o600))

	t.Setenv("DOTENV", path)
	t.Setenv("STORAGE_DB_DATABASE_URI", "postgres://real-env")
	t.Cleanup(func() { _ = os.Unsetenv("APP_JWT_SECRET_KEY") })

	cfg, err := newConfigBuilder().withDefaults().withDotEnv().withEnv().build()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.App.JWTSecretKey)
	assert.Equal(t, "postgres://real-env", cfg.Storage.DB.DSN)
}

// TestWithDotEnv_MissingFileIgnored verifies that an absent dotenv file is
// not an error.
func TestWithDotEnv_MissingFileIgnored(t *testing.T) {
	t.Setenv("DOTENV", filepath.Join(t.TempDir(), "absent.env"))

	b := newConfigBuilder().withDotEnv()
	assert.NoError(t, b.err)
}

// ── validate ──────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *StructuredConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(cfg *StructuredConfig) {}},
		{name: "missing secret", mutate: func(cfg *StructuredConfig) { cfg.App.JWTSecretKey = "" }, wantErr: ErrInvalidAppConfigs},
		{name: "unsupported algorithm", mutate: func(cfg *StructuredConfig) { cfg.App.JWTAlgorithm = "RS256" }, wantErr: ErrInvalidAppConfigs},
		{name: "session shorter than refresh", mutate: func(cfg *StructuredConfig) { cfg.App.SessionExpireDays = 30 }, wantErr: ErrInvalidAppConfigs},
		{name: "zero session cap", mutate: func(cfg *StructuredConfig) { cfg.App.MaxActiveSessions = 0 }, wantErr: ErrInvalidAppConfigs},
		{name: "weak argon salt", mutate: func(cfg *StructuredConfig) { cfg.App.Argon.SaltLength = 4 }, wantErr: ErrInvalidAppConfigs},
		{name: "missing dsn", mutate: func(cfg *StructuredConfig) { cfg.Storage.DB.DSN = "" }, wantErr: ErrInvalidStorageConfigs},
		{name: "missing address", mutate: func(cfg *StructuredConfig) { cfg.Server.HTTPAddress = "" }, wantErr: ErrInvalidServerConfigs},
		{name: "no hash workers", mutate: func(cfg *StructuredConfig) { cfg.Workers.HashPoolSize = 0 }, wantErr: ErrInvalidWorkerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApp_Durations(t *testing.T) {
	app := defaultConfig().App
	assert.Equal(t, "15m0s", app.AccessTokenTTL().String())
	assert.Equal(t, "1440h0m0s", app.RefreshTokenTTL().String())
	assert.Equal(t, "4320h0m0s", app.SessionTTL().String())
}
