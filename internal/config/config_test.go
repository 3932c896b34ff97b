package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/claims-intake/internal/domain/adjudication"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Auth.APIKey)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "/api/v1", cfg.Server.APIPrefix)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, adjudication.DefaultThresholds(), cfg.Adjudication)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
auth:
  api_key: from-file
storage:
  upload_dir: /var/claims/uploads
policies:
  fixture_path: configs/policies.yaml
adjudication:
  max_auto_approve_amount: 1000
  required_ai_confidence: 0.8
logger:
  level: debug
`)
	t.Setenv("API_KEY", "from-env")
	t.Setenv("ADJUDICATION_MAX_FRAUD_SCORE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/var/claims/uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "configs/policies.yaml", cfg.Policies.FixturePath)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, adjudication.Thresholds{
		MaxAutoApproveAmount: 1000,
		RequiredAIConfidence: 0.8,
		MaxFraudScore:        25,
	}, cfg.Adjudication)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.api_key is required")
}

func TestLoadForEngine_SkipsServerSettings(t *testing.T) {
	t.Setenv("API_KEY", "")

	cfg, err := LoadForEngine(writeConfig(t, `
adjudication:
  max_fraud_score: 30
`))
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Adjudication.MaxFraudScore)

	_, err = LoadForEngine(writeConfig(t, `
adjudication:
  required_ai_confidence: 2
`))
	assert.ErrorContains(t, err, "adjudication")
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Setenv("API_KEY", "secret")

	_, err := Load(writeConfig(t, "server: [\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:       ServerConfig{Port: 8000, APIPrefix: "/api/v1"},
			Auth:         AuthConfig{APIKey: "k"},
			Database:     DatabaseConfig{Path: "claims.db"},
			Storage:      StorageConfig{UploadDir: "uploads", MaxUploadBytes: 1024},
			Adjudication: adjudication.DefaultThresholds(),
		}
	}

	tests := []struct {
		name     string
		mutate   func(c *Config)
		contains string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad prefix", func(c *Config) { c.Server.APIPrefix = "api" }, "api_prefix"},
		{"bad mode", func(c *Config) { c.Server.Mode = "production" }, "server.mode"},
		{"no database", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"no upload dir", func(c *Config) { c.Storage.UploadDir = "" }, "upload_dir"},
		{"zero upload limit", func(c *Config) { c.Storage.MaxUploadBytes = 0 }, "max_upload_bytes"},
		{"confidence above one", func(c *Config) { c.Adjudication.RequiredAIConfidence = 1.5 }, "RequiredAIConfidence"},
		{"negative amount", func(c *Config) { c.Adjudication.MaxAutoApproveAmount = -1 }, "MaxAutoApproveAmount"},
		{"fraud over 100", func(c *Config) { c.Adjudication.MaxFraudScore = 101 }, "MaxFraudScore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.contains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
