package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/garyjia/claims-intake/internal/domain/adjudication"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig            `mapstructure:"server"`
	Auth         AuthConfig              `mapstructure:"auth"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Storage      StorageConfig           `mapstructure:"storage"`
	Policies     PoliciesConfig          `mapstructure:"policies"`
	Adjudication adjudication.Thresholds `mapstructure:"adjudication"`
	Logger       LoggerConfig            `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	APIPrefix    string        `mapstructure:"api_prefix"`
	Mode         string        `mapstructure:"mode"` // debug, release, test
}

// AuthConfig holds the static API key clients send in x-api-key
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig holds photo upload configuration
type StorageConfig struct {
	UploadDir      string `mapstructure:"upload_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// PoliciesConfig points at an optional YAML file of mock policies
type PoliciesConfig struct {
	FixturePath string `mapstructure:"fixture_path"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads .env (when present), then the optional YAML file at configPath,
// then environment variables. Later sources win.
func Load(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadForEngine reads the same sources as Load but only validates the
// adjudication thresholds and logger, for tools that never serve HTTP.
func LoadForEngine(configPath string) (*Config, error) {
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Adjudication.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: adjudication: %w", err)
	}

	return cfg, nil
}

func read(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports the variables in path without overriding ones already set
func loadDotEnv(path string) error {
	if err := gotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.api_prefix", "/api/v1")
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.path", "data/claims.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.max_upload_bytes", 10<<20)

	v.SetDefault("policies.fixture_path", "")

	v.SetDefault("adjudication.max_auto_approve_amount", adjudication.DefaultMaxAutoApproveAmount)
	v.SetDefault("adjudication.required_ai_confidence", adjudication.DefaultRequiredAIConfidence)
	v.SetDefault("adjudication.max_fraud_score", adjudication.DefaultMaxFraudScore)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names without a section prefix
	_ = v.BindEnv("auth.api_key", "API_KEY")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("storage.upload_dir", "UPLOAD_DIR")
	_ = v.BindEnv("policies.fixture_path", "POLICY_FIXTURE_PATH")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
	_ = v.BindEnv("server.port", "PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.APIKey) == "" {
		return fmt.Errorf("auth.api_key is required (set API_KEY)")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("server.api_prefix must start with /")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be one of debug, release, test, got %q", c.Server.Mode)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage.max_upload_bytes must be positive")
	}

	if err := c.Adjudication.Validate(); err != nil {
		return fmt.Errorf("adjudication: %w", err)
	}

	return nil
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
