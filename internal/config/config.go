package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/harborloop/demoday/internal/bitable"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Stage  StageConfig  `yaml:"stage"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"DEMODAY_SERVER_HOST"`
	Port int    `yaml:"port" env:"DEMODAY_SERVER_PORT"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	// Backend is "bitable" (remote store) or "sqlite" (local file).
	Backend string        `yaml:"backend" env:"DEMODAY_STORE_BACKEND"`
	SQLite  SQLiteConfig  `yaml:"sqlite"`
	Bitable BitableConfig `yaml:"bitable"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"DEMODAY_SQLITE_PATH"`
}

type BitableConfig struct {
	BaseURL        string         `yaml:"base_url" env:"DEMODAY_BITABLE_BASE_URL"`
	AppID          string         `yaml:"app_id" env:"DEMODAY_BITABLE_APP_ID"`
	AppSecret      string         `yaml:"app_secret" env:"DEMODAY_BITABLE_APP_SECRET"`
	AppToken       string         `yaml:"app_token" env:"DEMODAY_BITABLE_APP_TOKEN"`
	TimeoutSeconds int            `yaml:"timeout_seconds" env:"DEMODAY_BITABLE_TIMEOUT_SECONDS"`
	MaxTries       int            `yaml:"max_tries" env:"DEMODAY_BITABLE_MAX_TRIES"`
	PageSize       int            `yaml:"page_size" env:"DEMODAY_BITABLE_PAGE_SIZE"`
	Tables         bitable.Tables `yaml:"tables"`
}

// ClientConfig converts the section into adapter settings.
func (c BitableConfig) ClientConfig() bitable.Config {
	return bitable.Config{
		BaseURL:   c.BaseURL,
		AppID:     c.AppID,
		AppSecret: c.AppSecret,
		AppToken:  c.AppToken,
		Timeout:   time.Duration(c.TimeoutSeconds) * time.Second,
		MaxTries:  c.MaxTries,
		PageSize:  c.PageSize,
	}
}

type StageConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" env:"DEMODAY_STAGE_CACHE_TTL_SECONDS"`
}

// CacheTTL returns the stage cache staleness window.
func (c StageConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

type AuthConfig struct {
	Secret        string `yaml:"secret" env:"DEMODAY_AUTH_SECRET"`
	Issuer        string `yaml:"issuer" env:"DEMODAY_AUTH_ISSUER"`
	TokenTTLHours int    `yaml:"token_ttl_hours" env:"DEMODAY_AUTH_TOKEN_TTL_HOURS"`
	AdminToken    string `yaml:"admin_token" env:"DEMODAY_ADMIN_TOKEN"`
	PipelineToken string `yaml:"pipeline_token" env:"DEMODAY_PIPELINE_TOKEN"`
}

// TokenTTL returns the investor session token lifetime.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

type LogConfig struct {
	Level string `yaml:"level" env:"DEMODAY_LOG_LEVEL"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Store: StoreConfig{
			Backend: "bitable",
			SQLite:  SQLiteConfig{Path: "demoday.db"},
			Bitable: BitableConfig{
				BaseURL:        "https://open.feishu.cn/open-apis",
				TimeoutSeconds: 10,
				MaxTries:       4,
				PageSize:       500,
			},
		},
		Stage: StageConfig{CacheTTLSeconds: 60},
		Auth: AuthConfig{
			Issuer:        "demoday",
			TokenTTLHours: 12,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("DEMODAY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
