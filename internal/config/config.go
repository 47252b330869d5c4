package config

import (
	"errors"
	"fmt"
	"os"

	"turfkiosk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig         `yaml:"app"`
	Upstream   UpstreamConfig    `yaml:"upstream"`
	Kiosk      KioskConfig       `yaml:"kiosk"`
	Telegram   TelegramConfig    `yaml:"telegram"`
	Redis      RedisConfig       `yaml:"redis"`
	Sessions   SessionsConfig    `yaml:"sessions"`
	History    HistoryConfig     `yaml:"history"`
	Logging    LoggingConfig     `yaml:"logging"`
	Monitoring MonitoringConfig  `yaml:"monitoring"`
	Facilities []models.Facility `yaml:"facilities"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// UpstreamConfig points the kiosk at the booking server.
type UpstreamConfig struct {
	BaseURL        string `yaml:"base_url"`
	CSRFToken      string `yaml:"csrf_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type KioskConfig struct {
	Enabled        bool            `yaml:"enabled"`
	Port           int             `yaml:"port"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SessionsConfig struct {
	TTLSeconds             int `yaml:"ttl_seconds"`
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
	RateLimitRequests      int `yaml:"rate_limit_requests"`
	RateLimitWindowSeconds int `yaml:"rate_limit_window_seconds"`
}

type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	ExportPath string `yaml:"export_path"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	HealthCheckPort   int  `yaml:"health_check_port"`
}

func Load(configPath string) (*Config, error) {
	// .env supplements the environment when the file exists
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the YAML before parsing
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream base_url is required")
	}

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE") {
		return errors.New("telegram bot token is required when telegram is enabled")
	}

	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history path is required when history is enabled")
	}

	return ValidateFacilities(c.Facilities)
}

func ValidateFacilities(facilities []models.Facility) error {
	seen := make(map[string]bool)
	for _, f := range facilities {
		if f.ID == "" {
			return fmt.Errorf("facility '%s' has empty ID", f.Name)
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate facility ID found: %s", f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "turfkiosk"
	}
	if c.Kiosk.Port == 0 {
		c.Kiosk.Port = 8080
	}
	if c.Kiosk.RateLimit.RPS == 0 {
		c.Kiosk.RateLimit.RPS = 10
	}
	if c.Kiosk.RateLimit.Burst == 0 {
		c.Kiosk.RateLimit.Burst = 20
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 15
	}
	if c.Sessions.TTLSeconds == 0 {
		c.Sessions.TTLSeconds = models.DefaultSessionTTL
	}
	if c.Sessions.RefreshIntervalSeconds == 0 {
		c.Sessions.RefreshIntervalSeconds = models.DefaultRefreshInterval
	}
	if c.Sessions.RateLimitRequests == 0 {
		c.Sessions.RateLimitRequests = models.RateLimitRequests
	}
	if c.Sessions.RateLimitWindowSeconds == 0 {
		c.Sessions.RateLimitWindowSeconds = models.RateLimitWindow
	}
	if c.History.Enabled && c.History.ExportPath == "" {
		c.History.ExportPath = "data/exports"
	}
	if c.Monitoring.HealthCheckPort == 0 && c.Monitoring.PrometheusEnabled {
		c.Monitoring.HealthCheckPort = 9090
	}
}
