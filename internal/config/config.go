package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"medication-reminder/internal/adapters/backend"
	"medication-reminder/internal/platform/logger"

	"github.com/spf13/viper"
)

type Config struct {
	BackendURL       string `mapstructure:"BACKEND_URL"`
	RequestTimeoutMS int    `mapstructure:"REQUEST_TIMEOUT_MS"`
	SpreadsheetID    string `mapstructure:"SPREADSHEET_ID"`
	VoiceFolderID    string `mapstructure:"VOICE_FOLDER_ID"`

	Port      string `mapstructure:"PORT"`
	DBDSN     string `mapstructure:"DB_DSN"`
	PublicURL string `mapstructure:"PUBLIC_URL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`
}

var keys = []string{
	"BACKEND_URL",
	"REQUEST_TIMEOUT_MS",
	"SPREADSHEET_ID",
	"VOICE_FOLDER_ID",
	"PORT",
	"DB_DSN",
	"PUBLIC_URL",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"APP_NAME",
}

// Load lee .env (si existe) y el entorno. No valida: cada comando llama a Validate
// solo si necesita hablar con el backend.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("REQUEST_TIMEOUT_MS", 30000)
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "medication-reminder")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env es opcional, pero si existe tiene que poder leerse
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BackendURL = strings.TrimSpace(cfg.BackendURL)
	cfg.PublicURL = strings.TrimSpace(cfg.PublicURL)
	return cfg, nil
}

func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate exige un BACKEND_URL http(s) usable.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("BACKEND_URL is not a valid url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute http(s) url, got %q", c.BackendURL)
	}
	if c.RequestTimeoutMS < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_MS must not be negative, got %d", c.RequestTimeoutMS)
	}
	return nil
}

func (c *Config) Logger() logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(c.LogLevel),
		Format: logger.ParseFormat(c.LogFormat),
		App:    c.AppName,
	})
}

func (c *Config) Backend(log logger.Logger) backend.Config {
	return backend.Config{
		Endpoint:      c.BackendURL,
		Timeout:       c.RequestTimeout(),
		SpreadsheetID: c.SpreadsheetID,
		VoiceFolderID: c.VoiceFolderID,
		Logger:        log,
	}
}
