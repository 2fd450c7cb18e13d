package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"subrelay/internal/pkg/validator"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Resend   ResendConfig   `mapstructure:"resend"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Webhooks WebhooksConfig `mapstructure:"webhooks"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url" validate:"required"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key" validate:"required"`
	WebhookSecret string `mapstructure:"webhook_secret" validate:"required"`
}

type ResendConfig struct {
	APIKey   string `mapstructure:"api_key" validate:"required"`
	Endpoint string `mapstructure:"endpoint" validate:"required,url"`
}

// NotifyConfig holds the fixed sender and the single operator recipient.
type NotifyConfig struct {
	From string `mapstructure:"from" validate:"required,email"`
	To   string `mapstructure:"to" validate:"required,email"`
}

type WebhooksConfig struct {
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	EventRetention time.Duration `mapstructure:"event_retention"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

var defaults = map[string]interface{}{
	"server.host":              "0.0.0.0",
	"server.port":              8080,
	"server.read_timeout":      15 * time.Second,
	"server.write_timeout":     15 * time.Second,
	"server.idle_timeout":      60 * time.Second,
	"database.url":             "",
	"database.password":        "",
	"database.max_connections": 10,
	"stripe.secret_key":        "",
	"stripe.webhook_secret":    "",
	"resend.api_key":           "",
	"resend.endpoint":          "https://api.resend.com/emails",
	"notify.from":              "",
	"notify.to":                "",
	"webhooks.max_body_bytes":  65536,
	"webhooks.event_retention": 720 * time.Hour,
	"webhooks.sweep_interval":  time.Hour,
	"logging.level":            "info",
	"logging.format":           "json",
	"logging.output":           "stdout",
	"logging.file_path":        "",
}

// Load reads an optional .env file, an optional yaml file at path, and the
// process environment (DATABASE_URL overrides database.url and so on). The
// result is validated; a missing required value is an error.
func Load(path string) (*Config, error) {
	// .env is a local development convenience; its absence is normal.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.Struct(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
