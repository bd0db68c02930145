package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Mailer selects the outbound email transport.
const (
	MailerResend = "resend"
	MailerSMTP   = "smtp"
)

// Config holds all runtime configuration. It is parsed from the
// environment exactly once at process start and passed down explicitly;
// components never read the environment themselves.
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"3000"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	DatabaseURL string `env:"DATABASE_URL"`

	Mailer       string `env:"MAILER" envDefault:"resend"`
	ResendAPIKey string `env:"RESEND_API_KEY"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@example.com"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load parses and validates configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.Mailer {
	case MailerResend:
		if c.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when MAILER=%s", MailerResend)
		}
	case MailerSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when MAILER=%s", MailerSMTP)
		}
	default:
		return fmt.Errorf("unknown MAILER %q", c.Mailer)
	}
	return nil
}
