package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type TelegramConfig struct {
	Token            string        `yaml:"token"`
	ReminderInterval time.Duration `yaml:"reminder_interval"`
}

type PDFConfig struct {
	FontPath    string `yaml:"font_path"`
	CompanyName string `yaml:"company_name"`
}

type Config struct {
	Env    string `yaml:"env"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`
	Contracts struct {
		DefaultVATRate float64 `yaml:"default_vat_rate"`
	} `yaml:"contracts"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	PDF      PDFConfig      `yaml:"pdf"`
}

// Load reads the YAML file at path (a missing file is fine), applies .env
// and environment overrides, then fills defaults.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if cfg.Database.DSN == "" {
		return nil, errors.New("database url is required (database.url or DATABASE_URL)")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("jwt secret is required in production (auth.jwt_secret or JWT_SECRET)")
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Email.SMTPPassword = v
	}
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	if c.Auth.JWTSecret == "" && !c.IsProduction() {
		c.Auth.JWTSecret = "dev-secret-change-me"
	}
	if c.Telegram.ReminderInterval == 0 {
		c.Telegram.ReminderInterval = 15 * time.Minute
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.PDF.CompanyName == "" {
		c.PDF.CompanyName = "Agency CRM"
	}
}

func (c *Config) IsProduction() bool { return c.Env == "production" }
