// Package config loads HOMESYNC_* environment configuration for both binaries.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/iudanet/homesync/internal/models"
)

// Log настройки логирования, общие для сервера и клиента
type Log struct {
	Level      string `env:"HOMESYNC_LOG_LEVEL"        envDefault:"info"`
	Format     string `env:"HOMESYNC_LOG_FORMAT"       envDefault:"text"` // text или json
	File       string `env:"HOMESYNC_LOG_FILE"`                           // пусто: писать в stdout/stderr
	MaxSizeMB  int    `env:"HOMESYNC_LOG_MAX_SIZE_MB"  envDefault:"50"`
	MaxBackups int    `env:"HOMESYNC_LOG_MAX_BACKUPS"  envDefault:"5"`
	MaxAgeDays int    `env:"HOMESYNC_LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// Server конфигурация realtime hub и sync API
type Server struct {
	Addr            string        `env:"HOMESYNC_ADDR"             envDefault:":8080"`
	DBPath          string        `env:"HOMESYNC_DB"               envDefault:"homesync.db"`
	JWTSecret       string        `env:"HOMESYNC_JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"HOMESYNC_ACCESS_TOKEN_TTL" envDefault:"720h"`
	AllowedOrigins  []string      `env:"HOMESYNC_ALLOWED_ORIGINS"  envSeparator:","`
	RateLimit       float64       `env:"HOMESYNC_RATE_LIMIT"       envDefault:"20"` // запросов в секунду на IP
	RateBurst       int           `env:"HOMESYNC_RATE_BURST"       envDefault:"40"`
	ShutdownTimeout time.Duration `env:"HOMESYNC_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Log             Log
}

// Client конфигурация CLI клиента. Флаги командной строки имеют приоритет
type Client struct {
	ServerURL     string                   `env:"HOMESYNC_SERVER"             envDefault:"http://localhost:8080"`
	DBPath        string                   `env:"HOMESYNC_CLIENT_DB"          envDefault:"homesync-client.db"`
	Token         string                   `env:"HOMESYNC_TOKEN"`
	Household     string                   `env:"HOMESYNC_HOUSEHOLD"`
	Strategy      string                   `env:"HOMESYNC_STRATEGY"           envDefault:"merge"`
	SyncInterval  time.Duration            `env:"HOMESYNC_SYNC_INTERVAL"      envDefault:"30s"`
	Tolerance     time.Duration            `env:"HOMESYNC_CONFLICT_TOLERANCE" envDefault:"1s"`
	KindTolerance map[string]time.Duration `env:"HOMESYNC_KIND_TOLERANCE"` // inventory:2s,recipes:5s
	MaxRetries    int                      `env:"HOMESYNC_MAX_RETRIES"        envDefault:"8"`
	Log           Log
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer читает и проверяет конфигурацию сервера
func LoadServer() (*Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет конфигурацию сервера
func (c *Server) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("HOMESYNC_JWT_SECRET must be at least 32 characters")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("HOMESYNC_ACCESS_TOKEN_TTL must be positive")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("HOMESYNC_RATE_LIMIT and HOMESYNC_RATE_BURST must be positive")
	}
	return validateLog(c.Log)
}

// LoadClient читает конфигурацию клиента. Проверка выполняется после применения флагов
func LoadClient() (*Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет конфигурацию клиента
func (c *Client) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server URL is required")
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if _, err := models.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.SyncInterval <= 0 {
		return errors.New("sync interval must be positive")
	}
	if c.Tolerance < 0 {
		return errors.New("conflict tolerance must not be negative")
	}
	if c.MaxRetries < 1 {
		return errors.New("max retries must be at least 1")
	}
	if _, err := c.KindTolerances(); err != nil {
		return err
	}
	return validateLog(c.Log)
}

// KindTolerances возвращает переопределения окна допуска по видам данных
func (c *Client) KindTolerances() (map[models.DataKind]time.Duration, error) {
	out := make(map[models.DataKind]time.Duration, len(c.KindTolerance))
	for name, d := range c.KindTolerance {
		kind, err := models.ParseDataKind(name)
		if err != nil {
			return nil, fmt.Errorf("HOMESYNC_KIND_TOLERANCE: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("HOMESYNC_KIND_TOLERANCE: negative tolerance for %s", kind)
		}
		out[kind] = d
	}
	return out, nil
}

func validateLog(l Log) error {
	if _, err := parseLevel(l.Level); err != nil {
		return err
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	return nil
}
