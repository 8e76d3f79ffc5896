package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"CHARGEHUB_HTTP_PORT"`
	} `yaml:"http"`
	Storage struct {
		Driver string `yaml:"driver" env:"CHARGEHUB_STORAGE_DRIVER"`
		DSN    string `yaml:"dsn" env:"CHARGEHUB_POSTGRES_DSN"`
		Seed   bool   `yaml:"seed" env:"CHARGEHUB_STORAGE_SEED"`
	} `yaml:"storage"`
	Redis struct {
		Addr         string `yaml:"addr" env:"CHARGEHUB_REDIS_ADDR"`
		Password     string `yaml:"password" env:"CHARGEHUB_REDIS_PASSWORD"`
		CacheTTLSecs int    `yaml:"cacheTtlSeconds" env:"CHARGEHUB_REDIS_CACHE_TTL_SECONDS"`
	} `yaml:"redis"`
	JWT struct {
		Secret           string `yaml:"secret" env:"CHARGEHUB_JWT_SECRET"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"CHARGEHUB_JWT_EXPIRES_MINUTES"`
	} `yaml:"jwt"`
	// Admin, when set, names the account bootstrapped with the admin role at
	// startup. The public register endpoint only ever creates plain users.
	Admin struct {
		Username string `yaml:"username" env:"CHARGEHUB_ADMIN_USERNAME"`
		Email    string `yaml:"email" env:"CHARGEHUB_ADMIN_EMAIL"`
		Password string `yaml:"password" env:"CHARGEHUB_ADMIN_PASSWORD"`
		Name     string `yaml:"name" env:"CHARGEHUB_ADMIN_NAME"`
	} `yaml:"admin"`
}

// Load reads configuration and applies validated defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Storage.Driver = DriverMemory
	cfg.Storage.Seed = true
	cfg.Redis.CacheTTLSecs = 60
	cfg.JWT.ExpiresInMinutes = 60

	if err := loadInto(cfg); err != nil {
		return nil, err
	}

	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.Storage.DSN == "" {
			return nil, errors.New("config: postgres DSN is required for postgres driver")
		}
	default:
		return nil, fmt.Errorf("config: unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if cfg.JWT.ExpiresInMinutes <= 0 {
		cfg.JWT.ExpiresInMinutes = 60
	}

	if cfg.Admin.Username != "" {
		if cfg.Admin.Password == "" {
			return nil, errors.New("config: admin password is required when admin username is set")
		}
		if !strings.Contains(cfg.Admin.Email, "@") {
			return nil, errors.New("config: admin email is required when admin username is set")
		}
	}

	return cfg, nil
}

// HTTPAddress ensures we always return a host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts the configured expiry to a duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}

// CacheTTL converts the configured snapshot TTL to a duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSecs <= 0 {
		return time.Minute
	}
	return time.Duration(c.Redis.CacheTTLSecs) * time.Second
}
