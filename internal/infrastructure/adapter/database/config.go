package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/config"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config represents database configuration
type Config struct {
	Driver          string
	Host            string
	Port            string
	Username        string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
	SlowThreshold   time.Duration
	LogLevel        string
	RetryAttempts   int
	RetryDelay      time.Duration
}

// NewConfig builds the database configuration from the application configuration
func NewConfig(cfg config.DatabaseConfig, logLevel string) *Config {
	return &Config{
		Driver:          cfg.Driver,
		Host:            cfg.Host,
		Port:            cfg.Port,
		Username:        cfg.Username,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		QueryTimeout:    cfg.QueryTimeout,
		SlowThreshold:   cfg.SlowThreshold,
		LogLevel:        logLevel,
		RetryAttempts:   cfg.RetryAttempts,
		RetryDelay:      cfg.RetryDelay,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Driver)
	}

	if c.Host == "" {
		return errors.New("database host is required")
	}
	if c.Username == "" {
		return errors.New("database username is required")
	}
	if c.Database == "" {
		return errors.New("database name is required")
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
		"prefer":      true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s", c.SSLMode)
	}

	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max open connections must be positive, got: %d", c.MaxOpenConns)
	}
	if c.MaxIdleConns <= 0 {
		return fmt.Errorf("max idle connections must be positive, got: %d", c.MaxIdleConns)
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query timeout must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got: %d", c.RetryAttempts)
	}

	return nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode,
	)
}
