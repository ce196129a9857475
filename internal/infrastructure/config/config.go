package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	PriceOracle PriceOracleConfig `mapstructure:"priceOracle"`
	Session     SessionConfig     `mapstructure:"session"`
	Trading     TradingConfig     `mapstructure:"trading"`
	Events      EventsConfig      `mapstructure:"events"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	SlowThreshold   time.Duration `mapstructure:"slowThreshold"`   // milliseconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"`
}

// PriceOracleConfig points at the quote service
type PriceOracleConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"` // seconds
}

// SessionConfig contains the session cookie settings
type SessionConfig struct {
	CookieName string        `mapstructure:"cookieName"`
	TTL        time.Duration `mapstructure:"ttl"` // minutes
	Secure     bool          `mapstructure:"secure"`
}

// TradingConfig contains account settings
type TradingConfig struct {
	InitialCash string `mapstructure:"initialCash"` // decimal dollars
}

// EventsConfig contains the trade event publisher settings.
// Events are only logged when no brokers are configured.
type EventsConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"` // seconds
}
