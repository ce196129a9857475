package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment variable the loader reads
const EnvPrefix = "STOCKSIM"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// Values from .env never replace variables already set in the process
	if err := loadDotEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile loads the first .env file found in the search paths
func loadDotEnvFile() error {
	var lastError error
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.slowThreshold", 200)  // milliseconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")

	v.SetDefault("priceOracle.baseURL", "https://cloud.iexapis.com/stable")
	v.SetDefault("priceOracle.timeout", 5) // seconds

	v.SetDefault("session.cookieName", "stocksim_session")
	v.SetDefault("session.ttl", 60*24) // minutes
	v.SetDefault("session.secure", false)

	v.SetDefault("trading.initialCash", "10000.00")

	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "trade.committed")
	v.SetDefault("events.writeTimeout", 5) // seconds
}

// getEnvironment determines the environment from STOCKSIM_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values.
// Durations are given as whole numbers in the unit their config key uses.
func processEnvOverrides(v *viper.Viper) {
	setString(v, "database.driver", "DB_DRIVER")
	setString(v, "database.host", "DB_HOST")
	setString(v, "database.port", "DB_PORT")
	setString(v, "database.username", "DB_USERNAME")
	setString(v, "database.password", "DB_PASSWORD")
	setString(v, "database.database", "DB_NAME")
	setString(v, "database.sslMode", "DB_SSL_MODE")
	setPositiveInt(v, "database.maxOpenConns", "DB_MAX_OPEN_CONNS")
	setPositiveInt(v, "database.maxIdleConns", "DB_MAX_IDLE_CONNS")
	setPositiveInt(v, "database.connMaxLifetime", "DB_CONN_MAX_LIFETIME_MINUTES")
	setPositiveInt(v, "database.connMaxIdleTime", "DB_CONN_MAX_IDLE_TIME_MINUTES")
	setPositiveInt(v, "database.queryTimeout", "DB_QUERY_TIMEOUT_SECONDS")
	setPositiveInt(v, "database.slowThreshold", "DB_SLOW_THRESHOLD_MS")
	setPositiveInt(v, "database.retryAttempts", "DB_RETRY_ATTEMPTS")
	setPositiveInt(v, "database.retryDelay", "DB_RETRY_DELAY_SECONDS")

	setString(v, "server.host", "SERVER_HOST")
	setPositiveInt(v, "server.port", "SERVER_PORT")

	setString(v, "logger.level", "LOGGER_LEVEL")

	setString(v, "priceOracle.baseURL", "PRICE_ORACLE_URL")
	setString(v, "priceOracle.apiKey", "API_KEY")
	setPositiveInt(v, "priceOracle.timeout", "PRICE_ORACLE_TIMEOUT_SECONDS")

	setString(v, "session.cookieName", "SESSION_COOKIE_NAME")
	setPositiveInt(v, "session.ttl", "SESSION_TTL_MINUTES")
	if secure := os.Getenv(EnvPrefix + "_SESSION_SECURE"); secure != "" {
		if b, err := strconv.ParseBool(secure); err == nil {
			v.Set("session.secure", b)
		}
	}

	setString(v, "trading.initialCash", "INITIAL_CASH")

	if brokers := os.Getenv(EnvPrefix + "_KAFKA_BROKERS"); brokers != "" {
		v.Set("events.brokers", splitList(brokers))
	}
	setString(v, "events.topic", "KAFKA_TOPIC")
}

func setString(v *viper.Viper, key, name string) {
	if value := os.Getenv(EnvPrefix + "_" + name); value != "" {
		v.Set(key, value)
	}
}

func setPositiveInt(v *viper.Viper, key, name string) {
	if value := getEnvInt(EnvPrefix+"_"+name, 0); value > 0 {
		v.Set(key, value)
	}
}

// Helper function to get environment variable as int
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	config.Server.ReadTimeout *= time.Second
	config.Server.WriteTimeout *= time.Second
	config.Server.IdleTimeout *= time.Second
	config.Server.ReadHeaderTimeout *= time.Second
	config.Server.ShutdownTimeout *= time.Second

	config.Database.ConnMaxLifetime *= time.Minute
	config.Database.ConnMaxIdleTime *= time.Minute
	config.Database.QueryTimeout *= time.Second
	config.Database.SlowThreshold *= time.Millisecond
	config.Database.RetryDelay *= time.Second

	config.PriceOracle.Timeout *= time.Second
	config.Session.TTL *= time.Minute
	config.Events.WriteTimeout *= time.Second
}
