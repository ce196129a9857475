package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/database/migration"
)

// Manager manages the postgres connection and everything built on it
type Manager struct {
	config            *Config
	db                *gorm.DB
	logger            coreport.Logger
	connectionMonitor *ConnectionPoolMonitor
	timeProvider      coreport.TimeProvider
}

// NewManager creates a new database manager
func NewManager(config *Config, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	return &Manager{
		config:       config,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Connect opens the connection, retrying up to RetryAttempts times, and verifies it with a ping
func (m *Manager) Connect(ctx context.Context) (*gorm.DB, error) {
	m.logger.Info("Connecting to database", map[string]any{
		"driver": m.config.Driver,
		"host":   m.config.Host,
		"port":   m.config.Port,
		"name":   m.config.Database,
	})

	var (
		gormDB *gorm.DB
		err    error
	)
	for attempt := 0; attempt < m.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			m.logger.Warn("Retrying database connection", map[string]any{
				"attempt": attempt + 1,
				"of":      m.config.RetryAttempts,
				"delay":   m.config.RetryDelay.String(),
			})
			select {
			case <-time.After(m.config.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		gormDB, err = m.open(ctx)
		if err == nil {
			break
		}

		m.logger.Error("Failed to connect to database", map[string]any{
			"error":   err.Error(),
			"attempt": attempt + 1,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", m.config.RetryAttempts, err)
	}

	m.logger.Info("Successfully connected to database", map[string]any{
		"host":            m.config.Host,
		"name":            m.config.Database,
		"max_open_conns":  m.config.MaxOpenConns,
		"max_idle_conns":  m.config.MaxIdleConns,
		"query_timeout_s": m.config.QueryTimeout.Seconds(),
	})

	m.db = gormDB
	if sqlDB, err := gormDB.DB(); err == nil {
		m.connectionMonitor = NewConnectionPoolMonitor(sqlDB.Stats, m.logger)
		m.connectionMonitor.Start(30 * time.Second)
	}

	return m.db, nil
}

func (m *Manager) open(ctx context.Context) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(m.config.DSN()), &gorm.Config{
		Logger: NewDatabaseLogger(m.logger, m.timeProvider, m.config.LogLevel, m.config.SlowThreshold),
		NowFunc: func() time.Time {
			return m.timeProvider.Now()
		},
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(m.config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(m.config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(m.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(m.config.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, m.config.QueryTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, nil
}

// DB returns the GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close stops pool monitoring and closes the database connection
func (m *Manager) Close() error {
	m.logger.Info("Closing database connection", nil)

	if m.connectionMonitor != nil {
		m.connectionMonitor.Stop()
	}
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// Migrate brings the schema to the newest version
func (m *Manager) Migrate(ctx context.Context) error {
	return migration.NewMigrationManager(m.db, m.logger, m.timeProvider).MigrateAll(ctx)
}

// CreateUnitOfWork creates a new UnitOfWork instance
func (m *Manager) CreateUnitOfWork() persistence.UnitOfWork {
	return NewUnitOfWork(m.db, m.logger, m.timeProvider)
}
