package migration

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/model"
)

// Step is one schema version. Steps are applied in order, each in its own transaction.
type Step struct {
	Version string
	Details string
	Apply   func(ctx context.Context, tx *gorm.DB) error
}

// Steps lists every schema version, oldest first
var Steps = []Step{
	{
		Version: "1.0.0",
		Details: "users, ledger entries and sessions",
		Apply: func(ctx context.Context, tx *gorm.DB) error {
			return tx.WithContext(ctx).AutoMigrate(
				&model.User{},
				&model.LedgerEntry{},
				&model.Session{},
			)
		},
	},
	{
		Version: "1.1.0",
		Details: "non-negative cash and non-zero share checks",
		Apply: func(ctx context.Context, tx *gorm.DB) error {
			return execAll(ctx, tx,
				`ALTER TABLE users DROP CONSTRAINT IF EXISTS chk_users_cash_non_negative`,
				`ALTER TABLE users ADD CONSTRAINT chk_users_cash_non_negative CHECK (cash >= 0)`,
				`ALTER TABLE ledger_entries DROP CONSTRAINT IF EXISTS chk_ledger_entries_shares_non_zero`,
				`ALTER TABLE ledger_entries ADD CONSTRAINT chk_ledger_entries_shares_non_zero CHECK (shares <> 0)`,
			)
		},
	},
	{
		Version: "1.2.0",
		Details: "history ordering index",
		Apply: func(ctx context.Context, tx *gorm.DB) error {
			return execAll(ctx, tx,
				`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_created ON ledger_entries (user_id, created_at, id)`,
			)
		},
	},
}

func execAll(ctx context.Context, tx *gorm.DB, statements ...string) error {
	for _, statement := range statements {
		if err := tx.WithContext(ctx).Exec(statement).Error; err != nil {
			return err
		}
	}
	return nil
}

// CurrentSchemaVersion is the version of the newest step
func CurrentSchemaVersion() string {
	return Steps[len(Steps)-1].Version
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	steps        []Step
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	return &MigrationManager{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		steps:        Steps,
	}
}

// MigrateAll applies every step newer than the recorded version
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion(),
	})

	if err := m.db.WithContext(ctx).AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		m.logger.Error("Failed to check current schema version", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	pending, err := pendingSteps(m.steps, currentVersion)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	for _, step := range pending {
		m.logger.Info("Applying schema version", map[string]any{
			"from":    currentVersion,
			"version": step.Version,
			"details": step.Details,
		})

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := step.Apply(ctx, tx); err != nil {
				return err
			}
			return tx.Create(&model.MigrationVersion{
				Version:   step.Version,
				AppliedAt: m.timeProvider.Now(),
				Details:   step.Details,
			}).Error
		})
		if err != nil {
			m.logger.Error("Failed to apply schema version", map[string]any{
				"error":   err.Error(),
				"version": step.Version,
			})
			return fmt.Errorf("migration %s: %w", step.Version, err)
		}
		currentVersion = step.Version
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": currentVersion,
	})
	return nil
}

// GetCurrentVersion gets the current migration version, empty for a fresh database
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	var version model.MigrationVersion
	err := m.db.WithContext(ctx).Order("applied_at desc, id desc").First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return version.Version, nil
}

// pendingSteps returns the steps after current. An unknown current version is an error
// rather than a reason to re-run everything.
func pendingSteps(steps []Step, current string) ([]Step, error) {
	if current == "" {
		return steps, nil
	}
	for i, step := range steps {
		if step.Version == current {
			return steps[i+1:], nil
		}
	}
	return nil, fmt.Errorf("database schema version %q is not known to this build", current)
}
