package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/model"
)

// LedgerRepository implements the append-only trade ledger using GORM
type LedgerRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewLedgerRepository creates a new LedgerRepository instance
func NewLedgerRepository(db *gorm.DB, logger coreport.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *LedgerRepository) handleDatabaseError(operation string, err error, fields map[string]any) error {
	if r.errorClassifier.IsForeignKeyError(err) {
		// the only foreign key on the table points at users
		r.logger.Warn("Ledger entry references unknown user", fields)
		return errs.ErrUserNotFound
	}
	return databaseError(r.logger, r.errorClassifier, operation, err, errs.ErrNotFound, nil, fields)
}

func ledgerEntryToEntity(m *model.LedgerEntry) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:          m.ID,
		UserID:      m.UserID,
		Symbol:      m.Symbol,
		CompanyName: m.CompanyName,
		Shares:      m.Shares,
		Price:       m.Price,
		Total:       m.Total,
		CreatedAt:   m.CreatedAt,
	}
}

// Append stores a new ledger entry and sets its ID
func (r *LedgerRepository) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	entryModel := model.LedgerEntry{
		UserID:      entry.UserID,
		Symbol:      entry.Symbol,
		CompanyName: entry.CompanyName,
		Shares:      entry.Shares,
		Price:       entry.Price,
		Total:       entry.Total,
		CreatedAt:   entry.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Omit("User").Create(&entryModel).Error; err != nil {
		return r.handleDatabaseError("appending ledger entry", err, map[string]any{
			"user_id": entry.UserID,
			"symbol":  entry.Symbol,
		})
	}
	entry.ID = entryModel.ID

	r.logger.Debug("Ledger entry appended", map[string]any{
		"entry_id": entry.ID,
		"user_id":  entry.UserID,
		"symbol":   entry.Symbol,
		"shares":   entry.Shares,
	})
	return nil
}

// ListByUser returns every entry of the user, oldest first
func (r *LedgerRepository) ListByUser(ctx context.Context, userID uint64) ([]*entity.LedgerEntry, error) {
	var models []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing ledger entries", err, map[string]any{"user_id": userID})
	}

	entries := make([]*entity.LedgerEntry, 0, len(models))
	for i := range models {
		entries = append(entries, ledgerEntryToEntity(&models[i]))
	}
	return entries, nil
}

type holdingRow struct {
	Symbol string
	Name   string
	Shares int64
}

// Holdings returns the user's positive net positions, sorted by symbol
func (r *LedgerRepository) Holdings(ctx context.Context, userID uint64) ([]entity.Holding, error) {
	var rows []holdingRow
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("symbol, MAX(company_name) AS name, SUM(shares) AS shares").
		Where("user_id = ?", userID).
		Group("symbol").
		Having("SUM(shares) > 0").
		Order("symbol ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, r.handleDatabaseError("aggregating holdings", err, map[string]any{"user_id": userID})
	}

	holdings := make([]entity.Holding, 0, len(rows))
	for _, row := range rows {
		holdings = append(holdings, entity.Holding{Symbol: row.Symbol, Name: row.Name, Shares: row.Shares})
	}
	return holdings, nil
}

// HoldingOf returns the user's net shares of one symbol, zero when none are held
func (r *LedgerRepository) HoldingOf(ctx context.Context, userID uint64, symbol string) (int64, error) {
	var net int64
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("COALESCE(SUM(shares), 0)").
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Scan(&net).Error
	if err != nil {
		return 0, r.handleDatabaseError("summing holding", err, map[string]any{
			"user_id": userID,
			"symbol":  symbol,
		})
	}
	if net < 0 {
		net = 0
	}
	return net, nil
}
