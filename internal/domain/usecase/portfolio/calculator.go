package portfolio

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/market"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
)

// Calculator values a user's holdings at current prices
type Calculator struct {
	uow    persistence.UnitOfWork
	oracle market.PriceOracle
	logger coreport.Logger
}

// NewCalculator creates a new portfolio calculator
func NewCalculator(uow persistence.UnitOfWork, oracle market.PriceOracle, logger coreport.Logger) *Calculator {
	return &Calculator{
		uow:    uow,
		oracle: oracle,
		logger: logger,
	}
}

// Compute prices every positive holding once and totals the result.
// A holding whose price cannot be fetched keeps its row with Err set and is left out of the total.
func (c *Calculator) Compute(ctx context.Context, userID uint64) (*entity.Portfolio, error) {
	log := coreport.LoggerFromContext(ctx, c.logger).With(map[string]any{"user_id": userID})

	user, err := c.uow.GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	holdings, err := c.uow.GetLedgerRepository(ctx).Holdings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}

	rows := make([]entity.PortfolioRow, 0, len(holdings))
	for _, h := range holdings {
		row := entity.PortfolioRow{Symbol: h.Symbol, Name: h.Name, Shares: h.Shares}

		quote, err := c.oracle.Lookup(ctx, h.Symbol)
		switch {
		case errors.Is(err, errs.ErrQuoteNotFound) || (err == nil && quote == nil):
			fault := errs.NewIntegrityFault(h.Symbol, errs.ErrQuoteNotFound).WithUser(userID)
			log.Error("Held stock has no price", fault.LogFields())
			row.Err = fault
		case err != nil:
			log.Error("Price lookup failed", map[string]any{"symbol": h.Symbol, "error": err.Error()})
			row.Err = err
		default:
			row.Price = quote.Price
			row.Value = quote.Cost(h.Shares)
			if quote.Name != "" {
				row.Name = quote.Name
			}
		}

		rows = append(rows, row)
	}

	portfolio := entity.NewPortfolio(userID, user.Cash(), rows)
	log.Debug("Portfolio computed", map[string]any{
		"holdings":   len(rows),
		"cash":       portfolio.Cash.String(),
		"total":      portfolio.Total.String(),
		"incomplete": portfolio.Incomplete,
	})
	return portfolio, nil
}

// History returns every ledger entry of the user, oldest first
func (c *Calculator) History(ctx context.Context, userID uint64) ([]*entity.LedgerEntry, error) {
	entries, err := c.uow.GetLedgerRepository(ctx).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// Quote looks up a symbol for display. Unknown and empty symbols yield a nil quote.
func (c *Calculator) Quote(ctx context.Context, symbol string) (*entity.Quote, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, nil
	}

	quote, err := c.oracle.Lookup(ctx, symbol)
	if errors.Is(err, errs.ErrQuoteNotFound) {
		return nil, nil
	}
	if err != nil {
		coreport.LoggerFromContext(ctx, c.logger).Error("Price lookup failed", map[string]any{
			"symbol": symbol,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("lookup %s: %w", symbol, err)
	}
	return quote, nil
}

// Compile-time check: ensure Calculator implements PortfolioUseCase
var _ usecase.PortfolioUseCase = (*Calculator)(nil)
