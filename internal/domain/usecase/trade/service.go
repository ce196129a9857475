package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/event"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/market"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
)

// Service settles market orders. Each order is one unit of work: the user row is
// locked, cash is checked, the ledger entry and the new cash are written, then committed.
type Service struct {
	uow          persistence.UnitOfWork
	oracle       market.PriceOracle
	publisher    event.Publisher
	validator    *OrderValidator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewTradeService creates a new trade service
func NewTradeService(
	uow persistence.UnitOfWork,
	oracle market.PriceOracle,
	publisher event.Publisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		oracle:       oracle,
		publisher:    publisher,
		validator:    NewOrderValidator(),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Buy validates and settles a purchase at the current server-side quote
func (s *Service) Buy(ctx context.Context, order usecase.BuyOrder) (*usecase.TradeResult, error) {
	log := s.orderLogger(ctx, order.UserID, entity.SideBuy)

	symbol, err := s.validator.BuySymbol(order.Symbol)
	if err != nil {
		return nil, s.reject(log, order.UserID, err)
	}

	quote, err := s.oracle.Lookup(ctx, symbol)
	if errors.Is(err, errs.ErrQuoteNotFound) || (err == nil && quote == nil) {
		return nil, s.reject(log, order.UserID, errs.NewNotFoundError(ReasonUnknownSymbol).WithSymbol(symbol))
	}
	if err != nil {
		log.Error("Price lookup failed", map[string]any{"symbol": symbol, "error": err.Error()})
		return nil, fmt.Errorf("lookup %s: %w", symbol, err)
	}

	shares, err := s.validator.Shares(order.Shares)
	if err != nil {
		return nil, s.reject(log, order.UserID, err)
	}

	cost := quote.Cost(shares)
	var entry *entity.LedgerEntry
	var cashAfter decimal.Decimal

	err = s.inTransaction(ctx, log, func(txCtx context.Context) error {
		users := s.uow.GetUserRepository(txCtx)
		user, err := users.GetByIDForUpdate(txCtx, order.UserID)
		if err != nil {
			return err
		}

		if err := user.Debit(cost, s.timeProvider); err != nil {
			return err
		}

		entry, err = entity.NewBuyEntry(user.ID, quote, shares, s.timeProvider)
		if err != nil {
			return err
		}
		if err := s.uow.GetLedgerRepository(txCtx).Append(txCtx, entry); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
		if err := users.UpdateCash(txCtx, user.ID, user.Cash()); err != nil {
			return fmt.Errorf("update cash: %w", err)
		}

		cashAfter = user.Cash()
		return nil
	})
	if err != nil {
		return nil, s.reject(log, order.UserID, err)
	}

	s.settled(ctx, log, entry, cashAfter)
	return &usecase.TradeResult{Entry: entry, Cash: cashAfter.String(), Message: MessageBought}, nil
}

// Sell validates and settles a sale of held shares at the current quote
func (s *Service) Sell(ctx context.Context, order usecase.SellOrder) (*usecase.TradeResult, error) {
	log := s.orderLogger(ctx, order.UserID, entity.SideSell)

	symbol, err := s.validator.SellSymbol(order.Symbol)
	if err != nil {
		return nil, s.reject(log, order.UserID, err)
	}

	shares, err := s.validator.Shares(order.Shares)
	if err != nil {
		return nil, s.reject(log, order.UserID, err)
	}

	held, err := s.uow.GetLedgerRepository(ctx).HoldingOf(ctx, order.UserID, symbol)
	if err != nil {
		return nil, fmt.Errorf("read holding: %w", err)
	}
	if err := s.validator.Holding(symbol, held, shares); err != nil {
		return nil, s.reject(log, order.UserID, err)
	}

	quote, err := s.oracle.Lookup(ctx, symbol)
	if errors.Is(err, errs.ErrQuoteNotFound) || (err == nil && quote == nil) {
		fault := errs.NewIntegrityFault(symbol, errs.ErrQuoteNotFound).WithUser(order.UserID)
		log.Error("Held stock has no price", fault.LogFields())
		return nil, fault
	}
	if err != nil {
		log.Error("Price lookup failed", map[string]any{"symbol": symbol, "error": err.Error()})
		return nil, fmt.Errorf("lookup %s: %w", symbol, err)
	}

	var entry *entity.LedgerEntry
	var cashAfter decimal.Decimal

	err = s.inTransaction(ctx, log, func(txCtx context.Context) error {
		users := s.uow.GetUserRepository(txCtx)
		user, err := users.GetByIDForUpdate(txCtx, order.UserID)
		if err != nil {
			return err
		}

		// Another sale may have committed since the first check
		ledger := s.uow.GetLedgerRepository(txCtx)
		held, err := ledger.HoldingOf(txCtx, user.ID, symbol)
		if err != nil {
			return fmt.Errorf("read holding: %w", err)
		}
		if err := s.validator.Holding(symbol, held, shares); err != nil {
			return err
		}

		entry, err = entity.NewSellEntry(user.ID, quote, shares, s.timeProvider)
		if err != nil {
			return err
		}
		if err := ledger.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}

		user.Credit(entry.Total.Neg(), s.timeProvider)
		if err := users.UpdateCash(txCtx, user.ID, user.Cash()); err != nil {
			return fmt.Errorf("update cash: %w", err)
		}

		cashAfter = user.Cash()
		return nil
	})
	if err != nil {
		return nil, s.reject(log, order.UserID, err)
	}

	s.settled(ctx, log, entry, cashAfter)
	return &usecase.TradeResult{Entry: entry, Cash: cashAfter.String(), Message: MessageSold}, nil
}

// SellableHoldings lists the positions the sell form can offer
func (s *Service) SellableHoldings(ctx context.Context, userID uint64) ([]entity.Holding, error) {
	return s.uow.GetLedgerRepository(ctx).Holdings(ctx, userID)
}

// inTransaction runs fn in a unit of work, committing on success and rolling back otherwise
func (s *Service) inTransaction(ctx context.Context, log coreport.Logger, fn func(txCtx context.Context) error) (err error) {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.uow.Rollback(txCtx)
			panic(p)
		}
		if err != nil {
			if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
				log.Error("Failed to roll back order", map[string]any{"error": rbErr.Error()})
			}
		}
	}()

	if err = fn(txCtx); err != nil {
		return err
	}
	return s.uow.Commit(txCtx)
}

func (s *Service) orderLogger(ctx context.Context, userID uint64, side entity.Side) coreport.Logger {
	return coreport.LoggerFromContext(ctx, s.logger).With(map[string]any{
		"user_id": userID,
		"side":    string(side),
	})
}

// reject logs a refused order; user-facing rejections are not server faults
func (s *Service) reject(log coreport.Logger, userID uint64, err error) error {
	var rejection *errs.RejectionError
	if errors.As(err, &rejection) {
		if rejection.UserID == 0 {
			rejection.WithUser(userID)
		}
		log.Info("Order rejected", rejection.LogFields())
		return err
	}
	log.Error("Order failed", errs.LogFields(err))
	return err
}

// publishTimeout caps how long a settled order waits on the event broker
const publishTimeout = 2 * coreport.Second

// settled logs the committed order and publishes it. Publishing is best effort
// and runs on its own deadline, detached from the request's cancellation.
func (s *Service) settled(ctx context.Context, log coreport.Logger, entry *entity.LedgerEntry, cashAfter decimal.Decimal) {
	log.Info("Order settled", map[string]any{
		"entry_id":   entry.ID,
		"symbol":     entry.Symbol,
		"shares":     entry.Shares,
		"price":      entry.Price.String(),
		"total":      entry.Total.String(),
		"cash_after": cashAfter.String(),
	})

	pubCtx, cancel := s.timeProvider.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := entity.NewTradeCommitted(entry, cashAfter)
	if err := s.publisher.Publish(pubCtx, evt.Key(), evt); err != nil {
		log.Warn("Failed to publish trade event", map[string]any{
			"entry_id": entry.ID,
			"topic":    event.TopicTradeCommitted,
			"error":    err.Error(),
		})
	}
}

// Compile-time check: ensure Service implements TradeUseCase
var _ usecase.TradeUseCase = (*Service)(nil)
