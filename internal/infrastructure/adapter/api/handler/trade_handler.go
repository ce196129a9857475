package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/view"
)

// TradeHandler handles the buy and sell pages
type TradeHandler struct {
	base
	trades usecase.TradeUseCase
}

// NewTradeHandler creates a new trade handler instance
func NewTradeHandler(trades usecase.TradeUseCase, sessions usecase.SessionUseCase, logger coreport.Logger) *TradeHandler {
	return &TradeHandler{
		base:   base{sessions: sessions, logger: logger},
		trades: trades,
	}
}

// BuyForm handles GET /buy
func (h *TradeHandler) BuyForm(c *gin.Context) {
	c.HTML(http.StatusOK, view.Buy, h.page(c, "Buy"))
}

// Buy handles POST /buy
func (h *TradeHandler) Buy(c *gin.Context) {
	var form dto.TradeForm
	if err := c.ShouldBind(&form); err != nil {
		h.apologize(c, errs.NewValidationError("malformed form"))
		return
	}

	id := identity(c)
	result, err := h.trades.Buy(c.Request.Context(), usecase.BuyOrder{
		UserID: id.UserID,
		Symbol: form.Symbol,
		Shares: form.Shares,
	})
	if err != nil {
		h.apologize(c, err)
		return
	}

	h.flashAndRedirect(c, id.Token, result.Message)
}

// SellForm handles GET /sell
func (h *TradeHandler) SellForm(c *gin.Context) {
	holdings, err := h.trades.SellableHoldings(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.apologize(c, err)
		return
	}

	c.HTML(http.StatusOK, view.Sell, dto.SellPage{
		Page:     h.page(c, "Sell"),
		Holdings: holdings,
	})
}

// Sell handles POST /sell
func (h *TradeHandler) Sell(c *gin.Context) {
	var form dto.TradeForm
	if err := c.ShouldBind(&form); err != nil {
		h.apologize(c, errs.NewValidationError("malformed form"))
		return
	}

	id := identity(c)
	result, err := h.trades.Sell(c.Request.Context(), usecase.SellOrder{
		UserID: id.UserID,
		Symbol: form.Symbol,
		Shares: form.Shares,
	})
	if err != nil {
		h.apologize(c, err)
		return
	}

	h.flashAndRedirect(c, id.Token, result.Message)
}
