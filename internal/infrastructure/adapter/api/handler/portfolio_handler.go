package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/view"
)

// PortfolioHandler serves the read-only pages: portfolio, history and quotes
type PortfolioHandler struct {
	base
	portfolio usecase.PortfolioUseCase
}

// NewPortfolioHandler creates a new portfolio handler instance
func NewPortfolioHandler(portfolio usecase.PortfolioUseCase, sessions usecase.SessionUseCase, logger coreport.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		base:      base{sessions: sessions, logger: logger},
		portfolio: portfolio,
	}
}

// Index handles GET /
func (h *PortfolioHandler) Index(c *gin.Context) {
	portfolio, err := h.portfolio.Compute(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.apologize(c, err)
		return
	}

	c.HTML(http.StatusOK, view.Index, dto.PortfolioPage{
		Page:      h.page(c, "Portfolio"),
		Portfolio: portfolio,
	})
}

// History handles GET /history
func (h *PortfolioHandler) History(c *gin.Context) {
	entries, err := h.portfolio.History(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.apologize(c, err)
		return
	}

	c.HTML(http.StatusOK, view.History, dto.HistoryPage{
		Page:    h.page(c, "History"),
		Entries: entries,
	})
}

// QuoteForm handles GET /quote
func (h *PortfolioHandler) QuoteForm(c *gin.Context) {
	c.HTML(http.StatusOK, view.Quote, h.page(c, "Quote"))
}

// Quote handles POST /quote
func (h *PortfolioHandler) Quote(c *gin.Context) {
	var form dto.QuoteForm
	if err := c.ShouldBind(&form); err != nil {
		h.apologize(c, errs.NewValidationError("malformed form"))
		return
	}

	quote, err := h.portfolio.Quote(c.Request.Context(), form.Symbol)
	if err != nil {
		h.apologize(c, err)
		return
	}

	c.HTML(http.StatusOK, view.Quoted, dto.QuotedPage{
		Page:   h.page(c, "Quoted"),
		Symbol: entity.NormalizeSymbol(form.Symbol),
		Quote:  quote,
	})
}
