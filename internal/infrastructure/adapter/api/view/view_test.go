package view

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/dto"
)

func render(t *testing.T, name string, data any) string {
	t.Helper()
	tmpl, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, name, data))
	return buf.String()
}

func TestIndexRendersUSD(t *testing.T) {
	rows := []entity.PortfolioRow{
		{Symbol: "AAPL", Name: "Apple Inc.", Shares: 10, Price: decimal.RequireFromString("110"), Value: decimal.RequireFromString("1100")},
		{Symbol: "GONE", Name: "Gone Corp", Shares: 1, Err: errors.New("no price")},
	}
	page := dto.PortfolioPage{
		Page:      dto.Page{Title: "Portfolio", LoggedIn: true, Flash: "Bought!"},
		Portfolio: entity.NewPortfolio(1, decimal.RequireFromString("9000"), rows),
	}

	html := render(t, Index, page)
	assert.Contains(t, html, "$110.00")
	assert.Contains(t, html, "$9,000.00")
	assert.Contains(t, html, "$10,100.00")
	assert.Contains(t, html, "price unavailable")
	assert.Contains(t, html, "Bought!")
	assert.Contains(t, html, "Log Out")
}

func TestApologyEscapesMessage(t *testing.T) {
	html := render(t, Apology, dto.ApologyPage{
		Page:    dto.Page{Title: "Apology"},
		Code:    403,
		Message: "<script>alert(1)</script>",
	})

	assert.Contains(t, html, "403")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "Log In")
}

func TestQuotedPage(t *testing.T) {
	found := render(t, Quoted, dto.QuotedPage{
		Page:   dto.Page{Title: "Quoted", LoggedIn: true},
		Symbol: "AAPL",
		Quote:  &entity.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("1234.5")},
	})
	assert.Contains(t, found, "A share of Apple Inc. (AAPL) costs $1,234.50.")

	missing := render(t, Quoted, dto.QuotedPage{Page: dto.Page{Title: "Quoted", LoggedIn: true}, Symbol: "ZZZZ"})
	assert.Contains(t, missing, "No quote found for ZZZZ.")
}

func TestHistoryAndSellPages(t *testing.T) {
	entry := &entity.LedgerEntry{
		Symbol:    "AAPL",
		Shares:    -3,
		Price:     decimal.RequireFromString("100"),
		Total:     decimal.RequireFromString("-300"),
		CreatedAt: time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC),
	}
	history := render(t, History, dto.HistoryPage{Page: dto.Page{Title: "History", LoggedIn: true}, Entries: []*entity.LedgerEntry{entry}})
	assert.Contains(t, history, "sell")
	assert.Contains(t, history, "2024-05-01 14:30:00")

	sell := render(t, Sell, dto.SellPage{
		Page:     dto.Page{Title: "Sell", LoggedIn: true},
		Holdings: []entity.Holding{{Symbol: "AAPL", Name: "Apple Inc.", Shares: 7}},
	})
	assert.Contains(t, sell, `value="invalid"`)
	assert.Contains(t, sell, "AAPL (7)")
}

func TestFormPagesRender(t *testing.T) {
	for _, name := range []string{Buy, Quote, Login, Register} {
		t.Run(name, func(t *testing.T) {
			html := render(t, name, dto.Page{Title: name})
			assert.Contains(t, html, "<form")
		})
	}
}
