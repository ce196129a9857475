package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/market"
)

const serviceName = "price oracle"

// maxBodyBytes bounds how much of a quote response is read
const maxBodyBytes = 1 << 20

// Config holds the price source settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client resolves quotes over HTTP from an IEX-style endpoint:
// GET {BaseURL}/stock/{symbol}/quote?token={APIKey}
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  coreport.Logger
}

var _ market.PriceOracle = (*Client)(nil)

// NewClient creates a new price source client
func NewClient(cfg Config, logger coreport.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type quoteResponse struct {
	Symbol      string           `json:"symbol"`
	CompanyName string           `json:"companyName"`
	LatestPrice *decimal.Decimal `json:"latestPrice"`
}

// Lookup returns the current quote for symbol. Nothing is cached.
func (c *Client) Lookup(ctx context.Context, symbol string) (*entity.Quote, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, errs.ErrQuoteNotFound
	}
	log := coreport.LoggerFromContext(ctx, c.logger)

	endpoint := fmt.Sprintf("%s/stock/%s/quote?token=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.NewUpstreamError(serviceName, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("Price source request failed", map[string]any{
			"symbol": symbol,
			"error":  err.Error(),
		})
		return nil, errs.NewUpstreamError(serviceName, fmt.Errorf("fetch quote: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.NewUpstreamError(serviceName, fmt.Errorf("read body: %w", err))
	}

	log.Debug("Price source responded", map[string]any{
		"symbol":      symbol,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.ErrQuoteNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, errs.NewUpstreamError(serviceName, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return parseQuote(symbol, body)
}

func parseQuote(symbol string, body []byte) (*entity.Quote, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" || strings.EqualFold(trimmed, "unknown symbol") {
		return nil, errs.ErrQuoteNotFound
	}

	var payload quoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errs.NewUpstreamError(serviceName, fmt.Errorf("decode quote: %w", err))
	}
	if payload.LatestPrice == nil {
		return nil, errs.NewUpstreamError(serviceName, errors.New("quote has no price"))
	}
	if !payload.LatestPrice.IsPositive() {
		return nil, errs.NewUpstreamError(serviceName, fmt.Errorf("non-positive price %s", payload.LatestPrice))
	}

	if payload.Symbol != "" {
		symbol = entity.NormalizeSymbol(payload.Symbol)
	}
	name := payload.CompanyName
	if name == "" {
		name = symbol
	}

	return &entity.Quote{
		Symbol: symbol,
		Name:   name,
		Price:  *payload.LatestPrice,
	}, nil
}
