package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amirhossein-jamali/stock-simulator/internal/domain/entity"
	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/usecase/portfolio"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/usecase/session"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/usecase/trade"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/crypto"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/events"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/storage/memory"
	clock "github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/time"
	marketmocks "github.com/amirhossein-jamali/stock-simulator/mocks/port/market"
)

const cookieName = "stocksim_session"

type site struct {
	router *gin.Engine
	oracle *marketmocks.MockPriceOracle
	store  *memory.Store
}

func newSite(t *testing.T) *site {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNoopLogger()
	tp := clock.NewManualClock(time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC))
	store := memory.NewStore(log, tp)
	oracle := marketmocks.NewMockPriceOracle(t)
	ctx := context.Background()

	sessions := session.NewSessionService(store.GetSessionRepository(ctx), coreport.Hour, tp, log)
	users := user.NewUserUseCase(store.GetUserRepository(ctx), crypto.NewBcryptHasher(bcrypt.MinCost), decimal.RequireFromString("10000.00"), tp, log)
	trades := trade.NewTradeService(store, oracle, events.NewLogPublisher(log), tp, log)
	calculator := portfolio.NewCalculator(store, oracle, log)
	cookie := middleware.SessionCookie{Name: cookieName, TTL: time.Hour}

	router := gin.New()
	require.NoError(t, SetupMiddlewares(router, log, sessions, cookie))
	SetupRoutes(router, Handlers{
		Portfolio: handler.NewPortfolioHandler(calculator, sessions, log),
		Trade:     handler.NewTradeHandler(trades, sessions, log),
		Auth:      handler.NewAuthHandler(users, sessions, cookie, log),
	})

	return &site{router: router, oracle: oracle, store: store}
}

func (s *site) do(method, path, token string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register signs up a user and returns the session token from the response cookie
func (s *site) register(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/register", "", url.Values{
		"username":     {username},
		"password":     {"secret"},
		"confirmation": {"secret"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	return sessionToken(t, rec)
}

func sessionToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var token string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == cookieName && cookie.MaxAge >= 0 && cookie.Value != "" {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token, "no session cookie set")
	return token
}

func stockQuote(symbol, price string) *entity.Quote {
	return &entity.Quote{Symbol: symbol, Name: symbol + " Inc.", Price: decimal.RequireFromString(price)}
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	s := newSite(t)

	for _, path := range []string{"/", "/buy", "/sell", "/history", "/quote"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
		})
	}

	t.Run("UnknownToken", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/", "not-a-session", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}

func TestBuyThenSellFlow(t *testing.T) {
	s := newSite(t)
	token := s.register(t, "alice")

	s.oracle.EXPECT().Lookup(mock.Anything, "AAPL").Return(stockQuote("AAPL", "100.00"), nil).Once()
	rec := s.do(http.MethodPost, "/buy", token, url.Values{"symbol": {"aapl"}, "shares": {"10"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	s.oracle.EXPECT().Lookup(mock.Anything, "AAPL").Return(stockQuote("AAPL", "110.00"), nil)
	rec = s.do(http.MethodGet, "/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bought!")
	assert.Contains(t, rec.Body.String(), "$9,000.00")
	assert.Contains(t, rec.Body.String(), "$10,100.00")

	// the flash is shown once
	rec = s.do(http.MethodGet, "/", token, nil)
	assert.NotContains(t, rec.Body.String(), "Bought!")

	rec = s.do(http.MethodGet, "/sell", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL (10)")

	rec = s.do(http.MethodPost, "/sell", token, url.Values{"symbol": {"AAPL"}, "shares": {"10"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = s.do(http.MethodGet, "/", token, nil)
	assert.Contains(t, rec.Body.String(), "Sold!")
	assert.Contains(t, rec.Body.String(), "$10,100.00")
	assert.NotContains(t, rec.Body.String(), "<td>AAPL</td>")

	rec = s.do(http.MethodGet, "/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>-10</td>")
	assert.Contains(t, rec.Body.String(), "$1,000.00")
}

func TestRejectedOrdersRenderApology(t *testing.T) {
	s := newSite(t)
	token := s.register(t, "bob")

	t.Run("NotEnoughCash", func(t *testing.T) {
		s.oracle.EXPECT().Lookup(mock.Anything, "AAPL").Return(stockQuote("AAPL", "100.00"), nil).Once()
		rec := s.do(http.MethodPost, "/buy", token, url.Values{"symbol": {"AAPL"}, "shares": {"1000"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "not enough cash")
	})

	t.Run("FractionalShares", func(t *testing.T) {
		s.oracle.EXPECT().Lookup(mock.Anything, "AAPL").Return(stockQuote("AAPL", "100.00"), nil).Once()
		rec := s.do(http.MethodPost, "/buy", token, url.Values{"symbol": {"AAPL"}, "shares": {"1.5"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "must provide a whole number of shares")
	})

	t.Run("SellNeverPurchased", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/sell", token, url.Values{"symbol": {"MSFT"}, "shares": {"1"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "no such stock is owned")
	})

	t.Run("SellPlaceholder", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/sell", token, url.Values{"symbol": {"invalid"}, "shares": {"1"}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "must select stock")
	})

	t.Run("UpstreamDown", func(t *testing.T) {
		s.oracle.EXPECT().Lookup(mock.Anything, "IBM").Return(nil, errs.NewUpstreamError("price oracle", errors.New("timeout"))).Once()
		rec := s.do(http.MethodPost, "/buy", token, url.Values{"symbol": {"IBM"}, "shares": {"1"}})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "price service unavailable")
		assert.NotContains(t, rec.Body.String(), "timeout")
	})
}

func TestQuotePage(t *testing.T) {
	s := newSite(t)
	token := s.register(t, "carol")

	s.oracle.EXPECT().Lookup(mock.Anything, "NFLX").Return(stockQuote("NFLX", "612.5"), nil).Once()
	rec := s.do(http.MethodPost, "/quote", token, url.Values{"symbol": {"nflx"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A share of NFLX Inc. (NFLX) costs $612.50.")

	s.oracle.EXPECT().Lookup(mock.Anything, "ZZZZ").Return(nil, errs.ErrQuoteNotFound).Once()
	rec = s.do(http.MethodPost, "/quote", token, url.Values{"symbol": {"zzzz"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No quote found for ZZZZ.")
}

func TestLoginAndLogout(t *testing.T) {
	s := newSite(t)
	first := s.register(t, "dave")

	rec := s.do(http.MethodPost, "/login", "", url.Values{"username": {"dave"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username and/or password")

	rec = s.do(http.MethodPost, "/login", "", url.Values{"username": {"dave"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "must provide password")

	rec = s.do(http.MethodPost, "/login", first, url.Values{"username": {"dave"}, "password": {"secret"}})
	require.Equal(t, http.StatusFound, rec.Code)
	second := sessionToken(t, rec)
	assert.NotEqual(t, first, second)

	// logging in again ended the earlier session
	rec = s.do(http.MethodGet, "/", first, nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = s.do(http.MethodGet, "/logout", second, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/history", second, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRegisterRejections(t *testing.T) {
	s := newSite(t)
	s.register(t, "erin")

	testCases := []struct {
		name   string
		form   url.Values
		reason string
	}{
		{"MissingUsername", url.Values{"password": {"x"}, "confirmation": {"x"}}, "must provide username"},
		{"Taken", url.Values{"username": {"erin"}, "password": {"x"}, "confirmation": {"x"}}, "this username is taken"},
		{"MissingPassword", url.Values{"username": {"frank"}}, "must provide password"},
		{"MissingConfirmation", url.Values{"username": {"frank"}, "password": {"x"}}, "must confirm password"},
		{"Mismatch", url.Values{"username": {"frank"}, "password": {"x"}, "confirmation": {"y"}}, "passwords do not match"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/register", "", tc.form)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.reason)
		})
	}
}

func TestRoutingFailures(t *testing.T) {
	s := newSite(t)

	rec := s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Found")

	rec = s.do(http.MethodDelete, "/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method Not Allowed")
}

func TestResponsesAreNotCached(t *testing.T) {
	s := newSite(t)

	rec := s.do(http.MethodGet, "/login", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}
