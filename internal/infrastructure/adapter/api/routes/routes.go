package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/view"
)

// Handlers groups the page handlers mounted by SetupRoutes
type Handlers struct {
	Portfolio *handler.PortfolioHandler
	Trade     *handler.TradeHandler
	Auth      *handler.AuthHandler
}

// SetupRoutes configures all the routes of the site
func SetupRoutes(router *gin.Engine, h Handlers) {
	// Public routes
	router.GET("/login", h.Auth.LoginForm)
	router.POST("/login", h.Auth.Login)
	router.GET("/logout", h.Auth.Logout)
	router.GET("/register", h.Auth.RegisterForm)
	router.POST("/register", h.Auth.Register)

	// Routes behind login
	protected := router.Group("/", middleware.RequireLogin())
	{
		protected.GET("/", h.Portfolio.Index)
		protected.GET("/history", h.Portfolio.History)
		protected.GET("/quote", h.Portfolio.QuoteForm)
		protected.POST("/quote", h.Portfolio.Quote)
		protected.GET("/buy", h.Trade.BuyForm)
		protected.POST("/buy", h.Trade.Buy)
		protected.GET("/sell", h.Trade.SellForm)
		protected.POST("/sell", h.Trade.Sell)
	}

	router.NoRoute(handler.StatusApology(http.StatusNotFound))
	router.NoMethod(handler.StatusApology(http.StatusMethodNotAllowed))
}

// SetupMiddlewares configures global middlewares and the template renderer
func SetupMiddlewares(
	router *gin.Engine,
	logger coreport.Logger,
	sessions usecase.SessionUseCase,
	cookie middleware.SessionCookie,
) error {
	tmpl, err := view.Load()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	router.HandleMethodNotAllowed = true

	// Apply middlewares in the correct order
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.NoCache())
	router.Use(middleware.Session(sessions, cookie, logger))
	return nil
}
