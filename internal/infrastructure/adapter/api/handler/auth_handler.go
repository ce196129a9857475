package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/view"
)

// AuthHandler handles login, logout and registration
type AuthHandler struct {
	base
	users  usecase.UserUseCase
	cookie middleware.SessionCookie
}

// NewAuthHandler creates a new auth handler instance
func NewAuthHandler(
	users usecase.UserUseCase,
	sessions usecase.SessionUseCase,
	cookie middleware.SessionCookie,
	logger coreport.Logger,
) *AuthHandler {
	return &AuthHandler{
		base:   base{sessions: sessions, logger: logger},
		users:  users,
		cookie: cookie,
	}
}

// LoginForm handles GET /login. Visiting the login page ends any current session.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.forget(c)
	c.HTML(http.StatusOK, view.Login, dto.Page{Title: "Log In"})
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	h.forget(c)

	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.apologize(c, errs.NewValidationError("malformed form"))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		h.apologize(c, err)
		return
	}

	h.startSession(c, user.ID)
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.forget(c)
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// RegisterForm handles GET /register
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, view.Register, h.page(c, "Register"))
}

// Register handles POST /register. The new account is logged in straight away.
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.apologize(c, errs.NewValidationError("malformed form"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), usecase.RegisterRequest{
		Username:     form.Username,
		Password:     form.Password,
		Confirmation: form.Confirmation,
	})
	if err != nil {
		h.apologize(c, err)
		return
	}

	h.forget(c)
	h.startSession(c, user.ID)
}

func (h *AuthHandler) startSession(c *gin.Context, userID uint64) {
	token, err := h.sessions.Start(c.Request.Context(), userID)
	if err != nil {
		h.apologize(c, err)
		return
	}

	h.cookie.Set(c, token)
	c.Redirect(http.StatusFound, "/")
}

// forget ends the session the browser presented, if any
func (h *AuthHandler) forget(c *gin.Context) {
	token := h.cookie.Read(c)
	if token == "" {
		return
	}
	if err := h.sessions.End(c.Request.Context(), token); err != nil {
		h.log(c).Warn("Failed to end session", map[string]any{"error": err.Error()})
	}
	h.cookie.Clear(c)
	middleware.ForgetIdentity(c)
}
