package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/domain/port/usecase"
)

const identityKey = "identity"

// LoginPath is where unauthenticated requests for protected pages are sent
const LoginPath = "/login"

// SessionCookie describes the cookie that carries the session token
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Read returns the token sent by the browser, empty when there is none
func (s SessionCookie) Read(c *gin.Context) string {
	token, err := c.Cookie(s.Name)
	if err != nil {
		return ""
	}
	return token
}

// Set stores token in the browser
func (s SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, int(s.TTL.Seconds()), "/", "", s.Secure, true)
}

// Clear removes the cookie from the browser
func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

// Session resolves the session cookie into an identity for the rest of the chain.
// Requests without a live session continue anonymously.
func Session(sessions usecase.SessionUseCase, cookie SessionCookie, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Read(c)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		identity, err := sessions.Resolve(ctx, token)
		switch {
		case errors.Is(err, errs.ErrSessionNotFound):
			cookie.Clear(c)
		case err != nil:
			coreport.LoggerFromContext(ctx, logger).Error("Failed to resolve session", map[string]any{
				"error": err.Error(),
			})
		default:
			c.Set(identityKey, identity)
			reqLogger := coreport.LoggerFromContext(ctx, logger).With(map[string]any{"user_id": identity.UserID})
			c.Request = c.Request.WithContext(coreport.ContextWithLogger(ctx, reqLogger))
		}

		c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login page
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity resolved for this request
func IdentityFrom(c *gin.Context) (*usecase.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := value.(*usecase.Identity)
	return identity, ok && identity != nil
}

// ForgetIdentity drops the identity for the remainder of this request
func ForgetIdentity(c *gin.Context) {
	c.Set(identityKey, (*usecase.Identity)(nil))
}
