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

// base holds what every page handler needs: the layout data and the apology page
type base struct {
	sessions usecase.SessionUseCase
	logger   coreport.Logger
}

func (b *base) log(c *gin.Context) coreport.Logger {
	return coreport.LoggerFromContext(c.Request.Context(), b.logger)
}

// page builds the layout data and consumes the pending flash message
func (b *base) page(c *gin.Context, title string) dto.Page {
	identity, ok := middleware.IdentityFrom(c)
	p := dto.Page{Title: title, LoggedIn: ok}
	if !ok {
		return p
	}

	flash, err := b.sessions.TakeFlash(c.Request.Context(), identity.Token)
	if err != nil {
		b.log(c).Warn("Failed to read flash message", map[string]any{"error": err.Error()})
		return p
	}
	p.Flash = flash
	return p
}

// apologize renders the apology page for err with the status it maps to
func (b *base) apologize(c *gin.Context, err error) {
	status := errs.StatusCode(err)
	fields := errs.LogFields(err)
	fields["status"] = status

	if errs.IsRejection(err) && status < http.StatusInternalServerError {
		b.log(c).Info("Request rejected", fields)
	} else {
		b.log(c).Error("Request failed", fields)
	}

	_ = c.Error(err)
	renderApology(c, status, errs.PublicMessage(err))
}

// flashAndRedirect queues message for the next page and sends the browser home
func (b *base) flashAndRedirect(c *gin.Context, token, message string) {
	if err := b.sessions.Flash(c.Request.Context(), token, message); err != nil {
		b.log(c).Warn("Failed to store flash message", map[string]any{"error": err.Error()})
	}
	c.Redirect(http.StatusFound, "/")
}

func renderApology(c *gin.Context, status int, message string) {
	_, loggedIn := middleware.IdentityFrom(c)
	c.HTML(status, view.Apology, dto.ApologyPage{
		Page:    dto.Page{Title: "Apology", LoggedIn: loggedIn},
		Code:    status,
		Message: message,
	})
}

// StatusApology renders the apology page for a routing failure such as 404 or 405
func StatusApology(status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderApology(c, status, http.StatusText(status))
	}
}

func identity(c *gin.Context) *usecase.Identity {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		// routes using this sit behind RequireLogin
		panic("handler reached without identity")
	}
	return id
}
