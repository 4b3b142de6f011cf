package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ekinyalgin/curiora/internal/middleware"
	"github.com/ekinyalgin/curiora/internal/models"
	"github.com/ekinyalgin/curiora/internal/services"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the session user set by middleware.LoadUser, or
// nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(middleware.CheckUserKey); exists {
		return u.(*models.User)
	}
	return nil
}

// ServiceError maps the service failure taxonomy onto HTTP responses.
// Anything outside the taxonomy is a persistence failure: logged and
// reported as a bare 500 without leaking the underlying error.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
