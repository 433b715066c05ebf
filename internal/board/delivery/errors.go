package delivery

import (
	"errors"
	"log"
	"net/http"

	"taskup-backend/internal/board/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to status codes. Anything unrecognised is
// logged with its context and answered with a generic message.
func respondError(c *gin.Context, err error, logContext string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[BoardHandler] %s: %v", logContext, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
