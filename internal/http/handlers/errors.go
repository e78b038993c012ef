package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetbook/internal/domain"
)

// respondError maps domain error kinds to HTTP statuses. Anything not
// typed is treated as internal and the message is hidden from clients.
func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
