package handler

import (
	"errors"
	"net/http"

	"roost/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondErr is the single place a service error becomes an HTTP status.
//
//	400 invalid input
//	403 actor lacks the role or ownership
//	404 missing record
//	409 the lifecycle forbids the edge, or a status-guarded race was lost;
//	    the client should refresh and retry
//	422 payout balance under the configured threshold
//	502 payment provider failure
func respondErr(c *gin.Context, err error) {
	var gwErr *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConcurrentModification), errors.Is(err, domain.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBelowThreshold):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider error", "retryable": gwErr.Retryable})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
