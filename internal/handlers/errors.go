package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partnerly/backend/internal/verification"
)

// respondVerificationError maps verification domain errors to HTTP responses
func respondVerificationError(c *gin.Context, err error) {
	var (
		validation  *verification.ValidationError
		incomplete  *verification.IncompleteProfileError
		transition  *verification.InvalidStateTransitionError
		docState    *verification.DocumentStateError
		notFound    *verification.NotFoundError
		conflict    *verification.ConcurrencyConflictError
		unavailable *verification.UpstreamUnavailableError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":            "Profile is incomplete",
			"missing_sections": incomplete.Missing,
		})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{
			"error":            transition.Error(),
			"current_status":   transition.Current,
			"requested_status": transition.Requested,
		})
	case errors.As(err, &docState):
		c.JSON(http.StatusConflict, gin.H{
			"error":            docState.Error(),
			"current_status":   docState.Current,
			"requested_status": docState.Requested,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Another decision for this partner is in progress, try again"})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "A required service is unavailable, try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
