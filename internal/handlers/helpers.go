package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/chefremy-api/internal/cooking"
	"github.com/windoze95/chefremy-api/internal/repository"
	"github.com/windoze95/chefremy-api/internal/service"
)

// parseIndexParam parses a non-negative integer path parameter.
func parseIndexParam(param string) (int, error) {
	parsed, err := strconv.Atoi(param)
	if err != nil {
		return 0, err
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value out of range: %d", parsed)
	}
	return parsed, nil
}

// statusFor maps service and domain errors onto HTTP status codes.
func statusFor(err error) int {
	var notFound repository.NotFoundError
	var invalid service.ValidationError
	switch {
	case errors.As(err, &notFound),
		errors.Is(err, cooking.ErrSessionNotFound),
		errors.Is(err, cooking.ErrTimerNotFound),
		errors.Is(err, cooking.ErrIngredientNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalid),
		errors.Is(err, cooking.ErrStepOutOfRange),
		errors.Is(err, cooking.ErrInvalidDuration),
		errors.Is(err, cooking.ErrNoSteps):
		return http.StatusBadRequest
	case errors.Is(err, cooking.ErrSessionCompleted):
		return http.StatusConflict
	case errors.Is(err, service.ErrSpeechDisabled),
		errors.Is(err, service.ErrTTSDisabled),
		errors.Is(err, service.ErrAssistantDisabled),
		errors.Is(err, service.ErrStorageDisabled),
		errors.Is(err, service.ErrLLMDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err with the status statusFor picks.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
