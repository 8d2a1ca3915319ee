package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// StatusCodeOf maps a handler error to the HTTP status answered for it.
func StatusCodeOf(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidTransition),
		errors.Is(err, core.ErrItemAlreadyInCirculation),
		errors.Is(err, core.ErrLoanHeadOccupied),
		errors.Is(err, eventstore.ErrConcurrencyConflict):
		return http.StatusConflict

	case errors.Is(err, core.ErrHoldNotFound),
		errors.Is(err, core.ErrItemNotInCirculation):
		return http.StatusNotFound

	case shell.IsRejection(err):
		return http.StatusUnprocessableEntity

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}

	var transitionErr *core.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		body["currentStatus"] = transitionErr.CurrentStatus
		body["operation"] = transitionErr.Operation
	}

	c.JSON(StatusCodeOf(err), body)
}

func writeBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
