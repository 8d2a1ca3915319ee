package shell

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
)

// HandlerResult represents the outcome of a command handler execution.
// It carries the business result and the retry metadata without coupling the
// handler to specific observability implementations.
type HandlerResult struct {
	// EventType is the type of the appended event, empty when the command failed.
	EventType string

	// ItemStatus is the status of the item after the command.
	ItemStatus core.Status

	// HoldID is the hold created or touched by the command, if any.
	HoldID core.HoldIDString

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the error of the last attempt, see ErrorTypeOf.
	LastErrorType string

	// RetriesExhausted indicates whether max attempts were reached with a retryable error.
	RetriesExhausted bool
}

// NewHandlerResult creates a HandlerResult carrying the retry metadata.
func NewHandlerResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
