package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition matches every *InvalidTransitionError with errors.Is.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrEmptyQueue is returned when an operation needs a pending request and there is none.
	ErrEmptyQueue = errors.New("no pending request in hold queue")

	// ErrHoldNotFound is returned when a hold id is not in the queue (anymore).
	ErrHoldNotFound = errors.New("hold not found")

	// ErrItemNotInCirculation is returned for operations on an item that was never added.
	ErrItemNotInCirculation = errors.New("item is not in circulation")

	// ErrItemAlreadyInCirculation is returned when an item is added twice.
	ErrItemAlreadyInCirculation = errors.New("item is already in circulation")

	// ErrPickupLibraryRequired is returned when a request lacks a pickup library.
	ErrPickupLibraryRequired = errors.New("pickup library is required for a request")

	// ErrLoanHeadOccupied is returned when a loan would be placed in front of another patron's loan.
	ErrLoanHeadOccupied = errors.New("hold queue head is occupied by another patron's loan")

	// ErrWrongHoldKind is returned when a queue operation receives an entry of the wrong kind.
	ErrWrongHoldKind = errors.New("wrong hold kind for this queue operation")

	// ErrInvalidEndDate is returned when a loan would end before it starts.
	ErrInvalidEndDate = errors.New("loan end date must be after its start date")

	// ErrInvalidRenewalCount is returned when a loan extension carries a negative renewal count.
	ErrInvalidRenewalCount = errors.New("renewal count must not be negative")

	// ErrReplayingHistoryFailed wraps every error raised while rebuilding an item from its events.
	ErrReplayingHistoryFailed = errors.New("replaying item history failed")

	// ErrUnknownEvent is returned when the history contains an event the item cannot apply.
	ErrUnknownEvent = errors.New("unknown domain event")
)

// InvalidTransitionError reports an operation attempted while the item's
// status is not in the operation's allow-list.
type InvalidTransitionError struct {
	CurrentStatus Status
	Operation     Operation
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s is not allowed while item is %s", e.Operation, e.CurrentStatus)
}

// Is makes errors.Is(err, ErrInvalidTransition) hold for every InvalidTransitionError.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func invalidTransition(current Status, operation Operation) error {
	return &InvalidTransitionError{CurrentStatus: current, Operation: operation}
}
