package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents a business event that has occurred to an item.
type DomainEvent interface {
	// IsEventType returns the string identifier for this event type.
	IsEventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time

	// HasItemID returns the item the event belongs to.
	HasItemID() ItemIDString
}

// ItemEventTypes lists every event type an item's history can contain.
func ItemEventTypes() []EventTypeString {
	return []EventTypeString{
		ItemAddedToCirculationEventType,
		ItemLoanedToPatronEventType,
		ItemRequestedByPatronEventType,
		ItemReturnedByPatronEventType,
		ItemReceivedAtLibraryEventType,
		ItemRequestValidatedEventType,
		LoanExtendedEventType,
		ItemLostEventType,
		MissingItemReturnedEventType,
		HoldCanceledEventType,
	}
}
