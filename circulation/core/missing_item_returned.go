package core

import (
	"time"
)

// MissingItemReturnedEventType is the event type identifier.
const MissingItemReturnedEventType = "MissingItemReturned"

// MissingItemReturned represents when a missing item shows up again and goes back on the shelf.
type MissingItemReturned struct {
	EventType  EventTypeString
	ItemID     ItemIDString
	OccurredAt OccurredAtTS
}

// BuildMissingItemReturned creates a new MissingItemReturned event.
func BuildMissingItemReturned(itemID ItemIDString, occurredAt time.Time) MissingItemReturned {
	return MissingItemReturned{
		EventType:  MissingItemReturnedEventType,
		ItemID:     itemID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e MissingItemReturned) IsEventType() string {
	return MissingItemReturnedEventType
}

// HasOccurredAt returns when this event occurred.
func (e MissingItemReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e MissingItemReturned) HasItemID() ItemIDString {
	return e.ItemID
}
