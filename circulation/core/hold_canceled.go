package core

import (
	"time"
)

// HoldCanceledEventType is the event type identifier.
const HoldCanceledEventType = "HoldCanceled"

// HoldCanceled represents when a pending request is withdrawn from an item's hold queue.
type HoldCanceled struct {
	EventType  EventTypeString
	ItemID     ItemIDString
	HoldID     HoldIDString
	PatronID   PatronIDString
	OccurredAt OccurredAtTS
}

// BuildHoldCanceled creates a new HoldCanceled event.
func BuildHoldCanceled(itemID ItemIDString, hold HoldEntry, occurredAt time.Time) HoldCanceled {
	return HoldCanceled{
		EventType:  HoldCanceledEventType,
		ItemID:     itemID,
		HoldID:     hold.ID,
		PatronID:   hold.PatronID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e HoldCanceled) IsEventType() string {
	return HoldCanceledEventType
}

// HasOccurredAt returns when this event occurred.
func (e HoldCanceled) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e HoldCanceled) HasItemID() ItemIDString {
	return e.ItemID
}
