package core

import (
	"time"
)

// ItemRequestValidatedEventType is the event type identifier.
const ItemRequestValidatedEventType = "ItemRequestValidated"

// ItemRequestValidated represents when a shelved item is pulled for its first pending request.
type ItemRequestValidated struct {
	EventType       EventTypeString
	ItemID          ItemIDString
	HoldID          HoldIDString
	PatronID        PatronIDString
	PatronBarcode   PatronBarcodeString
	PickupLibraryID LibraryIDString
	ResultingStatus Status
	OccurredAt      OccurredAtTS
}

// BuildItemRequestValidated creates a new ItemRequestValidated event.
func BuildItemRequestValidated(
	itemID ItemIDString,
	request HoldEntry,
	resultingStatus Status,
	occurredAt time.Time,
) ItemRequestValidated {

	return ItemRequestValidated{
		EventType:       ItemRequestValidatedEventType,
		ItemID:          itemID,
		HoldID:          request.ID,
		PatronID:        request.PatronID,
		PatronBarcode:   request.PatronBarcode,
		PickupLibraryID: request.PickupLibraryID,
		ResultingStatus: resultingStatus,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ItemRequestValidated) IsEventType() string {
	return ItemRequestValidatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemRequestValidated) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e ItemRequestValidated) HasItemID() ItemIDString {
	return e.ItemID
}
