package core

import (
	"time"
)

// ItemRequestedByPatronEventType is the event type identifier.
const ItemRequestedByPatronEventType = "ItemRequestedByPatron"

// ItemRequestedByPatron represents when a patron joins the hold queue of an item.
type ItemRequestedByPatron struct {
	EventType       EventTypeString
	ItemID          ItemIDString
	HoldID          HoldIDString
	PatronID        PatronIDString
	PatronBarcode   PatronBarcodeString
	PickupLibraryID LibraryIDString
	OccurredAt      OccurredAtTS
}

// BuildItemRequestedByPatron creates a new ItemRequestedByPatron event.
// The request time is the time the event occurred.
func BuildItemRequestedByPatron(
	itemID ItemIDString,
	holdID HoldIDString,
	patron Patron,
	pickupLibraryID LibraryIDString,
	requestedAt time.Time,
) ItemRequestedByPatron {

	return ItemRequestedByPatron{
		EventType:       ItemRequestedByPatronEventType,
		ItemID:          itemID,
		HoldID:          holdID,
		PatronID:        patron.ID,
		PatronBarcode:   patron.Barcode,
		PickupLibraryID: pickupLibraryID,
		OccurredAt:      ToOccurredAt(requestedAt),
	}
}

// IsEventType returns the event type identifier.
func (e ItemRequestedByPatron) IsEventType() string {
	return ItemRequestedByPatronEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemRequestedByPatron) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e ItemRequestedByPatron) HasItemID() ItemIDString {
	return e.ItemID
}

func (e ItemRequestedByPatron) holdEntry() HoldEntry {
	return HoldEntry{
		ID:              e.HoldID,
		Kind:            HoldKindRequest,
		PatronID:        e.PatronID,
		PatronBarcode:   e.PatronBarcode,
		PickupLibraryID: e.PickupLibraryID,
		RequestedAt:     e.OccurredAt,
	}
}
