package core

import (
	"time"
)

// ItemLoanedToPatronEventType is the event type identifier.
const ItemLoanedToPatronEventType = "ItemLoanedToPatron"

// ItemLoanedToPatron represents when an item is checked out to a patron.
type ItemLoanedToPatron struct {
	EventType       EventTypeString
	ItemID          ItemIDString
	HoldID          HoldIDString
	PatronID        PatronIDString
	PatronBarcode   PatronBarcodeString
	PickupLibraryID LibraryIDString
	StartDate       time.Time
	EndDate         time.Time
	OccurredAt      OccurredAtTS
}

// BuildItemLoanedToPatron creates a new ItemLoanedToPatron event.
func BuildItemLoanedToPatron(
	itemID ItemIDString,
	holdID HoldIDString,
	patron Patron,
	pickupLibraryID LibraryIDString,
	startDate time.Time,
	endDate time.Time,
	occurredAt time.Time,
) ItemLoanedToPatron {

	return ItemLoanedToPatron{
		EventType:       ItemLoanedToPatronEventType,
		ItemID:          itemID,
		HoldID:          holdID,
		PatronID:        patron.ID,
		PatronBarcode:   patron.Barcode,
		PickupLibraryID: pickupLibraryID,
		StartDate:       ToOccurredAt(startDate),
		EndDate:         ToOccurredAt(endDate),
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ItemLoanedToPatron) IsEventType() string {
	return ItemLoanedToPatronEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemLoanedToPatron) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e ItemLoanedToPatron) HasItemID() ItemIDString {
	return e.ItemID
}

func (e ItemLoanedToPatron) holdEntry() HoldEntry {
	return HoldEntry{
		ID:              e.HoldID,
		Kind:            HoldKindLoan,
		PatronID:        e.PatronID,
		PatronBarcode:   e.PatronBarcode,
		PickupLibraryID: e.PickupLibraryID,
		StartDate:       e.StartDate,
		EndDate:         e.EndDate,
	}
}
