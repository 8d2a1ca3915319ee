package core

import (
	"time"
)

// ItemReturnedByPatronEventType is the event type identifier.
const ItemReturnedByPatronEventType = "ItemReturnedByPatron"

// ItemReturnedByPatron represents when a loaned item is checked in at a library.
type ItemReturnedByPatron struct {
	EventType            EventTypeString
	ItemID               ItemIDString
	HoldID               HoldIDString
	PatronID             PatronIDString
	PatronBarcode        PatronBarcodeString
	TransactionLibraryID LibraryIDString
	ResultingStatus      Status
	OccurredAt           OccurredAtTS
}

// BuildItemReturnedByPatron creates a new ItemReturnedByPatron event.
func BuildItemReturnedByPatron(
	itemID ItemIDString,
	loan HoldEntry,
	transactionLibraryID LibraryIDString,
	resultingStatus Status,
	occurredAt time.Time,
) ItemReturnedByPatron {

	return ItemReturnedByPatron{
		EventType:            ItemReturnedByPatronEventType,
		ItemID:               itemID,
		HoldID:               loan.ID,
		PatronID:             loan.PatronID,
		PatronBarcode:        loan.PatronBarcode,
		TransactionLibraryID: transactionLibraryID,
		ResultingStatus:      resultingStatus,
		OccurredAt:           ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ItemReturnedByPatron) IsEventType() string {
	return ItemReturnedByPatronEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemReturnedByPatron) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e ItemReturnedByPatron) HasItemID() ItemIDString {
	return e.ItemID
}
