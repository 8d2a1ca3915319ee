package core

import (
	"time"
)

// ItemReceivedAtLibraryEventType is the event type identifier.
const ItemReceivedAtLibraryEventType = "ItemReceivedAtLibrary"

// ItemReceivedAtLibrary represents when an item in transit arrives at a library.
type ItemReceivedAtLibrary struct {
	EventType            EventTypeString
	ItemID               ItemIDString
	TransactionLibraryID LibraryIDString
	ResultingStatus      Status
	OccurredAt           OccurredAtTS
}

// BuildItemReceivedAtLibrary creates a new ItemReceivedAtLibrary event.
func BuildItemReceivedAtLibrary(
	itemID ItemIDString,
	transactionLibraryID LibraryIDString,
	resultingStatus Status,
	occurredAt time.Time,
) ItemReceivedAtLibrary {

	return ItemReceivedAtLibrary{
		EventType:            ItemReceivedAtLibraryEventType,
		ItemID:               itemID,
		TransactionLibraryID: transactionLibraryID,
		ResultingStatus:      resultingStatus,
		OccurredAt:           ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ItemReceivedAtLibrary) IsEventType() string {
	return ItemReceivedAtLibraryEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemReceivedAtLibrary) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e ItemReceivedAtLibrary) HasItemID() ItemIDString {
	return e.ItemID
}
