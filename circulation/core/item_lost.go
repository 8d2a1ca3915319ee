package core

import (
	"time"
)

// ItemLostEventType is the event type identifier.
const ItemLostEventType = "ItemLost"

// ItemLost represents when an item is declared missing. All holds on it are canceled.
type ItemLost struct {
	EventType       EventTypeString
	ItemID          ItemIDString
	CanceledHoldIDs []HoldIDString
	PatronBarcode   PatronBarcodeString
	OccurredAt      OccurredAtTS
}

// BuildItemLost creates a new ItemLost event.
func BuildItemLost(
	itemID ItemIDString,
	canceledHoldIDs []HoldIDString,
	patronBarcode PatronBarcodeString,
	occurredAt time.Time,
) ItemLost {

	return ItemLost{
		EventType:       ItemLostEventType,
		ItemID:          itemID,
		CanceledHoldIDs: canceledHoldIDs,
		PatronBarcode:   patronBarcode,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ItemLost) IsEventType() string {
	return ItemLostEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemLost) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e ItemLost) HasItemID() ItemIDString {
	return e.ItemID
}
