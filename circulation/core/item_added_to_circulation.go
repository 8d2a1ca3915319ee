package core

import (
	"time"
)

// ItemAddedToCirculationEventType is the event type identifier.
const ItemAddedToCirculationEventType = "ItemAddedToCirculation"

// ItemAddedToCirculation represents when an item is put on the shelf of its home library for the first time.
type ItemAddedToCirculation struct {
	EventType     EventTypeString
	ItemID        ItemIDString
	HomeLibraryID LibraryIDString
	ItemType      ItemTypeString
	OccurredAt    OccurredAtTS
}

// BuildItemAddedToCirculation creates a new ItemAddedToCirculation event.
func BuildItemAddedToCirculation(
	itemID ItemIDString,
	homeLibraryID LibraryIDString,
	itemType ItemTypeString,
	occurredAt time.Time,
) ItemAddedToCirculation {

	return ItemAddedToCirculation{
		EventType:     ItemAddedToCirculationEventType,
		ItemID:        itemID,
		HomeLibraryID: homeLibraryID,
		ItemType:      itemType,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ItemAddedToCirculation) IsEventType() string {
	return ItemAddedToCirculationEventType
}

// HasOccurredAt returns when this event occurred.
func (e ItemAddedToCirculation) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e ItemAddedToCirculation) HasItemID() ItemIDString {
	return e.ItemID
}
