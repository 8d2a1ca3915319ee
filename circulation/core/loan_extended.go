package core

import (
	"time"
)

// LoanExtendedEventType is the event type identifier.
const LoanExtendedEventType = "LoanExtended"

// LoanExtended represents when the active loan of an item is renewed.
type LoanExtended struct {
	EventType     EventTypeString
	ItemID        ItemIDString
	HoldID        HoldIDString
	PatronID      PatronIDString
	PatronBarcode PatronBarcodeString
	EndDate       time.Time
	RenewalCount  int
	OccurredAt    OccurredAtTS
}

// BuildLoanExtended creates a new LoanExtended event.
func BuildLoanExtended(
	itemID ItemIDString,
	loan HoldEntry,
	endDate time.Time,
	renewalCount int,
	occurredAt time.Time,
) LoanExtended {

	return LoanExtended{
		EventType:     LoanExtendedEventType,
		ItemID:        itemID,
		HoldID:        loan.ID,
		PatronID:      loan.PatronID,
		PatronBarcode: loan.PatronBarcode,
		EndDate:       ToOccurredAt(endDate),
		RenewalCount:  renewalCount,
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e LoanExtended) IsEventType() string {
	return LoanExtendedEventType
}

// HasOccurredAt returns when this event occurred.
func (e LoanExtended) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// HasItemID returns the item the event belongs to.
func (e LoanExtended) HasItemID() ItemIDString {
	return e.ItemID
}
