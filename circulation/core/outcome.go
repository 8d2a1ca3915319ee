package core

import (
	"time"
)

// TransactionLogEntry is the audit record emitted by a transition.
type TransactionLogEntry struct {
	Operation     Operation
	ItemID        ItemIDString
	PatronBarcode PatronBarcodeString
	OccurredAt    time.Time
}

// ItemAtDesk signals that an item waits at the pickup desk for a patron.
type ItemAtDesk struct {
	ItemID          ItemIDString
	HoldID          HoldIDString
	PatronID        PatronIDString
	PickupLibraryID LibraryIDString
	OccurredAt      time.Time
}

// Outcome is what a successful transition produced. Event is always set,
// LogEntry and AtDesk only when the transition emits them.
type Outcome struct {
	Event    DomainEvent
	LogEntry *TransactionLogEntry
	AtDesk   *ItemAtDesk
}

func logEntry(operation Operation, itemID ItemIDString, barcode PatronBarcodeString, occurredAt time.Time) *TransactionLogEntry {
	return &TransactionLogEntry{
		Operation:     operation,
		ItemID:        itemID,
		PatronBarcode: barcode,
		OccurredAt:    occurredAt,
	}
}

func atDesk(itemID ItemIDString, decision RoutingDecision, occurredAt time.Time) *ItemAtDesk {
	if decision.Status != StatusAtDesk || decision.Request == nil {
		return nil
	}

	return &ItemAtDesk{
		ItemID:          itemID,
		HoldID:          decision.Request.ID,
		PatronID:        decision.Request.PatronID,
		PickupLibraryID: decision.Request.PickupLibraryID,
		OccurredAt:      occurredAt,
	}
}
