package core

import (
	"time"
)

// ItemIDString represents a catalogued item identifier.
type ItemIDString = string

// PatronIDString represents a patron identifier.
type PatronIDString = string

// PatronBarcodeString is the barcode printed on a patron card.
type PatronBarcodeString = string

// LibraryIDString represents a library (location) identifier.
type LibraryIDString = string

// HoldIDString represents a hold identifier.
type HoldIDString = string

// ItemTypeString selects the loan duration of an item.
type ItemTypeString = string

// EventTypeString represents the type of a domain event.
type EventTypeString = string

// OccurredAtTS represents when an event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

// Patron identifies the borrower or requester of an item.
type Patron struct {
	ID      PatronIDString
	Barcode PatronBarcodeString
}
