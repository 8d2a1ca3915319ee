package core

import (
	"time"
)

// HoldKind tags a HoldEntry as the active loan or a pending request.
type HoldKind string

const (
	HoldKindLoan    HoldKind = "loan"
	HoldKindRequest HoldKind = "request"
)

// HoldEntry is one record in an item's hold queue.
//
// PickupLibraryID and RequestedAt are only meaningful for requests,
// StartDate, EndDate and RenewalCount only for loans.
type HoldEntry struct {
	ID              HoldIDString
	Kind            HoldKind
	PatronID        PatronIDString
	PatronBarcode   PatronBarcodeString
	PickupLibraryID LibraryIDString
	StartDate       time.Time
	EndDate         time.Time
	RenewalCount    int
	RequestedAt     time.Time
}

// IsLoan reports whether the entry is the active loan.
func (h HoldEntry) IsLoan() bool {
	return h.Kind == HoldKindLoan
}

// IsRequest reports whether the entry is a pending request.
func (h HoldEntry) IsRequest() bool {
	return h.Kind == HoldKindRequest
}
