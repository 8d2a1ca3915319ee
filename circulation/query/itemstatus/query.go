package itemstatus

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const (
	queryType = "ItemStatus"
)

// Query asks for the current state of one item.
type Query struct {
	ItemID core.ItemIDString
}

// BuildQuery creates a new Query for the item.
func BuildQuery(itemID core.ItemIDString) Query {
	return Query{ItemID: itemID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// ItemView is the state of an item as shown at the circulation desk.
type ItemView struct {
	ItemID          core.ItemIDString    `json:"itemId"`
	HomeLibraryID   core.LibraryIDString `json:"homeLibraryId"`
	ItemType        core.ItemTypeString  `json:"itemType"`
	Status          core.Status          `json:"status"`
	Available       bool                 `json:"available"`
	PendingRequests int                  `json:"pendingRequests"`
	Holds           []HoldView           `json:"holds"`
	SequenceNumber  uint                 `json:"sequenceNumber"`
}

// HoldView is one entry of the hold queue, head first.
type HoldView struct {
	HoldID          core.HoldIDString    `json:"holdId"`
	Kind            core.HoldKind        `json:"kind"`
	PatronID        core.PatronIDString  `json:"patronId"`
	PickupLibraryID core.LibraryIDString `json:"pickupLibraryId,omitempty"`
	StartDate       *time.Time           `json:"startDate,omitempty"`
	EndDate         *time.Time           `json:"endDate,omitempty"`
	RenewalCount    int                  `json:"renewalCount,omitempty"`
	RequestedAt     *time.Time           `json:"requestedAt,omitempty"`
}

// ProjectItemView replays the item's history into the view.
// An item which was never added to circulation yields core.ErrItemNotInCirculation.
func ProjectItemView(history core.DomainEvents, sequenceNumber eventstore.MaxSequenceNumberUint) (ItemView, error) {
	item, err := core.ItemFrom(history)
	if err != nil {
		return ItemView{}, err
	}

	if !item.InCirculation() {
		return ItemView{}, core.ErrItemNotInCirculation
	}

	queue := item.Holds()
	entries := queue.Entries()
	holds := make([]HoldView, 0, len(entries))

	for _, entry := range entries {
		holds = append(holds, holdViewFrom(entry))
	}

	return ItemView{
		ItemID:          item.ID(),
		HomeLibraryID:   item.HomeLibraryID(),
		ItemType:        item.ItemType(),
		Status:          item.Status(),
		Available:       item.Available(),
		PendingRequests: item.PendingRequestsCount(),
		Holds:           holds,
		SequenceNumber:  sequenceNumber,
	}, nil
}

func holdViewFrom(entry core.HoldEntry) HoldView {
	view := HoldView{
		HoldID:   entry.ID,
		Kind:     entry.Kind,
		PatronID: entry.PatronID,
	}

	if entry.IsLoan() {
		view.StartDate = timePtr(entry.StartDate)
		view.EndDate = timePtr(entry.EndDate)
		view.RenewalCount = entry.RenewalCount

		return view
	}

	view.PickupLibraryID = entry.PickupLibraryID
	view.RequestedAt = timePtr(entry.RequestedAt)

	return view
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
