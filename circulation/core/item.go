package core

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

// Item is one catalogued item together with its hold queue.
//
// Its state changes only through the transition methods (see transitions.go),
// each of which decides exactly one DomainEvent and applies it. Replaying the
// same events with ItemFrom yields the same Item.
type Item struct {
	id            ItemIDString
	status        Status
	homeLibraryID LibraryIDString
	itemType      ItemTypeString
	holds         HoldQueue
	inCirculation bool
}

// ItemFrom rebuilds an item by replaying its event history in order.
// An empty history yields an item which is not in circulation.
func ItemFrom(history DomainEvents) (Item, error) {
	item := Item{}

	for _, event := range history {
		if err := item.apply(event); err != nil {
			return Item{}, errors.Join(ErrReplayingHistoryFailed, err)
		}
	}

	return item, nil
}

// ID returns the item id.
func (i *Item) ID() ItemIDString {
	return i.id
}

// Status returns the current status.
func (i *Item) Status() Status {
	return i.status
}

// HomeLibraryID returns the library owning the item.
func (i *Item) HomeLibraryID() LibraryIDString {
	return i.homeLibraryID
}

// ItemType returns the item type which selects the loan duration.
func (i *Item) ItemType() ItemTypeString {
	return i.itemType
}

// InCirculation reports whether the item was added to circulation.
func (i *Item) InCirculation() bool {
	return i.inCirculation
}

// Holds returns a copy of the hold queue.
func (i *Item) Holds() HoldQueue {
	return HoldQueue{entries: slices.Clone(i.holds.entries)}
}

// PendingRequestsCount returns the number of requests waiting for the item.
func (i *Item) PendingRequestsCount() int {
	return i.holds.PendingRequestsCount(i.status)
}

// FirstRequest returns the oldest pending request or ErrEmptyQueue.
func (i *Item) FirstRequest() (HoldEntry, error) {
	return i.holds.FirstRequest(i.status)
}

// ActiveLoan returns the loan at the head of the queue while the item is on loan.
func (i *Item) ActiveLoan() (HoldEntry, bool) {
	head, ok := i.holds.Head()
	if !ok || i.status != StatusOnLoan || !head.IsLoan() {
		return HoldEntry{}, false
	}

	return head, true
}

// Available reports whether the item can be handed out to anyone right now.
func (i *Item) Available() bool {
	return i.status == StatusOnShelf && i.PendingRequestsCount() == 0
}

func (i *Item) apply(event DomainEvent) error { //nolint:gocyclo // one case per event type
	switch e := event.(type) {
	case ItemAddedToCirculation:
		i.id = e.ItemID
		i.homeLibraryID = e.HomeLibraryID
		i.itemType = e.ItemType
		i.status = StatusOnShelf
		i.holds = HoldQueue{}
		i.inCirculation = true

	case ItemLoanedToPatron:
		if err := i.holds.SetLoanHead(e.holdEntry()); err != nil {
			return err
		}
		i.status = StatusOnLoan

	case ItemRequestedByPatron:
		return i.holds.EnqueueRequest(e.holdEntry())

	case ItemReturnedByPatron:
		if _, err := i.holds.PopHead(); err != nil {
			return err
		}
		i.status = e.ResultingStatus

	case ItemReceivedAtLibrary:
		i.status = e.ResultingStatus

	case ItemRequestValidated:
		i.status = e.ResultingStatus

	case LoanExtended:
		return i.holds.updateHead(func(loan *HoldEntry) {
			loan.EndDate = e.EndDate
			loan.RenewalCount = e.RenewalCount
		})

	case ItemLost:
		for _, holdID := range e.CanceledHoldIDs {
			if _, err := i.holds.Remove(holdID); err != nil {
				return err
			}
		}
		i.status = StatusMissing

	case MissingItemReturned:
		i.status = StatusOnShelf

	case HoldCanceled:
		if _, err := i.holds.Remove(e.HoldID); err != nil {
			return err
		}

	default:
		return ErrUnknownEvent
	}

	return nil
}

func newHoldID() HoldIDString {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
