package command

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
)

const (
	addItemToCirculationType = "AddItemToCirculation"
	loanItemType             = "LoanItem"
	requestItemType          = "RequestItem"
	returnItemType           = "ReturnItem"
	receiveItemType          = "ReceiveItem"
	validateItemRequestType  = "ValidateItemRequest"
	extendLoanType           = "ExtendLoan"
	loseItemType             = "LoseItem"
	returnMissingItemType    = "ReturnMissingItem"
	cancelHoldType           = "CancelHold"
)

// Command is implemented by every command of this package.
type Command interface {
	CommandType() string

	// TargetItemID names the item whose history is the consistency boundary.
	TargetItemID() core.ItemIDString

	decide(item *core.Item, policy Policy) (core.Outcome, error)
}

// AddItemToCirculation puts a new item on the shelf of its home library.
type AddItemToCirculation struct {
	ItemID        core.ItemIDString
	HomeLibraryID core.LibraryIDString
	ItemType      core.ItemTypeString
	OccurredAt    core.OccurredAtTS
}

func BuildAddItemToCirculation(
	itemID core.ItemIDString,
	homeLibraryID core.LibraryIDString,
	itemType core.ItemTypeString,
	occurredAt time.Time,
) AddItemToCirculation {

	return AddItemToCirculation{
		ItemID:        itemID,
		HomeLibraryID: homeLibraryID,
		ItemType:      itemType,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}

func (c AddItemToCirculation) CommandType() string             { return addItemToCirculationType }
func (c AddItemToCirculation) TargetItemID() core.ItemIDString { return c.ItemID }

func (c AddItemToCirculation) decide(item *core.Item, _ Policy) (core.Outcome, error) {
	return item.AddToCirculation(c.ItemID, c.HomeLibraryID, c.ItemType, c.OccurredAt)
}

// LoanItem checks an item out to a patron. Zero dates are filled in from the policy.
type LoanItem struct {
	ItemID          core.ItemIDString
	Patron          core.Patron
	PickupLibraryID core.LibraryIDString
	StartDate       time.Time
	EndDate         time.Time
	OccurredAt      core.OccurredAtTS
}

func BuildLoanItem(
	itemID core.ItemIDString,
	patron core.Patron,
	pickupLibraryID core.LibraryIDString,
	startDate time.Time,
	endDate time.Time,
	occurredAt time.Time,
) LoanItem {

	return LoanItem{
		ItemID:          itemID,
		Patron:          patron,
		PickupLibraryID: pickupLibraryID,
		StartDate:       startDate,
		EndDate:         endDate,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}

func (c LoanItem) CommandType() string             { return loanItemType }
func (c LoanItem) TargetItemID() core.ItemIDString { return c.ItemID }

func (c LoanItem) decide(item *core.Item, policy Policy) (core.Outcome, error) {
	return item.LoanItem(c.Patron, c.PickupLibraryID, c.StartDate, c.EndDate, policy.LoanDurations, c.OccurredAt)
}

// RequestItem queues a request of a patron for pickup at a library.
type RequestItem struct {
	ItemID          core.ItemIDString
	Patron          core.Patron
	PickupLibraryID core.LibraryIDString
	OccurredAt      core.OccurredAtTS
}

func BuildRequestItem(
	itemID core.ItemIDString,
	patron core.Patron,
	pickupLibraryID core.LibraryIDString,
	occurredAt time.Time,
) RequestItem {

	return RequestItem{
		ItemID:          itemID,
		Patron:          patron,
		PickupLibraryID: pickupLibraryID,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}

func (c RequestItem) CommandType() string             { return requestItemType }
func (c RequestItem) TargetItemID() core.ItemIDString { return c.ItemID }

func (c RequestItem) decide(item *core.Item, _ Policy) (core.Outcome, error) {
	return item.RequestItem(c.Patron, c.PickupLibraryID, c.OccurredAt)
}

// ReturnItem checks a loaned item in at a library.
type ReturnItem struct {
	ItemID               core.ItemIDString
	TransactionLibraryID core.LibraryIDString
	OccurredAt           core.OccurredAtTS
}

func BuildReturnItem(itemID core.ItemIDString, transactionLibraryID core.LibraryIDString, occurredAt time.Time) ReturnItem {
	return ReturnItem{
		ItemID:               itemID,
		TransactionLibraryID: transactionLibraryID,
		OccurredAt:           core.ToOccurredAt(occurredAt),
	}
}

func (c ReturnItem) CommandType() string             { return returnItemType }
func (c ReturnItem) TargetItemID() core.ItemIDString { return c.ItemID }

func (c ReturnItem) decide(item *core.Item, _ Policy) (core.Outcome, error) {
	return item.ReturnItem(c.TransactionLibraryID, c.OccurredAt)
}

// ReceiveItem registers the arrival of an item in transit.
type ReceiveItem struct {
	ItemID               core.ItemIDString
	TransactionLibraryID core.LibraryIDString
	OccurredAt           core.OccurredAtTS
}

func BuildReceiveItem(itemID core.ItemIDString, transactionLibraryID core.LibraryIDString, occurredAt time.Time) ReceiveItem {
	return ReceiveItem{
		ItemID:               itemID,
		TransactionLibraryID: transactionLibraryID,
		OccurredAt:           core.ToOccurredAt(occurredAt),
	}
}

func (c ReceiveItem) CommandType() string             { return receiveItemType }
func (c ReceiveItem) TargetItemID() core.ItemIDString { return c.ItemID }

func (c ReceiveItem) decide(item *core.Item, _ Policy) (core.Outcome, error) {
	return item.ReceiveItem(c.TransactionLibraryID, c.OccurredAt)
}

// ValidateItemRequest pulls a shelved item for its first pending request.
type ValidateItemRequest struct {
	ItemID     core.ItemIDString
	OccurredAt core.OccurredAtTS
}

func BuildValidateItemRequest(itemID core.ItemIDString, occurredAt time.Time) ValidateItemRequest {
	return ValidateItemRequest{ItemID: itemID, OccurredAt: core.ToOccurredAt(occurredAt)}
}

func (c ValidateItemRequest) CommandType() string             { return validateItemRequestType }
func (c ValidateItemRequest) TargetItemID() core.ItemIDString { return c.ItemID }

func (c ValidateItemRequest) decide(item *core.Item, _ Policy) (core.Outcome, error) {
	return item.ValidateItemRequest(c.OccurredAt)
}

// ExtendLoan renews the active loan. A zero NewEndDate and a nil RenewalCount are filled in from the policy.
type ExtendLoan struct {
	ItemID       core.ItemIDString
	NewEndDate   time.Time
	RenewalCount *int
	OccurredAt   core.OccurredAtTS
}

func BuildExtendLoan(itemID core.ItemIDString, newEndDate time.Time, renewalCount *int, occurredAt time.Time) ExtendLoan {
	return ExtendLoan{
		ItemID:       itemID,
		NewEndDate:   newEndDate,
		RenewalCount: renewalCount,
		OccurredAt:   core.ToOccurredAt(occurredAt),
	}
}

func (c ExtendLoan) CommandType() string             { return extendLoanType }
func (c ExtendLoan) TargetItemID() core.ItemIDString { return c.ItemID }

func (c ExtendLoan) decide(item *core.Item, policy Policy) (core.Outcome, error) {
	return item.ExtendLoan(c.NewEndDate, c.RenewalCount, policy.LoanDurations, c.OccurredAt)
}

// LoseItem declares an item missing.
type LoseItem struct {
	ItemID     core.ItemIDString
	OccurredAt core.OccurredAtTS
}

func BuildLoseItem(itemID core.ItemIDString, occurredAt time.Time) LoseItem {
	return LoseItem{ItemID: itemID, OccurredAt: core.ToOccurredAt(occurredAt)}
}

func (c LoseItem) CommandType() string             { return loseItemType }
func (c LoseItem) TargetItemID() core.ItemIDString { return c.ItemID }

func (c LoseItem) decide(item *core.Item, _ Policy) (core.Outcome, error) {
	return item.LoseItem(c.OccurredAt)
}

// ReturnMissingItem puts a missing item back on the shelf.
type ReturnMissingItem struct {
	ItemID     core.ItemIDString
	OccurredAt core.OccurredAtTS
}

func BuildReturnMissingItem(itemID core.ItemIDString, occurredAt time.Time) ReturnMissingItem {
	return ReturnMissingItem{ItemID: itemID, OccurredAt: core.ToOccurredAt(occurredAt)}
}

func (c ReturnMissingItem) CommandType() string             { return returnMissingItemType }
func (c ReturnMissingItem) TargetItemID() core.ItemIDString { return c.ItemID }

func (c ReturnMissingItem) decide(item *core.Item, _ Policy) (core.Outcome, error) {
	return item.ReturnMissingItem(c.OccurredAt)
}

// CancelHold withdraws a pending request from the hold queue.
type CancelHold struct {
	ItemID     core.ItemIDString
	HoldID     core.HoldIDString
	OccurredAt core.OccurredAtTS
}

func BuildCancelHold(itemID core.ItemIDString, holdID core.HoldIDString, occurredAt time.Time) CancelHold {
	return CancelHold{ItemID: itemID, HoldID: holdID, OccurredAt: core.ToOccurredAt(occurredAt)}
}

func (c CancelHold) CommandType() string             { return cancelHoldType }
func (c CancelHold) TargetItemID() core.ItemIDString { return c.ItemID }

func (c CancelHold) decide(item *core.Item, _ Policy) (core.Outcome, error) {
	return item.CancelHold(c.HoldID, c.OccurredAt)
}
