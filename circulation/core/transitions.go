package core

import (
	"time"
)

// AddToCirculation puts a new item on the shelf of its home library.
func (i *Item) AddToCirculation(
	itemID ItemIDString,
	homeLibraryID LibraryIDString,
	itemType ItemTypeString,
	now time.Time,
) (Outcome, error) {

	if i.inCirculation {
		return Outcome{}, ErrItemAlreadyInCirculation
	}

	event := BuildItemAddedToCirculation(itemID, homeLibraryID, itemType, now)

	return i.commit(event, nil, nil)
}

// LoanItem checks the item out to a patron.
//
// A zero startDate means now, a zero endDate means start plus the loan
// duration of the item type. If the head of the queue already belongs to the
// patron (their own request served at the desk) it becomes the loan and keeps
// its id.
func (i *Item) LoanItem(
	patron Patron,
	pickupLibraryID LibraryIDString,
	startDate time.Time,
	endDate time.Time,
	durations LoanDurations,
	now time.Time,
) (Outcome, error) {

	if err := i.guard(OperationLoanItem); err != nil {
		return Outcome{}, err
	}

	if startDate.IsZero() {
		startDate = now
	}

	if endDate.IsZero() {
		endDate = startDate.Add(durations.For(i.itemType))
	}

	if !endDate.After(startDate) {
		return Outcome{}, ErrInvalidEndDate
	}

	holdID := newHoldID()
	if head, ok := i.holds.Head(); ok {
		if head.PatronID == patron.ID {
			holdID = head.ID
		} else if head.IsLoan() {
			return Outcome{}, ErrLoanHeadOccupied
		}
	}

	event := BuildItemLoanedToPatron(i.id, holdID, patron, pickupLibraryID, startDate, endDate, now)

	return i.commit(event, logEntry(OperationLoanItem, i.id, patron.Barcode, event.OccurredAt), nil)
}

// RequestItem appends a request of the patron to the tail of the hold queue.
// The status does not change.
func (i *Item) RequestItem(patron Patron, pickupLibraryID LibraryIDString, requestedAt time.Time) (Outcome, error) {
	if err := i.guard(OperationRequestItem); err != nil {
		return Outcome{}, err
	}

	if pickupLibraryID == "" {
		return Outcome{}, ErrPickupLibraryRequired
	}

	event := BuildItemRequestedByPatron(i.id, newHoldID(), patron, pickupLibraryID, requestedAt)

	return i.commit(event, nil, nil)
}

// ReturnItem checks the loaned item in at the transaction library, ends the
// loan and routes the item to the shelf, the desk or into transit.
func (i *Item) ReturnItem(transactionLibraryID LibraryIDString, now time.Time) (Outcome, error) {
	if err := i.guard(OperationReturnItem); err != nil {
		return Outcome{}, err
	}

	loan, ok := i.ActiveLoan()
	if !ok {
		return Outcome{}, ErrEmptyQueue
	}

	var firstPending *HoldEntry
	if request, err := i.FirstRequest(); err == nil {
		firstPending = &request
	}

	decision := Route(transactionLibraryID, i.homeLibraryID, firstPending)
	event := BuildItemReturnedByPatron(i.id, loan, transactionLibraryID, decision.Status, now)

	return i.commit(
		event,
		logEntry(OperationReturnItem, i.id, loan.PatronBarcode, event.OccurredAt),
		atDesk(i.id, decision, event.OccurredAt),
	)
}

// ReceiveItem registers the arrival of an item in transit at the transaction
// library. The queue is inspected but not changed.
func (i *Item) ReceiveItem(transactionLibraryID LibraryIDString, now time.Time) (Outcome, error) {
	if err := i.guard(OperationReceiveItem); err != nil {
		return Outcome{}, err
	}

	var firstPending *HoldEntry
	var barcode PatronBarcodeString
	if request, err := i.FirstRequest(); err == nil {
		firstPending = &request
		barcode = request.PatronBarcode
	}

	decision := Route(transactionLibraryID, i.homeLibraryID, firstPending)
	event := BuildItemReceivedAtLibrary(i.id, transactionLibraryID, decision.Status, now)

	return i.commit(
		event,
		logEntry(OperationReceiveItem, i.id, barcode, event.OccurredAt),
		atDesk(i.id, decision, event.OccurredAt),
	)
}

// ValidateItemRequest pulls a shelved item for its first pending request. The
// item is acted on at its home library, so it goes to the desk when the
// request is picked up there and into transit otherwise.
func (i *Item) ValidateItemRequest(now time.Time) (Outcome, error) {
	if err := i.guard(OperationValidateItemRequest); err != nil {
		return Outcome{}, err
	}

	request, err := i.FirstRequest()
	if err != nil {
		return Outcome{}, err
	}

	decision := Route(i.homeLibraryID, i.homeLibraryID, &request)
	event := BuildItemRequestValidated(i.id, request, decision.Status, now)

	return i.commit(
		event,
		logEntry(OperationValidateItemRequest, i.id, request.PatronBarcode, event.OccurredAt),
		atDesk(i.id, decision, event.OccurredAt),
	)
}

// ExtendLoan renews the active loan.
//
// A zero newEndDate extends the current end date by the loan duration of the
// item type, a nil renewalCount increments the previous count.
func (i *Item) ExtendLoan(
	newEndDate time.Time,
	renewalCount *int,
	durations LoanDurations,
	now time.Time,
) (Outcome, error) {

	if err := i.guard(OperationExtendLoan); err != nil {
		return Outcome{}, err
	}

	loan, ok := i.ActiveLoan()
	if !ok {
		return Outcome{}, ErrEmptyQueue
	}

	if newEndDate.IsZero() {
		newEndDate = loan.EndDate.Add(durations.For(i.itemType))
	}

	if !newEndDate.After(loan.StartDate) {
		return Outcome{}, ErrInvalidEndDate
	}

	count := loan.RenewalCount + 1
	if renewalCount != nil {
		if *renewalCount < 0 {
			return Outcome{}, ErrInvalidRenewalCount
		}

		count = *renewalCount
	}

	event := BuildLoanExtended(i.id, loan, newEndDate, count, now)

	return i.commit(event, logEntry(OperationExtendLoan, i.id, loan.PatronBarcode, event.OccurredAt), nil)
}

// LoseItem declares the item missing and cancels every hold on it.
// Displaced requesters are not notified.
func (i *Item) LoseItem(now time.Time) (Outcome, error) {
	if err := i.guard(OperationLoseItem); err != nil {
		return Outcome{}, err
	}

	var barcode PatronBarcodeString
	if head, ok := i.holds.Head(); ok {
		barcode = head.PatronBarcode
	}

	entries := i.holds.Entries()
	canceled := make([]HoldIDString, 0, len(entries))
	for _, entry := range entries {
		canceled = append(canceled, entry.ID)
	}

	event := BuildItemLost(i.id, canceled, barcode, now)

	return i.commit(event, logEntry(OperationLoseItem, i.id, barcode, event.OccurredAt), nil)
}

// ReturnMissingItem puts a missing item back on the shelf.
func (i *Item) ReturnMissingItem(now time.Time) (Outcome, error) {
	if err := i.guard(OperationReturnMissingItem); err != nil {
		return Outcome{}, err
	}

	event := BuildMissingItemReturned(i.id, now)

	return i.commit(event, logEntry(OperationReturnMissingItem, i.id, "", event.OccurredAt), nil)
}

// CancelHold withdraws a pending request. The active loan cannot be canceled,
// it ends with ReturnItem or LoseItem. Canceling an id which is not in the
// queue returns ErrHoldNotFound and changes nothing.
func (i *Item) CancelHold(holdID HoldIDString, now time.Time) (Outcome, error) {
	if err := i.guard(OperationCancelHold); err != nil {
		return Outcome{}, err
	}

	hold, ok := i.holds.Find(holdID)
	if !ok {
		return Outcome{}, ErrHoldNotFound
	}

	if hold.IsLoan() {
		return Outcome{}, invalidTransition(i.status, OperationCancelHold)
	}

	event := BuildHoldCanceled(i.id, hold, now)

	return i.commit(event, nil, nil)
}

func (i *Item) guard(operation Operation) error {
	if !i.inCirculation {
		return ErrItemNotInCirculation
	}

	if !operation.Allows(i.status) {
		return invalidTransition(i.status, operation)
	}

	return nil
}

func (i *Item) commit(event DomainEvent, entry *TransactionLogEntry, desk *ItemAtDesk) (Outcome, error) {
	if err := i.apply(event); err != nil {
		return Outcome{}, err
	}

	return Outcome{Event: event, LogEntry: entry, AtDesk: desk}, nil
}
