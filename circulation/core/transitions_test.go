package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
)

const (
	libraryL1 = "L1"
	libraryL2 = "L2"
	libraryL3 = "L3"
)

var (
	patronP1 = core.Patron{ID: "P1", Barcode: "B-P1"}
	patronP2 = core.Patron{ID: "P2", Barcode: "B-P2"}
	patronP3 = core.Patron{ID: "P3", Barcode: "B-P3"}
	patronP4 = core.Patron{ID: "P4", Barcode: "B-P4"}
)

// circulationFixture keeps the item together with every event its transitions
// produced, so tests can check that replaying the history yields the same item.
type circulationFixture struct {
	t       *testing.T
	item    core.Item
	history core.DomainEvents
	now     time.Time
}

func givenItemOnShelf(t *testing.T, homeLibraryID string) *circulationFixture {
	t.Helper()

	f := &circulationFixture{t: t, now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	f.must(f.item.AddToCirculation("item-1", homeLibraryID, "book", f.tick()))

	return f
}

func (f *circulationFixture) tick() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}

func (f *circulationFixture) must(outcome core.Outcome, err error) core.Outcome {
	f.t.Helper()
	require.NoError(f.t, err)
	f.history = append(f.history, outcome.Event)
	assertInvariants(f.t, &f.item)

	return outcome
}

func (f *circulationFixture) loan(patron core.Patron) core.Outcome {
	f.t.Helper()
	return f.must(f.item.LoanItem(patron, "", time.Time{}, time.Time{}, core.DefaultLoanDurations(), f.tick()))
}

func (f *circulationFixture) request(patron core.Patron, pickupLibraryID string) core.Outcome {
	f.t.Helper()
	return f.must(f.item.RequestItem(patron, pickupLibraryID, f.tick()))
}

func (f *circulationFixture) assertReplayMatches() {
	f.t.Helper()

	replayed, err := core.ItemFrom(f.history)
	require.NoError(f.t, err)
	assert.Equal(f.t, f.item, replayed, "replaying the history must rebuild the same item")
}

func assertInvariants(t *testing.T, item *core.Item) {
	t.Helper()

	holds := item.Holds()
	head, hasHead := holds.Head()
	assert.Equal(t, item.Status() == core.StatusOnLoan, hasHead && head.IsLoan(), "status is on loan iff the head is a loan")

	for idx, entry := range holds.Entries() {
		if idx > 0 {
			assert.False(t, entry.IsLoan(), "a loan may only sit at the head")
		}
	}

	if item.Available() {
		assert.Equal(t, core.StatusOnShelf, item.Status(), "only a shelved item is available")
		assert.True(t, holds.IsEmpty(), "an available item has no holds")
	}
}

func assertInvalidTransition(t *testing.T, err error, current core.Status, operation core.Operation) {
	t.Helper()

	require.ErrorIs(t, err, core.ErrInvalidTransition)
	var transitionErr *core.InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, current, transitionErr.CurrentStatus)
	assert.Equal(t, operation, transitionErr.Operation)
}

func Test_ScenarioA_LoanAndReturnAtHomeLibrary(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	require.True(t, f.item.Available())

	// act
	loaned := f.loan(patronP1)

	// assert
	assert.Equal(t, core.StatusOnLoan, f.item.Status())
	holds := f.item.Holds()
	require.Equal(t, 1, holds.Len())
	head, _ := holds.Head()
	assert.True(t, head.IsLoan())
	assert.Equal(t, patronP1.ID, head.PatronID)
	assert.Equal(t, head.StartDate.Add(30*24*time.Hour), head.EndDate, "end defaults from the item type")
	require.NotNil(t, loaned.LogEntry)
	assert.Equal(t, core.OperationLoanItem, loaned.LogEntry.Operation)
	assert.Equal(t, patronP1.Barcode, loaned.LogEntry.PatronBarcode)

	// act
	returned := f.must(f.item.ReturnItem(libraryL1, f.tick()))

	// assert
	assert.Equal(t, core.StatusOnShelf, f.item.Status())
	assert.True(t, f.item.Holds().IsEmpty())
	assert.True(t, f.item.Available())
	assert.Nil(t, returned.AtDesk)
	require.NotNil(t, returned.LogEntry)
	assert.Equal(t, core.OperationReturnItem, returned.LogEntry.Operation)
	assert.Equal(t, patronP1.Barcode, returned.LogEntry.PatronBarcode)
	f.assertReplayMatches()
}

func Test_ScenarioB_RequestWhileOnShelfAndValidateForAnotherLibrary(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)

	// act
	requested := f.request(patronP2, libraryL2)

	// assert
	assert.Equal(t, core.StatusOnShelf, f.item.Status())
	assert.False(t, f.item.Available())
	assert.Nil(t, requested.LogEntry, "request_item does not log a transaction")
	entries := f.item.Holds().Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsRequest())
	assert.Equal(t, patronP2.ID, entries[0].PatronID)
	assert.Equal(t, libraryL2, entries[0].PickupLibraryID)

	// act
	validated := f.must(f.item.ValidateItemRequest(f.tick()))

	// assert
	assert.Equal(t, core.StatusInTransit, f.item.Status())
	assert.Nil(t, validated.AtDesk)
	require.NotNil(t, validated.LogEntry)
	assert.Equal(t, patronP2.Barcode, validated.LogEntry.PatronBarcode)
	assert.Equal(t, 1, f.item.Holds().Len(), "validate does not pop the request")
	f.assertReplayMatches()
}

func Test_ScenarioC_ReceiveAtPickupLibraryRaisesAtDeskOnce(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	request := f.request(patronP2, libraryL2)
	f.must(f.item.ValidateItemRequest(f.tick()))
	require.Equal(t, core.StatusInTransit, f.item.Status())

	// act
	received := f.must(f.item.ReceiveItem(libraryL2, f.tick()))

	// assert
	assert.Equal(t, core.StatusAtDesk, f.item.Status())
	require.NotNil(t, received.AtDesk)
	assert.Equal(t, "item-1", received.AtDesk.ItemID)
	assert.Equal(t, patronP2.ID, received.AtDesk.PatronID)
	assert.Equal(t, libraryL2, received.AtDesk.PickupLibraryID)
	assert.Equal(t, request.Event.(core.ItemRequestedByPatron).HoldID, received.AtDesk.HoldID)
	require.NotNil(t, received.LogEntry)
	assert.Equal(t, patronP2.Barcode, received.LogEntry.PatronBarcode)

	_, err := f.item.ReceiveItem(libraryL2, f.tick())
	assertInvalidTransition(t, err, core.StatusAtDesk, core.OperationReceiveItem)
	f.assertReplayMatches()
}

func Test_ScenarioD_ReturnWithPendingRequestForTransactionLibrary(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	f.loan(patronP1)
	f.request(patronP3, libraryL1)
	require.Equal(t, 1, f.item.PendingRequestsCount())

	// act
	returned := f.must(f.item.ReturnItem(libraryL1, f.tick()))

	// assert
	assert.Equal(t, core.StatusAtDesk, f.item.Status())
	entries := f.item.Holds().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, patronP3.ID, entries[0].PatronID)
	require.NotNil(t, returned.AtDesk)
	assert.Equal(t, patronP3.ID, returned.AtDesk.PatronID)
	assert.Equal(t, patronP1.Barcode, returned.LogEntry.PatronBarcode, "the log names the patron who returned")
	f.assertReplayMatches()
}

func Test_ScenarioE_ExtendLoanOnShelvedItemFails(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	before := f.item

	// act
	_, err := f.item.ExtendLoan(time.Time{}, nil, core.DefaultLoanDurations(), f.tick())

	// assert
	assertInvalidTransition(t, err, core.StatusOnShelf, core.OperationExtendLoan)
	assert.Equal(t, before, f.item, "a failed precondition must not change the item")
}

func Test_ScenarioF_LoseItemWithThreeRequestsAndFindItAgain(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	f.request(patronP2, libraryL2)
	f.request(patronP3, libraryL1)
	f.request(patronP4, libraryL3)
	require.Equal(t, 3, f.item.Holds().Len())

	// act
	lost := f.must(f.item.LoseItem(f.tick()))

	// assert
	assert.Equal(t, core.StatusMissing, f.item.Status())
	assert.True(t, f.item.Holds().IsEmpty())
	assert.Len(t, lost.Event.(core.ItemLost).CanceledHoldIDs, 3)
	assert.Nil(t, lost.AtDesk, "displaced requesters are not notified")
	require.NotNil(t, lost.LogEntry)
	assert.Equal(t, patronP2.Barcode, lost.LogEntry.PatronBarcode)

	// act
	found := f.must(f.item.ReturnMissingItem(f.tick()))

	// assert
	assert.Equal(t, core.StatusOnShelf, f.item.Status())
	assert.True(t, f.item.Available())
	require.NotNil(t, found.LogEntry)
	assert.Equal(t, core.OperationReturnMissingItem, found.LogEntry.Operation)
	f.assertReplayMatches()
}

func Test_RequestItem_IsFIFO(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	f.loan(patronP1)
	patrons := []core.Patron{patronP2, patronP3, patronP4}

	// act
	for _, patron := range patrons {
		f.request(patron, libraryL2)
	}

	// assert
	entries := f.item.Holds().Entries()
	require.Len(t, entries, 4)
	for idx, patron := range patrons {
		assert.Equal(t, patron.ID, entries[idx+1].PatronID)
	}
	first, err := f.item.FirstRequest()
	require.NoError(t, err)
	assert.Equal(t, patronP2.ID, first.PatronID)
	assert.Equal(t, 3, f.item.PendingRequestsCount())
	f.assertReplayMatches()
}

func Test_RequestItem_RequiresPickupLibrary(t *testing.T) {
	f := givenItemOnShelf(t, libraryL1)

	_, err := f.item.RequestItem(patronP2, "", f.tick())

	assert.ErrorIs(t, err, core.ErrPickupLibraryRequired)
	assert.True(t, f.item.Holds().IsEmpty())
}

func Test_RequestItem_NotAllowedWhileMissing(t *testing.T) {
	f := givenItemOnShelf(t, libraryL1)
	f.must(f.item.LoseItem(f.tick()))

	_, err := f.item.RequestItem(patronP2, libraryL1, f.tick())

	assertInvalidTransition(t, err, core.StatusMissing, core.OperationRequestItem)
}

func Test_LoanItem_ServesOwnRequestAtDeskAndKeepsHoldID(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	requested := f.request(patronP2, libraryL1)
	f.request(patronP3, libraryL2)
	f.must(f.item.ValidateItemRequest(f.tick()))
	require.Equal(t, core.StatusAtDesk, f.item.Status())

	// act
	f.loan(patronP2)

	// assert
	entries := f.item.Holds().Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsLoan())
	assert.Equal(t, requested.Event.(core.ItemRequestedByPatron).HoldID, entries[0].ID)
	assert.Equal(t, patronP3.ID, entries[1].PatronID)
	assert.Equal(t, 1, f.item.PendingRequestsCount())
	f.assertReplayMatches()
}

func Test_LoanItem_WithExplicitDates(t *testing.T) {
	f := givenItemOnShelf(t, libraryL1)
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)

	f.must(f.item.LoanItem(patronP1, libraryL1, start, end, core.DefaultLoanDurations(), f.tick()))

	loan, ok := f.item.ActiveLoan()
	require.True(t, ok)
	assert.Equal(t, start, loan.StartDate)
	assert.Equal(t, end, loan.EndDate)
	assert.Equal(t, 0, loan.RenewalCount)

	_, err := f.item.LoanItem(patronP2, "", time.Time{}, time.Time{}, core.DefaultLoanDurations(), f.tick())
	assertInvalidTransition(t, err, core.StatusOnLoan, core.OperationLoanItem)
}

func Test_LoanItem_RejectsEndBeforeStart(t *testing.T) {
	f := givenItemOnShelf(t, libraryL1)
	start := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)

	_, err := f.item.LoanItem(patronP1, "", start, start.Add(-time.Hour), core.DefaultLoanDurations(), f.tick())

	assert.ErrorIs(t, err, core.ErrInvalidEndDate)
	assert.Equal(t, core.StatusOnShelf, f.item.Status())
}

func Test_ReturnItem_AwayFromHomeWithoutRequestsGoesInTransit(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	f.loan(patronP1)

	// act
	f.must(f.item.ReturnItem(libraryL2, f.tick()))

	// assert
	assert.Equal(t, core.StatusInTransit, f.item.Status())

	// act: the item arrives back home
	received := f.must(f.item.ReceiveItem(libraryL1, f.tick()))

	// assert
	assert.Equal(t, core.StatusOnShelf, f.item.Status())
	assert.Equal(t, "", received.LogEntry.PatronBarcode)
	f.assertReplayMatches()
}

func Test_ValidateItemRequest_WithoutRequestFailsWithEmptyQueue(t *testing.T) {
	f := givenItemOnShelf(t, libraryL1)

	_, err := f.item.ValidateItemRequest(f.tick())

	assert.ErrorIs(t, err, core.ErrEmptyQueue)
	assert.Equal(t, core.StatusOnShelf, f.item.Status())
}

func Test_ValidateItemRequest_ForHomeLibraryGoesToDesk(t *testing.T) {
	f := givenItemOnShelf(t, libraryL1)
	f.request(patronP2, libraryL1)

	validated := f.must(f.item.ValidateItemRequest(f.tick()))

	assert.Equal(t, core.StatusAtDesk, f.item.Status())
	require.NotNil(t, validated.AtDesk)
	assert.Equal(t, patronP2.ID, validated.AtDesk.PatronID)
}

func Test_ExtendLoan_Defaults(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	f.loan(patronP1)
	loan, _ := f.item.ActiveLoan()

	// act
	extended := f.must(f.item.ExtendLoan(time.Time{}, nil, core.DefaultLoanDurations(), f.tick()))

	// assert
	renewed, _ := f.item.ActiveLoan()
	assert.Equal(t, loan.EndDate.Add(30*24*time.Hour), renewed.EndDate)
	assert.Equal(t, 1, renewed.RenewalCount)
	assert.Equal(t, loan.ID, renewed.ID)
	assert.Equal(t, core.StatusOnLoan, f.item.Status())
	assert.Equal(t, patronP1.Barcode, extended.LogEntry.PatronBarcode)

	// act
	explicitEnd := renewed.EndDate.Add(48 * time.Hour)
	count := 5
	f.must(f.item.ExtendLoan(explicitEnd, &count, core.DefaultLoanDurations(), f.tick()))

	// assert
	renewed, _ = f.item.ActiveLoan()
	assert.Equal(t, explicitEnd, renewed.EndDate)
	assert.Equal(t, 5, renewed.RenewalCount)
	f.assertReplayMatches()
}

func Test_ExtendLoan_RejectsNegativeRenewalCount(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	f.loan(patronP1)
	before, _ := f.item.ActiveLoan()
	count := -1

	// act
	_, err := f.item.ExtendLoan(time.Time{}, &count, core.DefaultLoanDurations(), f.tick())

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidRenewalCount)
	after, _ := f.item.ActiveLoan()
	assert.Equal(t, before, after, "a rejected extension leaves the loan untouched")
}

func Test_Available_OnlyOnShelfWithoutPendingRequests(t *testing.T) {
	testCases := []struct {
		name    string
		arrange func(f *circulationFixture)
		status  core.Status
		want    bool
	}{
		{
			name:    "on shelf with empty queue",
			arrange: func(*circulationFixture) {},
			status:  core.StatusOnShelf,
			want:    true,
		},
		{
			name:    "on shelf with one pending request",
			arrange: func(f *circulationFixture) { f.request(patronP2, libraryL1) },
			status:  core.StatusOnShelf,
			want:    false,
		},
		{
			name:    "on loan",
			arrange: func(f *circulationFixture) { f.loan(patronP1) },
			status:  core.StatusOnLoan,
			want:    false,
		},
		{
			name: "at desk with the request waiting",
			arrange: func(f *circulationFixture) {
				f.request(patronP2, libraryL1)
				f.must(f.item.ValidateItemRequest(f.tick()))
			},
			status: core.StatusAtDesk,
			want:   false,
		},
		{
			name: "at desk with empty queue",
			arrange: func(f *circulationFixture) {
				requested := f.request(patronP2, libraryL1)
				f.must(f.item.ValidateItemRequest(f.tick()))
				f.must(f.item.CancelHold(requested.Event.(core.ItemRequestedByPatron).HoldID, f.tick()))
			},
			status: core.StatusAtDesk,
			want:   false,
		},
		{
			name: "in transit",
			arrange: func(f *circulationFixture) {
				f.request(patronP2, libraryL2)
				f.must(f.item.ValidateItemRequest(f.tick()))
			},
			status: core.StatusInTransit,
			want:   false,
		},
		{
			name:    "missing",
			arrange: func(f *circulationFixture) { f.must(f.item.LoseItem(f.tick())) },
			status:  core.StatusMissing,
			want:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			f := givenItemOnShelf(t, libraryL1)
			tc.arrange(f)
			require.Equal(t, tc.status, f.item.Status())

			// act
			available := f.item.Available()

			// assert
			assert.Equal(t, tc.want, available)
		})
	}
}

func Test_CancelHold_IsIdempotentlySafe(t *testing.T) {
	// arrange
	f := givenItemOnShelf(t, libraryL1)
	f.loan(patronP1)
	first := f.request(patronP2, libraryL1)
	f.request(patronP3, libraryL2)
	holdID := first.Event.(core.ItemRequestedByPatron).HoldID

	// act
	canceled := f.must(f.item.CancelHold(holdID, f.tick()))
	_, secondErr := f.item.CancelHold(holdID, f.tick())

	// assert
	assert.Nil(t, canceled.LogEntry, "cancel_hold does not log a transaction")
	assert.ErrorIs(t, secondErr, core.ErrHoldNotFound)
	entries := f.item.Holds().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, patronP1.ID, entries[0].PatronID)
	assert.Equal(t, patronP3.ID, entries[1].PatronID)
	assertInvariants(t, &f.item)
	f.assertReplayMatches()
}

func Test_CancelHold_RefusesActiveLoan(t *testing.T) {
	f := givenItemOnShelf(t, libraryL1)
	f.loan(patronP1)
	loan, _ := f.item.ActiveLoan()

	_, err := f.item.CancelHold(loan.ID, f.tick())

	assertInvalidTransition(t, err, core.StatusOnLoan, core.OperationCancelHold)
	assert.Equal(t, core.StatusOnLoan, f.item.Status())
}

func Test_RoundTrip_LoanThenReturnAtHome(t *testing.T) {
	for _, itemType := range []string{"book", "dvd"} {
		t.Run(itemType, func(t *testing.T) {
			item := core.Item{}
			now := time.Now()
			_, err := item.AddToCirculation("item-rt", libraryL1, itemType, now)
			require.NoError(t, err)

			_, err = item.LoanItem(patronP1, "", time.Time{}, time.Time{}, core.BuildLoanDurations(14, map[string]int{"dvd": 3}), now)
			require.NoError(t, err)
			_, err = item.ReturnItem(libraryL1, now)
			require.NoError(t, err)

			assert.Equal(t, core.StatusOnShelf, item.Status())
			assert.True(t, item.Holds().IsEmpty())
		})
	}
}

func Test_Operations_OnItemNotInCirculation(t *testing.T) {
	item := core.Item{}
	now := time.Now()

	_, err := item.LoanItem(patronP1, "", time.Time{}, time.Time{}, core.DefaultLoanDurations(), now)
	assert.ErrorIs(t, err, core.ErrItemNotInCirculation)

	_, err = item.CancelHold("whatever", now)
	assert.ErrorIs(t, err, core.ErrItemNotInCirculation)

	_, err = item.AddToCirculation("item-1", libraryL1, "book", now)
	require.NoError(t, err)
	_, err = item.AddToCirculation("item-1", libraryL1, "book", now)
	assert.ErrorIs(t, err, core.ErrItemAlreadyInCirculation)
}

func Test_PreconditionTable(t *testing.T) {
	allStatuses := []core.Status{
		core.StatusOnShelf, core.StatusOnLoan, core.StatusAtDesk, core.StatusInTransit, core.StatusMissing,
	}

	allowed := map[core.Operation][]core.Status{
		core.OperationLoanItem:            {core.StatusOnShelf, core.StatusAtDesk},
		core.OperationRequestItem:         {core.StatusOnLoan, core.StatusOnShelf, core.StatusAtDesk, core.StatusInTransit},
		core.OperationReturnItem:          {core.StatusOnLoan},
		core.OperationReceiveItem:         {core.StatusInTransit},
		core.OperationValidateItemRequest: {core.StatusOnShelf},
		core.OperationExtendLoan:          {core.StatusOnLoan},
		core.OperationLoseItem:            {core.StatusOnLoan, core.StatusOnShelf, core.StatusAtDesk, core.StatusInTransit},
		core.OperationReturnMissingItem:   {core.StatusMissing},
		core.OperationCancelHold:          allStatuses,
	}

	for operation, statuses := range allowed {
		for _, status := range allStatuses {
			assert.Equal(t, contains(statuses, status), operation.Allows(status), "%s while %s", operation, status)
		}
	}
}

func Test_ItemFrom_UnknownEvent(t *testing.T) {
	_, err := core.ItemFrom(core.DomainEvents{unknownEvent{}})

	assert.ErrorIs(t, err, core.ErrReplayingHistoryFailed)
	assert.ErrorIs(t, err, core.ErrUnknownEvent)
}

type unknownEvent struct{}

func (unknownEvent) IsEventType() string         { return "Unknown" }
func (unknownEvent) HasOccurredAt() time.Time    { return time.Time{} }
func (unknownEvent) HasItemID() core.ItemIDString { return "" }

func contains(statuses []core.Status, status core.Status) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}

	return false
}
