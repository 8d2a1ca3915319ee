package itemstatus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	. "github.com/AntonStoeckl/library-circulation/circulation/query/itemstatus" //nolint:revive
)

var fakeClock = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

func Test_ProjectItemView_LoanWithPendingRequest(t *testing.T) {
	// arrange
	loan := core.HoldEntry{
		ID:        "hold-1",
		Kind:      core.HoldKindLoan,
		PatronID:  "P1",
		StartDate: fakeClock,
		EndDate:   fakeClock.Add(14 * 24 * time.Hour),
	}
	history := core.DomainEvents{
		core.BuildItemAddedToCirculation("item-1", "L1", "book", fakeClock),
		core.BuildItemLoanedToPatron("item-1", loan.ID, core.Patron{ID: "P1", Barcode: "B1"}, "L1", loan.StartDate, loan.EndDate, fakeClock),
		core.BuildItemRequestedByPatron("item-1", "hold-2", core.Patron{ID: "P2", Barcode: "B2"}, "L2", fakeClock.Add(time.Hour)),
	}

	// act
	view, err := ProjectItemView(history, 3)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.StatusOnLoan, view.Status)
	assert.False(t, view.Available)
	assert.Equal(t, 1, view.PendingRequests)
	assert.Equal(t, uint(3), view.SequenceNumber)

	require.Len(t, view.Holds, 2)
	assert.Equal(t, core.HoldKindLoan, view.Holds[0].Kind)
	require.NotNil(t, view.Holds[0].EndDate)
	assert.Equal(t, loan.EndDate, *view.Holds[0].EndDate)
	assert.Nil(t, view.Holds[0].RequestedAt)

	assert.Equal(t, core.HoldKindRequest, view.Holds[1].Kind)
	assert.Equal(t, "L2", view.Holds[1].PickupLibraryID)
	assert.Nil(t, view.Holds[1].EndDate)
}

func Test_ProjectItemView_OnShelfWithoutHolds_IsAvailable(t *testing.T) {
	// arrange
	history := core.DomainEvents{core.BuildItemAddedToCirculation("item-1", "L1", "book", fakeClock)}

	// act
	view, err := ProjectItemView(history, 1)

	// assert
	require.NoError(t, err)
	assert.True(t, view.Available)
	assert.Equal(t, core.StatusOnShelf, view.Status)
	assert.Empty(t, view.Holds)
}

func Test_ProjectItemView_UnknownItem(t *testing.T) {
	// act
	_, err := ProjectItemView(nil, 0)

	// assert
	assert.ErrorIs(t, err, core.ErrItemNotInCirculation)
}

func Test_Query_Type(t *testing.T) {
	assert.Equal(t, "ItemStatus", BuildQuery("item-1").QueryType())
}
