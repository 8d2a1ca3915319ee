package itemhistory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	. "github.com/AntonStoeckl/library-circulation/circulation/query/itemhistory" //nolint:revive
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
)

var fakeClock = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

func Test_ProjectItemHistory_Keeps_Order_And_Metadata(t *testing.T) {
	// arrange
	envelopes := shell.EventEnvelopes{
		{
			DomainEvent:   core.BuildItemAddedToCirculation("item-1", "L1", "book", fakeClock),
			EventMetadata: shell.EventMetadata{MessageID: "m-1", CausationID: "c-1", CorrelationID: "c-1"},
		},
		{
			DomainEvent:   core.BuildItemLost("item-1", nil, "", fakeClock.Add(time.Hour)),
			EventMetadata: shell.EventMetadata{MessageID: "m-2", CausationID: "c-2", CorrelationID: "desk-7"},
		},
	}

	// act
	history := ProjectItemHistory(envelopes, BuildQuery("item-1"))

	// assert
	assert.Equal(t, "item-1", history.ItemID)
	require.Len(t, history.Entries, 2)
	assert.Equal(t, core.ItemAddedToCirculationEventType, history.Entries[0].EventType)
	assert.Equal(t, fakeClock, history.Entries[0].OccurredAt)
	assert.Equal(t, core.ItemLostEventType, history.Entries[1].EventType)
	assert.Equal(t, "m-2", history.Entries[1].MessageID)
	assert.Equal(t, "c-2", history.Entries[1].CausationID)
	assert.Equal(t, "desk-7", history.Entries[1].CorrelationID)
}

func Test_ProjectItemHistory_Empty(t *testing.T) {
	history := ProjectItemHistory(nil, BuildQuery("item-1"))

	assert.NotNil(t, history.Entries)
	assert.Empty(t, history.Entries)
}
