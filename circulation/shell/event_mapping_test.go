package shell_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	. "github.com/AntonStoeckl/library-circulation/circulation/shell" //nolint:revive
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

func Test_StorableEvents_Rebuild_The_Same_Item(t *testing.T) {
	// arrange
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	item := core.Item{}
	var history core.DomainEvents

	record := func(outcome core.Outcome, err error) {
		require.NoError(t, err)
		history = append(history, outcome.Event)
	}

	record(item.AddToCirculation("item-1", "L1", "book", now))
	record(item.LoanItem(core.Patron{ID: "P1", Barcode: "B1"}, "L1", time.Time{}, time.Time{}, core.DefaultLoanDurations(), now))
	record(item.RequestItem(core.Patron{ID: "P2", Barcode: "B2"}, "L2", now))
	record(item.RequestItem(core.Patron{ID: "P3", Barcode: "B3"}, "L1", now))
	record(item.ExtendLoan(time.Time{}, nil, core.DefaultLoanDurations(), now))
	record(item.ReturnItem("L1", now))

	storableEvents := make(eventstore.StorableEvents, 0, len(history))
	for _, event := range history {
		storableEvent, err := StorableEventFrom(event, NewEventMetadata(NewMessageID(), ""))
		require.NoError(t, err)
		storableEvents = append(storableEvents, storableEvent)
	}

	// act
	domainEvents, err := DomainEventsFrom(storableEvents)
	require.NoError(t, err)

	rebuilt, err := core.ItemFrom(domainEvents)

	// assert
	require.NoError(t, err)
	assert.Equal(t, history, domainEvents)
	assert.Equal(t, item.Status(), rebuilt.Status())
	assert.Equal(t, item.Holds().Entries(), rebuilt.Holds().Entries())
	assert.Equal(t, core.StatusInTransit, rebuilt.Status())
}

func Test_StorableEventFrom_Writes_Payload_Keys_Used_By_Filters(t *testing.T) {
	// arrange
	event := core.BuildItemRequestedByPatron("item-1", "hold-1", core.Patron{ID: "P1", Barcode: "B1"}, "L2", time.Now())

	// act
	storableEvent, err := StorableEventWithEmptyMetadataFrom(event)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.ItemRequestedByPatronEventType, storableEvent.EventType)
	assert.Contains(t, string(storableEvent.PayloadJSON), `"ItemID":"item-1"`)
	assert.Contains(t, string(storableEvent.PayloadJSON), `"PatronID":"P1"`)
	assert.JSONEq(t, `{}`, string(storableEvent.MetadataJSON))
}

func Test_DomainEventFrom_Fails_For_Unknown_EventType(t *testing.T) {
	// arrange
	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata("BookCopyLentToReader", time.Now(), []byte(`{}`))
	require.NoError(t, err)

	// act
	_, err = DomainEventFrom(storableEvent)

	// assert
	assert.ErrorIs(t, err, ErrMappingToDomainEventFailed)
	assert.ErrorIs(t, err, ErrMappingToDomainEventUnknownEventType)
}

func Test_DomainEventFrom_Fails_For_Malformed_Payload(t *testing.T) {
	// arrange
	storableEvent := eventstore.StorableEvent{
		EventType:    core.ItemLostEventType,
		PayloadJSON:  []byte(`{"CanceledHoldIDs": "not-a-list"}`),
		MetadataJSON: []byte(`{}`),
	}

	// act
	_, err := DomainEventFrom(storableEvent)

	// assert
	assert.ErrorIs(t, err, ErrMappingToDomainEventFailed)
}

func Test_EventEnvelopeFrom_Carries_Metadata(t *testing.T) {
	// arrange
	commandID := NewMessageID()
	metadata := NewEventMetadata(commandID, "corr-1")
	storableEvent, err := StorableEventFrom(core.BuildMissingItemReturned("item-1", time.Now()), metadata)
	require.NoError(t, err)

	// act
	envelope, err := EventEnvelopeFrom(storableEvent)

	// assert
	require.NoError(t, err)
	assert.Equal(t, metadata, envelope.EventMetadata)
	assert.Equal(t, commandID, envelope.EventMetadata.CausationID)
	assert.Equal(t, "corr-1", envelope.EventMetadata.CorrelationID)
	assert.IsType(t, core.MissingItemReturned{}, envelope.DomainEvent)
}

func Test_NewEventMetadata_Starts_Correlation_At_The_Command(t *testing.T) {
	// arrange
	commandID := NewMessageID()

	// act
	metadata := NewEventMetadata(commandID, "")

	// assert
	assert.Equal(t, commandID, metadata.CausationID)
	assert.Equal(t, commandID, metadata.CorrelationID)
	assert.NotEqual(t, commandID, metadata.MessageID)
}
