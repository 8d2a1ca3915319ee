// Package enginetest holds the behavior every event store engine must show, run by each engine's tests.
package enginetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Engine is the part of an engine the contract exercises.
type Engine interface {
	Query(ctx context.Context, filter eventstore.Filter) (eventstore.StorableEvents, eventstore.MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// Factory returns an engine on a fresh, empty events table.
type Factory func(t *testing.T) Engine

// Options tune the contract to engine capabilities.
type Options struct {
	// SerializesConcurrentAppends is set when racing appends on one filter are guaranteed to let only one through.
	SerializesConcurrentAppends bool
}

// Run runs the whole contract as subtests.
func Run(t *testing.T, newEngine Factory, options Options) {
	t.Run("query on empty store", func(t *testing.T) { queryOnEmptyStore(t, newEngine(t)) })
	t.Run("append when no event matches", func(t *testing.T) { appendWhenNoEventMatches(t, newEngine(t)) })
	t.Run("append with stale sequence conflicts", func(t *testing.T) { appendWithStaleSequenceConflicts(t, newEngine(t)) })
	t.Run("unrelated events do not conflict", func(t *testing.T) { unrelatedEventsDoNotConflict(t, newEngine(t)) })
	t.Run("multiple events are appended atomically", func(t *testing.T) { multipleEventsAreAppendedAtomically(t, newEngine(t)) })
	t.Run("filter combinations", func(t *testing.T) { filterCombinations(t, newEngine(t)) })

	if options.SerializesConcurrentAppends {
		t.Run("only one of racing appends wins", func(t *testing.T) { onlyOneOfRacingAppendsWins(t, newEngine(t)) })
	}
}

func itemFilter(itemID string) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("ItemAddedToCirculation", "ItemLoanedToPatron", "ItemReturnedByPatron").
		AndAnyPredicateOf(eventstore.P("ItemID", itemID)).
		Finalize()
}

func givenEvent(t *testing.T, eventType, itemID, patronID string, occurredAt time.Time) eventstore.StorableEvent {
	t.Helper()

	payload := `{"ItemID":"` + itemID + `","PatronID":"` + patronID + `"}`
	event, err := eventstore.BuildStorableEvent(eventType, occurredAt, []byte(payload), []byte(`{"MessageID":"`+uuid.NewString()+`"}`))
	require.NoError(t, err)

	return event
}

func givenAppended(t *testing.T, engine Engine, filter eventstore.Filter, events ...eventstore.StorableEvent) {
	t.Helper()

	_, maxSeq, err := engine.Query(context.Background(), filter)
	require.NoError(t, err)
	require.NoError(t, engine.Append(context.Background(), filter, maxSeq, events[0], events[1:]...))
}

func queryOnEmptyStore(t *testing.T, engine Engine) {
	// act
	events, maxSeq, err := engine.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(0), maxSeq)
}

func appendWhenNoEventMatches(t *testing.T, engine Engine) {
	// arrange
	ctx := context.Background()
	itemID := uuid.NewString()
	filter := itemFilter(itemID)
	occurredAt := time.Date(2025, 3, 4, 5, 6, 7, 123456000, time.UTC)
	event := givenEvent(t, "ItemAddedToCirculation", itemID, "", occurredAt)

	// act
	err := engine.Append(ctx, filter, 0, event)

	// assert
	require.NoError(t, err)

	events, maxSeq, err := engine.Query(ctx, filter)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Positive(t, maxSeq)
	assert.Equal(t, "ItemAddedToCirculation", events[0].EventType)
	assert.True(t, occurredAt.Equal(events[0].OccurredAt))
	assert.JSONEq(t, string(event.PayloadJSON), string(events[0].PayloadJSON))
	assert.JSONEq(t, string(event.MetadataJSON), string(events[0].MetadataJSON))
}

func appendWithStaleSequenceConflicts(t *testing.T, engine Engine) {
	// arrange
	ctx := context.Background()
	itemID := uuid.NewString()
	filter := itemFilter(itemID)
	now := time.Now().UTC()
	givenAppended(t, engine, filter, givenEvent(t, "ItemAddedToCirculation", itemID, "", now))

	_, staleMaxSeq, err := engine.Query(ctx, filter)
	require.NoError(t, err)

	givenAppended(t, engine, filter, givenEvent(t, "ItemLoanedToPatron", itemID, "p-1", now)) // concurrent writer

	// act
	err = engine.Append(ctx, filter, staleMaxSeq, givenEvent(t, "ItemLoanedToPatron", itemID, "p-2", now))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)

	events, _, err := engine.Query(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func unrelatedEventsDoNotConflict(t *testing.T, engine Engine) {
	// arrange
	ctx := context.Background()
	itemA, itemB := uuid.NewString(), uuid.NewString()
	now := time.Now().UTC()
	givenAppended(t, engine, itemFilter(itemA), givenEvent(t, "ItemAddedToCirculation", itemA, "", now))

	_, maxSeqA, err := engine.Query(ctx, itemFilter(itemA))
	require.NoError(t, err)

	givenAppended(t, engine, itemFilter(itemB), givenEvent(t, "ItemAddedToCirculation", itemB, "", now))

	// act
	err = engine.Append(ctx, itemFilter(itemA), maxSeqA, givenEvent(t, "ItemLoanedToPatron", itemA, "p-1", now))

	// assert
	assert.NoError(t, err)
}

func multipleEventsAreAppendedAtomically(t *testing.T, engine Engine) {
	// arrange
	ctx := context.Background()
	itemID := uuid.NewString()
	filter := itemFilter(itemID)
	now := time.Now().UTC()

	// act
	err := engine.Append(ctx, filter, 0,
		givenEvent(t, "ItemAddedToCirculation", itemID, "", now),
		givenEvent(t, "ItemLoanedToPatron", itemID, "p-1", now),
	)
	require.NoError(t, err)

	conflictErr := engine.Append(ctx, filter, 0,
		givenEvent(t, "ItemReturnedByPatron", itemID, "p-1", now),
		givenEvent(t, "ItemLoanedToPatron", itemID, "p-2", now),
	)

	// assert
	assert.ErrorIs(t, conflictErr, eventstore.ErrConcurrencyConflict)

	events, _, err := engine.Query(ctx, filter)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ItemAddedToCirculation", events[0].EventType)
	assert.Equal(t, "ItemLoanedToPatron", events[1].EventType)
}

func filterCombinations(t *testing.T, engine Engine) {
	// arrange
	itemID := uuid.NewString()
	otherItemID := uuid.NewString()
	patronID := uuid.NewString()
	now := time.Now().UTC()

	givenAppended(t, engine, itemFilter(itemID),
		givenEvent(t, "ItemAddedToCirculation", itemID, "", now),
		givenEvent(t, "ItemLoanedToPatron", itemID, patronID, now),
	)
	givenAppended(t, engine, itemFilter(otherItemID),
		givenEvent(t, "ItemAddedToCirculation", otherItemID, "", now),
		givenEvent(t, "ItemLoanedToPatron", otherItemID, patronID, now),
	)

	testCases := []struct {
		description    string
		filter         eventstore.Filter
		expectedEvents int
	}{
		{
			description:    "any event",
			filter:         eventstore.BuildEventFilter().MatchingAnyEvent(),
			expectedEvents: 4,
		},
		{
			description:    "event type only",
			filter:         eventstore.BuildEventFilter().Matching().AnyEventTypeOf("ItemLoanedToPatron").Finalize(),
			expectedEvents: 2,
		},
		{
			description:    "any predicate",
			filter:         eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("ItemID", itemID), eventstore.P("ItemID", otherItemID)).Finalize(),
			expectedEvents: 4,
		},
		{
			description:    "all predicates",
			filter:         eventstore.BuildEventFilter().Matching().AllPredicatesOf(eventstore.P("ItemID", itemID), eventstore.P("PatronID", patronID)).Finalize(),
			expectedEvents: 1,
		},
		{
			description: "or-ed items",
			filter: eventstore.BuildEventFilter().
				Matching().AnyEventTypeOf("ItemAddedToCirculation").AndAnyPredicateOf(eventstore.P("ItemID", itemID)).
				OrMatching().AnyEventTypeOf("ItemLoanedToPatron").AndAnyPredicateOf(eventstore.P("ItemID", otherItemID)).
				Finalize(),
			expectedEvents: 2,
		},
		{
			description:    "predicate value with a quote",
			filter:         eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("ItemID", "it's")).Finalize(),
			expectedEvents: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			events, _, err := engine.Query(context.Background(), tc.filter)

			// assert
			require.NoError(t, err)
			assert.Len(t, events, tc.expectedEvents)
		})
	}
}

func onlyOneOfRacingAppendsWins(t *testing.T, engine Engine) {
	// arrange
	ctx := context.Background()
	itemID := uuid.NewString()
	filter := itemFilter(itemID)
	now := time.Now().UTC()
	givenAppended(t, engine, filter, givenEvent(t, "ItemAddedToCirculation", itemID, "", now))

	_, maxSeq, err := engine.Query(ctx, filter)
	require.NoError(t, err)

	const writers = 8
	results := make(chan error, writers)

	loans := make(eventstore.StorableEvents, 0, writers)
	for range writers {
		loans = append(loans, givenEvent(t, "ItemLoanedToPatron", itemID, uuid.NewString(), now))
	}

	var wg sync.WaitGroup
	for _, loan := range loans {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- engine.Append(ctx, filter, maxSeq, loan)
		}()
	}

	// act
	wg.Wait()
	close(results)

	// assert
	succeeded, conflicted := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict):
			conflicted++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicted)
}
