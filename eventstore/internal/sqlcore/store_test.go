package sqlcore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-circulation/testutil/spies"
)

var errCouldNotSerialize = errors.New("could not serialize access due to read/write dependencies among transactions")

type serializingDialect struct {
	stubDialect
}

func (serializingDialect) SerializableAppends() bool { return true }

func (serializingDialect) IsSerializationFailure(err error) bool {
	return errors.Is(err, errCouldNotSerialize)
}

type adapterSpy struct {
	execCalls             int
	execSerializableCalls int
	rowsAffected          int64
	err                   error
}

func (a *adapterSpy) Query(_ context.Context, _ string) (adapters.DBRows, error) {
	return nil, errors.New("not queried in these tests")
}

func (a *adapterSpy) Exec(_ context.Context, _ string) (adapters.DBResult, error) {
	a.execCalls++
	return a.result()
}

func (a *adapterSpy) ExecSerializable(_ context.Context, _ string) (adapters.DBResult, error) {
	a.execSerializableCalls++
	return a.result()
}

func (a *adapterSpy) result() (adapters.DBResult, error) {
	if a.err != nil {
		return nil, a.err
	}

	return affectedRows(a.rowsAffected), nil
}

type affectedRows int64

func (r affectedRows) RowsAffected() (int64, error) {
	return int64(r), nil
}

func givenLoanEvent(t *testing.T) (eventstore.Filter, eventstore.StorableEvent) {
	t.Helper()

	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("ItemLoanedToPatron").
		AndAnyPredicateOf(eventstore.P("ItemID", "item-1")).
		Finalize()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(
		"ItemLoanedToPatron",
		time.Now().UTC(),
		[]byte(`{"ItemID":"item-1","PatronID":"P1"}`),
	)
	require.NoError(t, err)

	return filter, event
}

func Test_Store_Append_RunsInSerializableTransaction_WhenDialectRequiresIt(t *testing.T) {
	// arrange
	db := &adapterSpy{rowsAffected: 1}
	store := NewStore(db, serializingDialect{}, DefaultConfig())
	filter, event := givenLoanEvent(t)

	// act
	err := store.Append(context.Background(), filter, 3, event)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, db.execSerializableCalls)
	assert.Zero(t, db.execCalls)
}

func Test_Store_Append_UsesPlainExec_WhenDialectDoesNotRequireTransaction(t *testing.T) {
	// arrange
	db := &adapterSpy{rowsAffected: 1}
	store := NewStore(db, stubDialect{}, DefaultConfig())
	filter, event := givenLoanEvent(t)

	// act
	err := store.Append(context.Background(), filter, 3, event)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, db.execCalls)
	assert.Zero(t, db.execSerializableCalls)
}

func Test_Store_Append_ReportsLostSerializationRace_AsConcurrencyConflict(t *testing.T) {
	// arrange
	metricsSpy := spies.NewMetricsCollectorSpy()
	cfg := DefaultConfig()
	cfg.MetricsCollector = metricsSpy

	db := &adapterSpy{err: fmt.Errorf("commit: %w", errCouldNotSerialize)}
	store := NewStore(db, serializingDialect{}, cfg)
	filter, event := givenLoanEvent(t)

	// act
	err := store.Append(context.Background(), filter, 3, event)

	// assert
	require.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
	assert.NotErrorIs(t, err, eventstore.ErrAppendingEventFailed)
	assert.True(t, metricsSpy.HasRecord(eventstore.MetricConcurrencyConflicts, map[string]string{labelOperation: eventstore.OperationAppend}))
	assert.True(t, metricsSpy.HasRecord(eventstore.MetricAppendDuration, map[string]string{labelStatus: eventstore.StatusConflict}))
}

func Test_Store_Append_KeepsOtherDatabaseErrors_Technical(t *testing.T) {
	// arrange
	db := &adapterSpy{err: errors.New("connection reset by peer")}
	store := NewStore(db, serializingDialect{}, DefaultConfig())
	filter, event := givenLoanEvent(t)

	// act
	err := store.Append(context.Background(), filter, 3, event)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
	assert.NotErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func Test_Store_Append_ReportsStaleSequence_AsConcurrencyConflict(t *testing.T) {
	// arrange
	db := &adapterSpy{rowsAffected: 0}
	store := NewStore(db, serializingDialect{}, DefaultConfig())
	filter, event := givenLoanEvent(t)

	// act
	err := store.Append(context.Background(), filter, 3, event)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}
