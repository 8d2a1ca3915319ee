package postgresengine

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/sqlcore"
)

// EventStore is the PostgreSQL event store.
type EventStore struct {
	cfg   sqlcore.Config
	store *sqlcore.Store
}

// NewEventStoreFromPGXPool creates an EventStore on a pgx pool.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromPGXPoolAndReplica creates an EventStore which serves Query from the replica
// when the context carries eventstore.WithEventualConsistency. Append always goes to the primary.
func NewEventStoreFromPGXPoolAndReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if primary == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	if replica == nil {
		return newEventStore(adapters.NewPGXAdapter(primary), options...)
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewEventStoreFromSQLDB creates an EventStore on a sql.DB, usually opened with the "postgres" driver of lib/pq.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates an EventStore on a sqlx.DB.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (*EventStore, error) {
	es := &EventStore{cfg: sqlcore.DefaultConfig()}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	es.store = sqlcore.NewStore(db, postgresDialect{}, es.cfg)

	return es, nil
}

// Query returns the events matching the filter, ordered by sequence number,
// and the highest sequence number among them (0 if none match).
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	return es.store.Query(ctx, filter)
}

// Append appends the events atomically if no event matching the filter was appended after
// expectedMaxSequenceNumber, and returns eventstore.ErrConcurrencyConflict otherwise.
// Use the same filter as for the Query the decision was based on.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	return es.store.Append(ctx, filter, expectedMaxSequenceNumber, event, additionalEvents...)
}

// CreateSchema creates the events table and its indexes if they don't exist.
func (es *EventStore) CreateSchema(ctx context.Context) error {
	return es.store.CreateSchema(ctx)
}

func (es *EventStore) TableName() string {
	return es.cfg.TableName
}
