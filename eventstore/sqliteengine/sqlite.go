package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/sqlcore"
)

const driverName = "sqlite"

var ErrOpeningDatabaseFailed = errors.New("opening the sqlite database failed")

// OpenDB opens the SQLite database at path with a busy timeout, WAL journaling and foreign keys,
// restricted to a single connection.
func OpenDB(path string) (*sql.DB, error) {
	pragmas := url.Values{}
	pragmas.Add("_pragma", "busy_timeout(5000)")
	pragmas.Add("_pragma", "journal_mode(WAL)")
	pragmas.Add("_pragma", "foreign_keys(ON)")

	db, err := sql.Open(driverName, "file:"+path+"?"+pragmas.Encode())
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	return db, nil
}

// EventStore is the SQLite event store.
type EventStore struct {
	cfg   sqlcore.Config
	store *sqlcore.Store
}

// NewEventStoreFromSQLDB creates an EventStore on a sql.DB opened with the "sqlite" driver, e.g. by OpenDB.
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

	es.store = sqlcore.NewStore(db, sqliteDialect{}, es.cfg)

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
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	return es.store.Append(ctx, filter, expectedMaxSequenceNumber, event, additionalEvents...)
}

// CreateSchema creates the events table and its index if they don't exist.
func (es *EventStore) CreateSchema(ctx context.Context) error {
	return es.store.CreateSchema(ctx)
}

func (es *EventStore) TableName() string {
	return es.cfg.TableName
}
