// Package storage opens the event store selected by the configuration.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/postgresengine"
	"github.com/AntonStoeckl/library-circulation/eventstore/sqliteengine"
	"github.com/AntonStoeckl/library-circulation/internal/config"
)

const (
	defaultMaxConnections    = int32(8)
	defaultMinConnections    = int32(2)
	defaultMaxOpenSQLConns   = 50
	defaultMaxIdleSQLConns   = 10
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5
)

var (
	ErrOpeningStoreFailed = errors.New("opening event store failed")
	ErrUnknownDriver      = errors.New("unknown store driver")
)

// EventStore is what the circulation handlers and the migrate command need from an engine.
type EventStore interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		storableEvent eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
	CreateSchema(ctx context.Context) error
	TableName() string
}

// Observability is passed on to the engine. Nil fields are skipped.
type Observability struct {
	Logger  eventstore.ContextualLogger
	Metrics eventstore.MetricsCollector
	Tracing eventstore.TracingCollector
}

// Store is an opened event store together with the connections it owns.
type Store struct {
	EventStore
	Driver  string
	Adapter string
	closers []func()
}

// Close releases all connections of the store.
func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open connects to the configured engine and creates the event store on it.
func Open(ctx context.Context, cfg config.Config, observability Observability) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return openSQLite(cfg, observability)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, observability)
	default:
		return nil, errors.Join(ErrUnknownDriver, errors.New(cfg.StoreDriver))
	}
}

func openSQLite(cfg config.Config, observability Observability) (*Store, error) {
	db, err := sqliteengine.OpenDB(cfg.StoreDSN)
	if err != nil {
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	options := []sqliteengine.Option{sqliteengine.WithTableName(cfg.StoreTable)}
	if observability.Logger != nil {
		options = append(options, sqliteengine.WithContextualLogger(observability.Logger))
	}
	if observability.Metrics != nil {
		options = append(options, sqliteengine.WithMetrics(observability.Metrics))
	}
	if observability.Tracing != nil {
		options = append(options, sqliteengine.WithTracing(observability.Tracing))
	}

	es, err := sqliteengine.NewEventStoreFromSQLDB(db, options...)
	if err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	return &Store{
		EventStore: es,
		Driver:     config.DriverSQLite,
		closers:    []func(){func() { _ = db.Close() }},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config, observability Observability) (*Store, error) {
	options := []postgresengine.Option{postgresengine.WithTableName(cfg.StoreTable)}
	if observability.Logger != nil {
		options = append(options, postgresengine.WithContextualLogger(observability.Logger))
	}
	if observability.Metrics != nil {
		options = append(options, postgresengine.WithMetrics(observability.Metrics))
	}
	if observability.Tracing != nil {
		options = append(options, postgresengine.WithTracing(observability.Tracing))
	}

	store := &Store{Driver: config.DriverPostgres, Adapter: cfg.StoreAdapter}

	var es *postgresengine.EventStore
	var err error

	switch cfg.StoreAdapter {
	case config.AdapterSQL:
		var db *sql.DB
		if db, err = OpenPostgresSQLDB(ctx, cfg.StoreDSN); err != nil {
			return nil, err
		}
		store.closers = append(store.closers, func() { _ = db.Close() })
		es, err = postgresengine.NewEventStoreFromSQLDB(db, options...)

	case config.AdapterSQLX:
		var db *sqlx.DB
		if db, err = OpenPostgresSQLX(ctx, cfg.StoreDSN); err != nil {
			return nil, err
		}
		store.closers = append(store.closers, func() { _ = db.Close() })
		es, err = postgresengine.NewEventStoreFromSQLX(db, options...)

	default:
		es, err = openPGX(ctx, cfg, store, options)
	}

	if err != nil {
		store.Close()
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	store.EventStore = es

	return store, nil
}

func openPGX(
	ctx context.Context,
	cfg config.Config,
	store *Store,
	options []postgresengine.Option,
) (*postgresengine.EventStore, error) {

	primary, err := OpenPGXPool(ctx, cfg.StoreDSN)
	if err != nil {
		return nil, err
	}
	store.closers = append(store.closers, primary.Close)

	if cfg.StoreReplicaDSN == "" {
		return postgresengine.NewEventStoreFromPGXPool(primary, options...)
	}

	replica, err := OpenPGXPool(ctx, cfg.StoreReplicaDSN)
	if err != nil {
		return nil, err
	}
	store.closers = append(store.closers, replica.Close)

	return postgresengine.NewEventStoreFromPGXPoolAndReplica(primary, replica, options...)
}

// PGXPoolConfig parses dsn and applies the pool defaults of the service.
func PGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	poolConfig.MaxConns = defaultMaxConnections
	poolConfig.MinConns = defaultMinConnections
	poolConfig.MaxConnLifetime = defaultMaxConnLifetime
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	poolConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return poolConfig, nil
}

// OpenPGXPool opens and pings a pgx pool.
func OpenPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := PGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	return pool, nil
}

// OpenPostgresSQLDB opens and pings a sql.DB with the lib/pq driver.
func OpenPostgresSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	configureSQLPool(db)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	return db, nil
}

// OpenPostgresSQLX opens and pings a sqlx.DB with the lib/pq driver.
func OpenPostgresSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningStoreFailed, err)
	}

	configureSQLPool(db.DB)

	return db, nil
}

func configureSQLPool(db *sql.DB) {
	db.SetMaxOpenConns(defaultMaxOpenSQLConns)
	db.SetMaxIdleConns(defaultMaxIdleSQLConns)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
