// Package postgresengine is the PostgreSQL engine of the event store.
//
// It works on a pgxpool.Pool (optionally with a read replica), a sql.DB opened with lib/pq,
// or a sqlx.DB. Payload predicates are evaluated with JSONB containment, so the gin index
// created by CreateSchema serves them.
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		pool,
//		postgresengine.WithTableName("events"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//
//	events, maxSeq, _ := store.Query(ctx, filter)
//	err := store.Append(ctx, filter, maxSeq, newEvent)
//
// Append runs its conditional insert in a SERIALIZABLE transaction. When two appends race on
// overlapping filters, Postgres aborts one of them with a serialization failure (SQLSTATE 40001),
// which Append reports as eventstore.ErrConcurrencyConflict.
package postgresengine
