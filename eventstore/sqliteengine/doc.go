// Package sqliteengine is the SQLite engine of the event store, built on the pure Go modernc.org/sqlite driver.
//
// It serves single-node deployments and tests. Payload predicates are evaluated with json_extract,
// occurred_at is stored as Unix microseconds. SQLite serializes writers, so the conditional insert
// of Append cannot race: OpenDB limits the pool to one connection and enables WAL.
//
//	db, _ := sqliteengine.OpenDB("circulation.db")
//	store, _ := sqliteengine.NewEventStoreFromSQLDB(db)
//	_ = store.CreateSchema(ctx)
package sqliteengine
