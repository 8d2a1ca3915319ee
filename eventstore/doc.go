// Package eventstore holds the engine-agnostic types of an event store with dynamic consistency boundaries.
//
// There are no fixed streams. A Filter selects the events a decision depends on, Query returns them
// together with the highest sequence number among them, and Append only succeeds when no event matching
// the same Filter was appended in the meantime. Otherwise it returns ErrConcurrencyConflict and the
// caller queries again.
//
//	filter := eventstore.BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(core.ItemLoanedToPatronEventType, core.ItemReturnedByPatronEventType).
//		AndAnyPredicateOf(eventstore.P("ItemID", itemID)).
//		Finalize()
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	// ... decide ...
//	err = store.Append(ctx, filter, maxSeq, storableEvent)
//
// The engines live in the postgresengine and sqliteengine subpackages.
// Logger, MetricsCollector and TracingCollector are small interfaces for observability backends;
// oteladapters implements them on OpenTelemetry.
package eventstore
