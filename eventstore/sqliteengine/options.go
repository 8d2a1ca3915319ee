package sqliteengine

import (
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the events table name, "events" by default.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.cfg.TableName = tableName

		return nil
	}
}

// WithLogger sets a logger for the EventStore:
//
//	Debug: SQL statements with their durations
//	Info: event counts, durations and concurrency conflicts
//	Warn: cleanup failures
//	Error: failed operations
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.cfg.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a logger which receives the request context, for trace correlation.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.cfg.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the collector for query/append durations, event counts, conflicts and database errors.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.cfg.MetricsCollector = collector
		return nil
	}
}

// WithTracing sets the collector which receives one span per Query and Append.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.cfg.TracingCollector = collector
		return nil
	}
}
