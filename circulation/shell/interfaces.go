package shell

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// QueriesEvents is the part of an event store the query handlers need.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// EventStore is what the command handlers need: a query and a conditional append.
type EventStore interface {
	QueriesEvents
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		storableEvent eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// Command is the contract of every command type. CommandType must work on the zero value.
type Command interface {
	CommandType() string
}

// Query is the contract of every query type. QueryType must work on the zero value.
type Query interface {
	QueryType() string
}

// CoreCommandHandler processes a command without observability concerns.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// CoreQueryHandler processes a query without observability concerns.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
