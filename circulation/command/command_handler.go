package command

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// ErrNilEventStore is returned when a handler is created without an event store.
var ErrNilEventStore = errors.New("event store must not be nil")

// Emitter receives the outcome of every committed transition.
type Emitter interface {
	Emit(ctx context.Context, outcome core.Outcome)
}

// CommandHandler runs the Query-Decide-Append cycle for commands of type C.
// It handles retries on concurrency conflicts, wrappers handle all observability concerns.
type CommandHandler[C Command] struct {
	eventStore   shell.EventStore
	policy       Policy
	emitter      Emitter
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler independent of its command type.
type Option func(*handlerConfig)

type handlerConfig struct {
	emitter      Emitter
	retryOptions []shell.RetryOption
}

// WithEmitter sets the receiver of the signals of committed transitions.
func WithEmitter(emitter Emitter) Option {
	return func(c *handlerConfig) {
		c.emitter = emitter
	}
}

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(c *handlerConfig) {
		c.retryOptions = opts
	}
}

// NewCommandHandler creates a handler for commands of type C.
func NewCommandHandler[C Command](eventStore shell.EventStore, policy Policy, opts ...Option) (CommandHandler[C], error) {
	if eventStore == nil {
		return CommandHandler[C]{}, ErrNilEventStore
	}

	config := handlerConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	return CommandHandler[C]{
		eventStore:   eventStore,
		policy:       policy,
		emitter:      config.emitter,
		retryOptions: config.retryOptions,
	}, nil
}

// Handle executes the command, retrying the complete cycle on concurrency conflicts.
// Rejections by the item's state machine are returned unchanged and nothing is appended.
func (h CommandHandler[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	commandMessageID := shell.NewMessageID()

	var outcome core.Outcome
	var item core.Item

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		outcome, item, execErr = h.executeCommand(retryCtx, command, commandMessageID)

		return execErr
	}, h.retryOptions...)

	result := shell.NewHandlerResult(retryMetrics)
	if err != nil {
		return result, err
	}

	result.EventType = outcome.Event.IsEventType()
	result.ItemStatus = item.Status()
	result.HoldID = holdIDOf(outcome.Event)

	if h.emitter != nil {
		h.emitter.Emit(ctx, outcome)
	}

	return result, nil
}

// executeCommand contains the part of the command processing that can be retried.
func (h CommandHandler[C]) executeCommand(
	ctx context.Context,
	command C,
	commandMessageID shell.MessageID,
) (core.Outcome, core.Item, error) {

	filter := shell.ItemEventsFilter(command.TargetItemID())

	ctx = eventstore.WithStrongConsistency(ctx)

	// Query phase
	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, filter)
	if err != nil {
		return core.Outcome{}, core.Item{}, err
	}

	// Unmarshal phase
	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return core.Outcome{}, core.Item{}, err
	}

	item, err := core.ItemFrom(history)
	if err != nil {
		return core.Outcome{}, core.Item{}, err
	}

	// Decide phase
	outcome, err := command.decide(&item, h.policy)
	if err != nil {
		return core.Outcome{}, core.Item{}, err
	}

	// Append phase
	eventMetadata := shell.NewEventMetadata(commandMessageID, shell.CorrelationIDFrom(ctx))

	storableEvent, err := shell.StorableEventFrom(outcome.Event, eventMetadata)
	if err != nil {
		return core.Outcome{}, core.Item{}, err
	}

	if err = h.eventStore.Append(ctx, filter, maxSequenceNumber, storableEvent); err != nil {
		return core.Outcome{}, core.Item{}, err
	}

	return outcome, item, nil
}

func holdIDOf(event core.DomainEvent) core.HoldIDString {
	switch e := event.(type) {
	case core.ItemLoanedToPatron:
		return e.HoldID
	case core.ItemRequestedByPatron:
		return e.HoldID
	case core.ItemReturnedByPatron:
		return e.HoldID
	case core.ItemRequestValidated:
		return e.HoldID
	case core.LoanExtended:
		return e.HoldID
	case core.HoldCanceled:
		return e.HoldID
	default:
		return ""
	}
}
