package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.ItemAddedToCirculationEventType:
		return unmarshalDomainEvent[core.ItemAddedToCirculation](storableEvent.PayloadJSON)

	case core.ItemLoanedToPatronEventType:
		return unmarshalDomainEvent[core.ItemLoanedToPatron](storableEvent.PayloadJSON)

	case core.ItemRequestedByPatronEventType:
		return unmarshalDomainEvent[core.ItemRequestedByPatron](storableEvent.PayloadJSON)

	case core.ItemReturnedByPatronEventType:
		return unmarshalDomainEvent[core.ItemReturnedByPatron](storableEvent.PayloadJSON)

	case core.ItemReceivedAtLibraryEventType:
		return unmarshalDomainEvent[core.ItemReceivedAtLibrary](storableEvent.PayloadJSON)

	case core.ItemRequestValidatedEventType:
		return unmarshalDomainEvent[core.ItemRequestValidated](storableEvent.PayloadJSON)

	case core.LoanExtendedEventType:
		return unmarshalDomainEvent[core.LoanExtended](storableEvent.PayloadJSON)

	case core.ItemLostEventType:
		return unmarshalDomainEvent[core.ItemLost](storableEvent.PayloadJSON)

	case core.MissingItemReturnedEventType:
		return unmarshalDomainEvent[core.MissingItemReturned](storableEvent.PayloadJSON)

	case core.HoldCanceledEventType:
		return unmarshalDomainEvent[core.HoldCanceled](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalDomainEvent[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(E)

	err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}
