package patronholds

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// QueryHandler runs the Query-Project cycle for the holds of a patron.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

func (h QueryHandler) Handle(ctx context.Context, query Query) (PatronHolds, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, shell.PatronHoldEventsFilter(query.PatronID))
	if err != nil {
		return PatronHolds{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return PatronHolds{}, err
	}

	return ProjectPatronHolds(history, query, maxSequenceNumber), nil
}
