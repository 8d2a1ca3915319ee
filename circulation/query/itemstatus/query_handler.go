package itemstatus

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// QueryHandler runs the Query-Project cycle for the item status.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle reads with eventual consistency; the view may lag behind the latest transition.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ItemView, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, shell.ItemEventsFilter(query.ItemID))
	if err != nil {
		return ItemView{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return ItemView{}, err
	}

	return ProjectItemView(history, maxSequenceNumber)
}
