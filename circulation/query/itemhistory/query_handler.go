package itemhistory

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// QueryHandler loads the history of an item including the metadata of each event.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{eventStore: eventStore}
}

// Handle returns core.ErrItemNotInCirculation for an item without history.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ItemHistory, error) {
	ctx = eventstore.WithEventualConsistency(ctx)

	storableEvents, _, err := h.eventStore.Query(ctx, shell.ItemEventsFilter(query.ItemID))
	if err != nil {
		return ItemHistory{}, err
	}

	if len(storableEvents) == 0 {
		return ItemHistory{}, core.ErrItemNotInCirculation
	}

	envelopes, err := shell.EventEnvelopesFrom(storableEvents)
	if err != nil {
		return ItemHistory{}, err
	}

	return ProjectItemHistory(envelopes, query), nil
}
