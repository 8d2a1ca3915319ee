// Package query wires the read-side handlers of the circulation.
package query

import (
	"github.com/AntonStoeckl/library-circulation/circulation/query/itemhistory"
	"github.com/AntonStoeckl/library-circulation/circulation/query/itemstatus"
	"github.com/AntonStoeckl/library-circulation/circulation/query/patronholds"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
	"github.com/AntonStoeckl/library-circulation/circulation/shell/observable"
)

// Handlers holds one observed handler per query.
type Handlers struct {
	ItemStatus  *observable.QueryWrapper[itemstatus.Query, itemstatus.ItemView]
	PatronHolds *observable.QueryWrapper[patronholds.Query, patronholds.PatronHolds]
	ItemHistory *observable.QueryWrapper[itemhistory.Query, itemhistory.ItemHistory]
}

// NewHandlers creates all query handlers on one event store and wraps them with observability.
func NewHandlers(eventStore shell.QueriesEvents, observability observable.Config) (Handlers, error) {
	var handlers Handlers
	var err error

	handlers.ItemStatus, err = observable.NewQueryWrapper[itemstatus.Query, itemstatus.ItemView](
		itemstatus.NewQueryHandler(eventStore),
		observable.QueryOptions[itemstatus.Query, itemstatus.ItemView](observability)...,
	)
	if err != nil {
		return Handlers{}, err
	}

	handlers.PatronHolds, err = observable.NewQueryWrapper[patronholds.Query, patronholds.PatronHolds](
		patronholds.NewQueryHandler(eventStore),
		observable.QueryOptions[patronholds.Query, patronholds.PatronHolds](observability)...,
	)
	if err != nil {
		return Handlers{}, err
	}

	handlers.ItemHistory, err = observable.NewQueryWrapper[itemhistory.Query, itemhistory.ItemHistory](
		itemhistory.NewQueryHandler(eventStore),
		observable.QueryOptions[itemhistory.Query, itemhistory.ItemHistory](observability)...,
	)
	if err != nil {
		return Handlers{}, err
	}

	return handlers, nil
}
