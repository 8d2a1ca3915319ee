package command

import (
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
	"github.com/AntonStoeckl/library-circulation/circulation/shell/observable"
)

// Handlers holds one observed handler per command.
type Handlers struct {
	AddItemToCirculation *observable.CommandWrapper[AddItemToCirculation]
	LoanItem             *observable.CommandWrapper[LoanItem]
	RequestItem          *observable.CommandWrapper[RequestItem]
	ReturnItem           *observable.CommandWrapper[ReturnItem]
	ReceiveItem          *observable.CommandWrapper[ReceiveItem]
	ValidateItemRequest  *observable.CommandWrapper[ValidateItemRequest]
	ExtendLoan           *observable.CommandWrapper[ExtendLoan]
	LoseItem             *observable.CommandWrapper[LoseItem]
	ReturnMissingItem    *observable.CommandWrapper[ReturnMissingItem]
	CancelHold           *observable.CommandWrapper[CancelHold]
}

// NewHandlers creates all command handlers on one event store and wraps them with observability.
func NewHandlers(
	eventStore shell.EventStore,
	policy Policy,
	observability observable.Config,
	opts ...Option,
) (Handlers, error) {

	var handlers Handlers
	var err error

	if handlers.AddItemToCirculation, err = observed[AddItemToCirculation](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.LoanItem, err = observed[LoanItem](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.RequestItem, err = observed[RequestItem](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.ReturnItem, err = observed[ReturnItem](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.ReceiveItem, err = observed[ReceiveItem](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.ValidateItemRequest, err = observed[ValidateItemRequest](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.ExtendLoan, err = observed[ExtendLoan](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.LoseItem, err = observed[LoseItem](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.ReturnMissingItem, err = observed[ReturnMissingItem](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	if handlers.CancelHold, err = observed[CancelHold](eventStore, policy, observability, opts); err != nil {
		return Handlers{}, err
	}

	return handlers, nil
}

func observed[C Command](
	eventStore shell.EventStore,
	policy Policy,
	observability observable.Config,
	opts []Option,
) (*observable.CommandWrapper[C], error) {

	handler, err := NewCommandHandler[C](eventStore, policy, opts...)
	if err != nil {
		return nil, err
	}

	return observable.NewCommandWrapper[C](handler, observable.CommandOptions[C](observability)...)
}
