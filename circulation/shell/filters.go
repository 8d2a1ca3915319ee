package shell

import (
	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// ItemIDPredicateKey and PatronIDPredicateKey are payload keys of the domain events.
const (
	ItemIDPredicateKey   = "ItemID"
	PatronIDPredicateKey = "PatronID"
)

// ItemEventsFilter selects the complete history of one item. It is the
// consistency boundary of every command.
func ItemEventsFilter(itemID core.ItemIDString) eventstore.Filter {
	eventTypes := core.ItemEventTypes()

	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(eventTypes[0], eventTypes[1:]...).
		AndAnyPredicateOf(eventstore.P(ItemIDPredicateKey, itemID)).
		Finalize()
}

// PatronHoldEventsFilter selects the events which open or close holds of one
// patron, plus every ItemLost event because it cancels holds without naming their patrons.
func PatronHoldEventsFilter(patronID core.PatronIDString) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.ItemLoanedToPatronEventType,
			core.ItemRequestedByPatronEventType,
			core.ItemReturnedByPatronEventType,
			core.LoanExtendedEventType,
			core.HoldCanceledEventType,
		).
		AndAnyPredicateOf(eventstore.P(PatronIDPredicateKey, patronID)).
		OrMatching().
		AnyEventTypeOf(core.ItemLostEventType).
		Finalize()
}
