package patronholds

import (
	"slices"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const (
	queryType = "PatronHolds"
)

// Query asks for the open holds of one patron across all items.
type Query struct {
	PatronID core.PatronIDString
}

// BuildQuery creates a new Query for the patron.
func BuildQuery(patronID core.PatronIDString) Query {
	return Query{PatronID: patronID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// PatronHolds lists the loans and pending requests of a patron, oldest first.
type PatronHolds struct {
	PatronID       core.PatronIDString `json:"patronId"`
	Loans          []Hold              `json:"loans"`
	Requests       []Hold              `json:"requests"`
	SequenceNumber uint                `json:"sequenceNumber"`
}

// Hold is one open hold of the patron.
type Hold struct {
	ItemID          core.ItemIDString    `json:"itemId"`
	HoldID          core.HoldIDString    `json:"holdId"`
	PickupLibraryID core.LibraryIDString `json:"pickupLibraryId"`
	Since           time.Time            `json:"since"`
	EndDate         *time.Time           `json:"endDate,omitempty"`
}

type openHold struct {
	Hold
	kind core.HoldKind
}

// ProjectPatronHolds folds the patron's hold events into their open holds.
//
// Loans and requests are opened by ItemLoanedToPatron and ItemRequestedByPatron.
// They are closed by ItemReturnedByPatron, HoldCanceled and by ItemLost, which
// cancels holds of all patrons of the item. A loan which reuses the id of the
// patron's own request replaces that request.
func ProjectPatronHolds(
	history core.DomainEvents,
	query Query,
	sequenceNumber eventstore.MaxSequenceNumberUint,
) PatronHolds {

	open := make(map[core.HoldIDString]*openHold)

	for _, event := range history {
		switch e := event.(type) {
		case core.ItemRequestedByPatron:
			if e.PatronID == query.PatronID {
				open[e.HoldID] = &openHold{
					Hold: Hold{ItemID: e.ItemID, HoldID: e.HoldID, PickupLibraryID: e.PickupLibraryID, Since: e.OccurredAt},
					kind: core.HoldKindRequest,
				}
			}

		case core.ItemLoanedToPatron:
			if e.PatronID == query.PatronID {
				endDate := e.EndDate
				open[e.HoldID] = &openHold{
					Hold: Hold{
						ItemID:          e.ItemID,
						HoldID:          e.HoldID,
						PickupLibraryID: e.PickupLibraryID,
						Since:           e.StartDate,
						EndDate:         &endDate,
					},
					kind: core.HoldKindLoan,
				}
			}

		case core.LoanExtended:
			if hold, ok := open[e.HoldID]; ok {
				endDate := e.EndDate
				hold.EndDate = &endDate
			}

		case core.ItemReturnedByPatron:
			delete(open, e.HoldID)

		case core.HoldCanceled:
			delete(open, e.HoldID)

		case core.ItemLost:
			for _, holdID := range e.CanceledHoldIDs {
				delete(open, holdID)
			}
		}
	}

	result := PatronHolds{
		PatronID:       query.PatronID,
		Loans:          make([]Hold, 0),
		Requests:       make([]Hold, 0),
		SequenceNumber: sequenceNumber,
	}

	for _, hold := range open {
		if hold.kind == core.HoldKindLoan {
			result.Loans = append(result.Loans, hold.Hold)
		} else {
			result.Requests = append(result.Requests, hold.Hold)
		}
	}

	bySince := func(a, b Hold) int { return a.Since.Compare(b.Since) }
	slices.SortFunc(result.Loans, bySince)
	slices.SortFunc(result.Requests, bySince)

	return result
}
