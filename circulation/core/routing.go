package core

// RoutingDecision is the result of Route: the next status of an item and,
// for StatusAtDesk, the request it is waiting for.
type RoutingDecision struct {
	Status  Status
	Request *HoldEntry
}

// Route decides where an item goes after a return, receive or validate action.
//
//   - no pending request and acting at the home library: StatusOnShelf
//   - pending request with a pickup at the acting library: StatusAtDesk
//   - anything else: StatusInTransit
func Route(transactionLibraryID LibraryIDString, homeLibraryID LibraryIDString, firstPending *HoldEntry) RoutingDecision {
	if firstPending == nil {
		if transactionLibraryID == homeLibraryID {
			return RoutingDecision{Status: StatusOnShelf}
		}

		return RoutingDecision{Status: StatusInTransit}
	}

	if firstPending.PickupLibraryID == transactionLibraryID {
		request := *firstPending

		return RoutingDecision{Status: StatusAtDesk, Request: &request}
	}

	return RoutingDecision{Status: StatusInTransit}
}
