package core

// Status is the physical availability of an item.
type Status string

const (
	StatusOnShelf   Status = "on_shelf"
	StatusOnLoan    Status = "on_loan"
	StatusAtDesk    Status = "at_desk"
	StatusInTransit Status = "in_transit"
	StatusMissing   Status = "missing"
)

// Operation names the transition attempted on an item. The names are also
// used as the operation of a TransactionLogEntry.
type Operation string

const (
	OperationAddItem             Operation = "add_item"
	OperationLoanItem            Operation = "loan_item"
	OperationRequestItem         Operation = "request_item"
	OperationReturnItem          Operation = "return_item"
	OperationReceiveItem         Operation = "receive_item"
	OperationValidateItemRequest Operation = "validate_item_request"
	OperationExtendLoan          Operation = "extend_loan"
	OperationLoseItem            Operation = "lose_item"
	OperationReturnMissingItem   Operation = "return_missing_item"
	OperationCancelHold          Operation = "cancel_hold"
)

// allowedStatuses is the precondition table of the state machine.
// An operation missing from the table is allowed in any status.
var allowedStatuses = map[Operation][]Status{
	OperationLoanItem:            {StatusOnShelf, StatusAtDesk},
	OperationRequestItem:         {StatusOnLoan, StatusOnShelf, StatusAtDesk, StatusInTransit},
	OperationReturnItem:          {StatusOnLoan},
	OperationReceiveItem:         {StatusInTransit},
	OperationValidateItemRequest: {StatusOnShelf},
	OperationExtendLoan:          {StatusOnLoan},
	OperationLoseItem:            {StatusOnLoan, StatusOnShelf, StatusAtDesk, StatusInTransit},
	OperationReturnMissingItem:   {StatusMissing},
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOnShelf, StatusOnLoan, StatusAtDesk, StatusInTransit, StatusMissing:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

func (o Operation) String() string {
	return string(o)
}

// Allows reports whether operation o may be attempted while the item is in status s.
func (o Operation) Allows(s Status) bool {
	allowed, restricted := allowedStatuses[o]
	if !restricted {
		return true
	}

	for _, candidate := range allowed {
		if candidate == s {
			return true
		}
	}

	return false
}
