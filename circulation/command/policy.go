package command

import (
	"github.com/AntonStoeckl/library-circulation/circulation/core"
)

// Policy holds the circulation rules that are configuration rather than state.
type Policy struct {
	LoanDurations core.LoanDurations
}

// DefaultPolicy lends every item type for core.DefaultLoanDays.
func DefaultPolicy() Policy {
	return Policy{LoanDurations: core.DefaultLoanDurations()}
}
