package core

import (
	"time"
)

// DefaultLoanDays is the loan duration used for item types without an entry.
const DefaultLoanDays = 30

// LoanDurations maps item types to loan durations with a fallback.
type LoanDurations struct {
	byItemType map[ItemTypeString]time.Duration
	fallback   time.Duration
}

// DefaultLoanDurations returns a table which lends every item type for DefaultLoanDays.
func DefaultLoanDurations() LoanDurations {
	return BuildLoanDurations(DefaultLoanDays, nil)
}

// BuildLoanDurations creates a table from day counts. Non-positive values fall back to DefaultLoanDays.
func BuildLoanDurations(defaultDays int, daysByItemType map[ItemTypeString]int) LoanDurations {
	if defaultDays <= 0 {
		defaultDays = DefaultLoanDays
	}

	durations := LoanDurations{
		byItemType: make(map[ItemTypeString]time.Duration, len(daysByItemType)),
		fallback:   days(defaultDays),
	}

	for itemType, d := range daysByItemType {
		if d > 0 {
			durations.byItemType[itemType] = days(d)
		}
	}

	return durations
}

// For returns the loan duration of the given item type.
func (d LoanDurations) For(itemType ItemTypeString) time.Duration {
	if duration, ok := d.byItemType[itemType]; ok {
		return duration
	}

	if d.fallback == 0 {
		return days(DefaultLoanDays)
	}

	return d.fallback
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
