package signals

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
)

// Kind names an outbound signal.
type Kind string

const (
	KindTransactionLogged Kind = "transaction_logged"
	KindItemAtDesk        Kind = "item_at_desk"
)

// Signal is one outbound notification. Exactly one of TransactionLog and AtDesk is set, matching Kind.
type Signal struct {
	Kind           Kind                      `json:"kind"`
	TransactionLog *core.TransactionLogEntry `json:"transactionLog,omitempty"`
	AtDesk         *core.ItemAtDesk          `json:"atDesk,omitempty"`
}

// FromOutcome returns the signals a committed transition raises, the transaction log entry first.
func FromOutcome(outcome core.Outcome) []Signal {
	signals := make([]Signal, 0, 2)

	if outcome.LogEntry != nil {
		entry := *outcome.LogEntry
		signals = append(signals, Signal{Kind: KindTransactionLogged, TransactionLog: &entry})
	}

	if outcome.AtDesk != nil {
		atDesk := *outcome.AtDesk
		signals = append(signals, Signal{Kind: KindItemAtDesk, AtDesk: &atDesk})
	}

	return signals
}

// ItemID returns the item the signal is about.
func (s Signal) ItemID() core.ItemIDString {
	switch {
	case s.TransactionLog != nil:
		return s.TransactionLog.ItemID
	case s.AtDesk != nil:
		return s.AtDesk.ItemID
	default:
		return ""
	}
}

// Subscriber receives signals. Deliver may be called zero or more times for
// the same transition and must not assume anything about its outcome.
type Subscriber interface {
	Deliver(ctx context.Context, signal Signal) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, signal Signal) error

func (f SubscriberFunc) Deliver(ctx context.Context, signal Signal) error {
	return f(ctx, signal)
}
