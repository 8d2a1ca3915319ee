package signals

import (
	"context"
	"slices"
	"sync"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// Recorder keeps every delivered signal in memory.
type Recorder struct {
	mu      sync.Mutex
	signals []Signal
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Deliver(_ context.Context, signal Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.signals = append(r.signals, signal)

	return nil
}

// Signals returns all recorded signals in delivery order.
func (r *Recorder) Signals() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.signals)
}

// TransactionLog returns the recorded transaction log entries in delivery order.
func (r *Recorder) TransactionLog() []core.TransactionLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]core.TransactionLogEntry, 0, len(r.signals))
	for _, signal := range r.signals {
		if signal.TransactionLog != nil {
			entries = append(entries, *signal.TransactionLog)
		}
	}

	return entries
}

// ItemsAtDesk returns the recorded item_at_desk signals in delivery order.
func (r *Recorder) ItemsAtDesk() []core.ItemAtDesk {
	r.mu.Lock()
	defer r.mu.Unlock()

	atDesk := make([]core.ItemAtDesk, 0, len(r.signals))
	for _, signal := range r.signals {
		if signal.AtDesk != nil {
			atDesk = append(atDesk, *signal.AtDesk)
		}
	}

	return atDesk
}

// LogSubscriber writes every signal to a structured log, which makes the log the audit trail.
type LogSubscriber struct {
	logger eventstore.ContextualLogger
}

func NewLogSubscriber(logger eventstore.ContextualLogger) *LogSubscriber {
	return &LogSubscriber{logger: logger}
}

func (s *LogSubscriber) Deliver(ctx context.Context, signal Signal) error {
	switch {
	case signal.TransactionLog != nil:
		entry := signal.TransactionLog
		s.logger.InfoContext(ctx, "transaction logged",
			"operation", entry.Operation.String(),
			logAttrItemID, entry.ItemID,
			"patron_barcode", entry.PatronBarcode,
			"occurred_at", entry.OccurredAt,
		)

	case signal.AtDesk != nil:
		atDesk := signal.AtDesk
		s.logger.InfoContext(ctx, "item at desk",
			logAttrItemID, atDesk.ItemID,
			"hold_id", atDesk.HoldID,
			"patron_id", atDesk.PatronID,
			"pickup_library_id", atDesk.PickupLibraryID,
		)
	}

	return nil
}
