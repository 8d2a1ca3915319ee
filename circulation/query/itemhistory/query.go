package itemhistory

import (
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
)

const (
	queryType = "ItemHistory"
)

// Query asks for the complete event history of one item.
type Query struct {
	ItemID core.ItemIDString
}

// BuildQuery creates a new Query for the item.
func BuildQuery(itemID core.ItemIDString) Query {
	return Query{ItemID: itemID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// ItemHistory is the audit view of an item, oldest entry first.
type ItemHistory struct {
	ItemID  core.ItemIDString `json:"itemId"`
	Entries []Entry           `json:"entries"`
}

// Entry is one recorded transition together with its tracking metadata.
type Entry struct {
	EventType     string              `json:"eventType"`
	OccurredAt    time.Time           `json:"occurredAt"`
	MessageID     shell.MessageID     `json:"messageId"`
	CausationID   shell.CausationID   `json:"causationId"`
	CorrelationID shell.CorrelationID `json:"correlationId"`
	Event         core.DomainEvent    `json:"event"`
}

// ProjectItemHistory turns the envelopes of an item into its audit view.
func ProjectItemHistory(envelopes shell.EventEnvelopes, query Query) ItemHistory {
	entries := make([]Entry, 0, len(envelopes))

	for _, envelope := range envelopes {
		entries = append(entries, Entry{
			EventType:     envelope.DomainEvent.IsEventType(),
			OccurredAt:    envelope.DomainEvent.HasOccurredAt(),
			MessageID:     envelope.EventMetadata.MessageID,
			CausationID:   envelope.EventMetadata.CausationID,
			CorrelationID: envelope.EventMetadata.CorrelationID,
			Event:         envelope.DomainEvent,
		})
	}

	return ItemHistory{ItemID: query.ItemID, Entries: entries}
}
