package sqlcore

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/adapters"
)

const (
	ColSequenceNumber = "sequence_number"
	ColEventType      = "event_type"
	ColOccurredAt     = "occurred_at"
	ColPayload        = "payload"
	ColMetadata       = "metadata"

	cteContext  = "context"
	cteVals     = "vals"
	aliasMaxSeq = "max_seq"
)

// Row is one scanned events row.
type Row struct {
	EventType      string
	OccurredAt     time.Time
	Payload        []byte
	Metadata       []byte
	SequenceNumber eventstore.MaxSequenceNumberUint
}

// Dialect holds what differs between the SQL engines.
type Dialect interface {
	// Name is the goqu dialect name, e.g. "postgres" or "sqlite3".
	Name() string

	// PredicateExpression matches a top-level payload key against a string value.
	PredicateExpression(predicate eventstore.FilterPredicate) (exp.Expression, error)

	// EventValues returns the event_type, occurred_at, payload and metadata values, in that order.
	EventValues(event eventstore.StorableEvent) []any

	// ScanRow reads one row of event_type, occurred_at, payload, metadata, sequence_number.
	ScanRow(rows adapters.DBRows) (Row, error)

	// SchemaStatements returns the idempotent DDL for the events table.
	SchemaStatements(tableName string) []string

	// SerializableAppends is true when the conditional insert must run in a SERIALIZABLE
	// transaction for racing appends on one filter to be rejected.
	SerializableAppends() bool

	// IsSerializationFailure reports whether err is the database aborting a transaction
	// that lost a race against a concurrent one.
	IsSerializationFailure(err error) bool
}

// whereExpression turns a Filter into (item OR item ...), each item being
// (eventType OR ...) AND (predicate OR/AND ...). It returns nil for an empty Filter.
func whereExpression(dialect Dialect, filter eventstore.Filter) (exp.Expression, error) {
	if filter.IsEmpty() {
		return nil, nil
	}

	itemExpressions := make([]exp.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		parts := make([]exp.Expression, 0, 2)

		if len(item.EventTypes()) > 0 {
			eventTypes := make([]any, 0, len(item.EventTypes()))
			for _, eventType := range item.EventTypes() {
				eventTypes = append(eventTypes, eventType)
			}

			parts = append(parts, goqu.C(ColEventType).In(eventTypes...))
		}

		if len(item.Predicates()) > 0 {
			predicateExpressions := make([]exp.Expression, 0, len(item.Predicates()))

			for _, predicate := range item.Predicates() {
				expression, err := dialect.PredicateExpression(predicate)
				if err != nil {
					return nil, err
				}

				predicateExpressions = append(predicateExpressions, expression)
			}

			if item.AllPredicatesMustMatch() {
				parts = append(parts, goqu.And(predicateExpressions...))
			} else {
				parts = append(parts, goqu.Or(predicateExpressions...))
			}
		}

		itemExpressions = append(itemExpressions, goqu.And(parts...))
	}

	return goqu.Or(itemExpressions...), nil
}

func buildSelectQuery(dialect Dialect, tableName string, filter eventstore.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialect.Name()).
		From(tableName).
		Select(ColEventType, ColOccurredAt, ColPayload, ColMetadata, ColSequenceNumber).
		Order(goqu.I(ColSequenceNumber).Asc())

	where, err := whereExpression(dialect, filter)
	if err != nil {
		return "", err
	}

	if where != nil {
		selectStmt = selectStmt.Where(where)
	}

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", err
	}

	return sqlQuery, nil
}

// buildAppendQuery renders a conditional insert: the rows are only inserted when the highest
// sequence number matching the filter still equals expectedMaxSequenceNumber.
func buildAppendQuery(
	dialect Dialect,
	tableName string,
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {

	builder := goqu.Dialect(dialect.Name())

	cteStmt := builder.
		From(tableName).
		Select(goqu.MAX(ColSequenceNumber).As(aliasMaxSeq))

	where, err := whereExpression(dialect, filter)
	if err != nil {
		return "", err
	}

	if where != nil {
		cteStmt = cteStmt.Where(where)
	}

	unchanged := goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))

	insertStmt := builder.
		Insert(tableName).
		Cols(ColEventType, ColOccurredAt, ColPayload, ColMetadata).
		With(cteContext, cteStmt)

	if len(events) == 1 {
		insertStmt = insertStmt.FromQuery(
			builder.From(cteContext).
				Select(dialect.EventValues(events[0])...).
				Where(unchanged),
		)
	} else {
		var valsStmt *goqu.SelectDataset

		for _, event := range events {
			values := dialect.EventValues(event)
			row := builder.Select(
				goqu.L("?", values[0]).As(ColEventType),
				goqu.L("?", values[1]).As(ColOccurredAt),
				goqu.L("?", values[2]).As(ColPayload),
				goqu.L("?", values[3]).As(ColMetadata),
			)

			if valsStmt == nil {
				valsStmt = row
				continue
			}

			valsStmt = valsStmt.UnionAll(row)
		}

		insertStmt = insertStmt.
			With(cteVals, valsStmt).
			FromQuery(
				builder.From(cteContext, cteVals).
					Select(
						goqu.T(cteVals).Col(ColEventType),
						goqu.T(cteVals).Col(ColOccurredAt),
						goqu.T(cteVals).Col(ColPayload),
						goqu.T(cteVals).Col(ColMetadata),
					).
					Where(unchanged),
			)
	}

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", err
	}

	return sqlQuery, nil
}
