package postgresengine

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/sqlcore"
)

const (
	dialectPostgres = "postgres"
	castText        = "?::text"
	castTimestamp   = "?::timestamp with time zone"
	castJsonb       = "?::jsonb"

	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

type postgresDialect struct{}

func (postgresDialect) Name() string {
	return dialectPostgres
}

// PredicateExpression renders payload @> '{"key": "val"}'::jsonb.
func (postgresDialect) PredicateExpression(predicate eventstore.FilterPredicate) (exp.Expression, error) {
	document, err := jsoniter.ConfigFastest.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})
	if err != nil {
		return nil, err
	}

	return goqu.L("? @> "+castJsonb, goqu.C(sqlcore.ColPayload), document), nil
}

func (postgresDialect) EventValues(event eventstore.StorableEvent) []any {
	return []any{
		goqu.L(castText, event.EventType),
		goqu.L(castTimestamp, event.OccurredAt),
		goqu.L(castJsonb, string(event.PayloadJSON)),
		goqu.L(castJsonb, string(event.MetadataJSON)),
	}
}

func (postgresDialect) ScanRow(rows adapters.DBRows) (sqlcore.Row, error) {
	var row sqlcore.Row
	var sequenceNumber int64

	if err := rows.Scan(&row.EventType, &row.OccurredAt, &row.Payload, &row.Metadata, &sequenceNumber); err != nil {
		return sqlcore.Row{}, err
	}

	row.SequenceNumber = eventstore.MaxSequenceNumberUint(sequenceNumber)

	return row, nil
}

func (postgresDialect) SchemaStatements(tableName string) []string {
	table := pq.QuoteIdentifier(tableName)

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	sequence_number BIGSERIAL PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	metadata JSONB NOT NULL,
	append_timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (event_type)`, pq.QuoteIdentifier("idx_"+tableName+"_event_type"), table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (occurred_at)`, pq.QuoteIdentifier("idx_"+tableName+"_occurred_at"), table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING gin (payload jsonb_path_ops)`, pq.QuoteIdentifier("idx_"+tableName+"_payload_gin"), table),
	}
}

func (postgresDialect) SerializableAppends() bool {
	return true
}

// IsSerializationFailure matches SQLSTATE 40001 and 40P01 from pgx and from lib/pq.
func (postgresDialect) IsSerializationFailure(err error) bool {
	var code string

	var pgErr *pgconn.PgError
	var pqErr *pq.Error

	switch {
	case errors.As(err, &pgErr):
		code = pgErr.Code
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	default:
		return false
	}

	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}
