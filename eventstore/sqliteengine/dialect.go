package sqliteengine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/sqlcore"
)

const dialectSQLite = "sqlite3"

type sqliteDialect struct{}

func (sqliteDialect) Name() string {
	return dialectSQLite
}

// PredicateExpression renders json_extract(payload, '$."key"') = 'val'.
func (sqliteDialect) PredicateExpression(predicate eventstore.FilterPredicate) (exp.Expression, error) {
	path := "$." + strconv.Quote(predicate.Key())

	return goqu.L("json_extract(?, ?) = ?", goqu.C(sqlcore.ColPayload), path, predicate.Val()), nil
}

func (sqliteDialect) EventValues(event eventstore.StorableEvent) []any {
	return []any{
		goqu.V(event.EventType),
		goqu.V(event.OccurredAt.UnixMicro()),
		goqu.V(string(event.PayloadJSON)),
		goqu.V(string(event.MetadataJSON)),
	}
}

func (sqliteDialect) ScanRow(rows adapters.DBRows) (sqlcore.Row, error) {
	var row sqlcore.Row
	var occurredAtMicros, sequenceNumber int64
	var payload, metadata string

	if err := rows.Scan(&row.EventType, &occurredAtMicros, &payload, &metadata, &sequenceNumber); err != nil {
		return sqlcore.Row{}, err
	}

	row.OccurredAt = time.UnixMicro(occurredAtMicros).UTC()
	row.Payload = []byte(payload)
	row.Metadata = []byte(metadata)
	row.SequenceNumber = eventstore.MaxSequenceNumberUint(sequenceNumber)

	return row, nil
}

func (sqliteDialect) SchemaStatements(tableName string) []string {
	table := quoteIdentifier(tableName)

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	sequence_number INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at INTEGER NOT NULL,
	event_type TEXT NOT NULL,
	payload TEXT NOT NULL CHECK (json_valid(payload)),
	metadata TEXT NOT NULL CHECK (json_valid(metadata)),
	append_timestamp INTEGER NOT NULL DEFAULT (CAST(unixepoch('subsec') * 1000000 AS INTEGER))
)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (event_type)`, quoteIdentifier("idx_"+tableName+"_event_type"), table),
	}
}

// quoteIdentifier quotes like goqu's sqlite3 dialect does.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// SerializableAppends is false: SQLite runs one writer at a time, so the conditional insert
// already sees every committed append.
func (sqliteDialect) SerializableAppends() bool {
	return false
}

func (sqliteDialect) IsSerializationFailure(_ error) bool {
	return false
}
