package sqlcore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation/eventstore"
	"github.com/AntonStoeckl/library-circulation/eventstore/internal/adapters"
)

const DefaultTableName = "events"

// Config carries what the engines' functional options collect.
type Config struct {
	TableName        string
	Logger           eventstore.Logger
	ContextualLogger eventstore.ContextualLogger
	MetricsCollector eventstore.MetricsCollector
	TracingCollector eventstore.TracingCollector
}

// DefaultConfig returns a Config for the "events" table without any observability.
func DefaultConfig() Config {
	return Config{TableName: DefaultTableName}
}

// Store implements Query, Append and CreateSchema on top of a DBAdapter and a Dialect.
type Store struct {
	db      adapters.DBAdapter
	dialect Dialect
	cfg     Config
}

func NewStore(db adapters.DBAdapter, dialect Dialect, cfg Config) *Store {
	return &Store{db: db, dialect: dialect, cfg: cfg}
}

func (s *Store) TableName() string {
	return s.cfg.TableName
}

// Query returns the events matching the filter in sequence order together with the highest sequence number among them.
func (s *Store) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	ctx, span := s.startSpan(ctx, eventstore.SpanNameQuery, map[string]string{
		attrOperation:   eventstore.OperationQuery,
		attrConsistency: eventstore.GetConsistencyLevel(ctx).String(),
	})
	start := time.Now()

	sqlQuery, err := buildSelectQuery(s.dialect, s.cfg.TableName, filter)
	if err != nil {
		s.queryFailed(ctx, span, start, errorTypeBuildQuery, logMsgBuildSelectQueryFailed, err)
		return nil, 0, errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	rows, err := s.db.Query(ctx, sqlQuery)
	s.logSQL(ctx, eventstore.OperationQuery, sqlQuery, time.Since(start))

	if err != nil {
		s.queryFailed(ctx, span, start, errorTypeDatabaseQuery, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}
	defer s.closeRows(ctx, rows)

	events := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		row, scanErr := s.dialect.ScanRow(rows)
		if scanErr != nil {
			s.queryFailed(ctx, span, start, errorTypeRowScan, logMsgScanRowFailed, scanErr)
			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
		}

		event, buildErr := eventstore.BuildStorableEvent(row.EventType, row.OccurredAt, row.Payload, row.Metadata)
		if buildErr != nil {
			s.queryFailed(ctx, span, start, errorTypeBuildEvent, logMsgBuildStorableEventFailed, buildErr, logAttrEventType, row.EventType)
			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildErr)
		}

		events = append(events, event)
		maxSequenceNumber = row.SequenceNumber
	}

	if err = rows.Err(); err != nil {
		s.queryFailed(ctx, span, start, errorTypeRowScan, logMsgScanRowFailed, err)
		return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
	}

	duration := time.Since(start)
	s.logInfo(ctx, logMsgQueryCompleted, logAttrEventCount, len(events), logAttrDurationMS, toMilliseconds(duration))
	s.recordDuration(ctx, eventstore.MetricQueryDuration, duration, eventstore.OperationQuery, eventstore.StatusSuccess)
	s.recordValue(ctx, eventstore.MetricEventsQueried, float64(len(events)), eventstore.OperationQuery)
	s.finishSpan(span, eventstore.StatusSuccess, map[string]string{
		attrEventCount:  strconv.Itoa(len(events)),
		attrMaxSequence: strconv.FormatUint(uint64(maxSequenceNumber), 10),
		attrDurationMS:  formatMilliseconds(duration),
	})

	return events, maxSequenceNumber, nil
}

// Append inserts the events in one statement, but only if no event matching the filter
// was appended after expectedMaxSequenceNumber. Otherwise, it returns eventstore.ErrConcurrencyConflict.
// A dialect with SerializableAppends gets the statement in its own SERIALIZABLE transaction,
// and a serialization failure of that transaction is reported as a conflict as well.
func (s *Store) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	ctx, span := s.startSpan(ctx, eventstore.SpanNameAppend, map[string]string{
		attrOperation:        eventstore.OperationAppend,
		attrEventCount:       strconv.Itoa(len(allEvents)),
		attrEventType:        event.EventType,
		attrExpectedSequence: strconv.FormatUint(uint64(expectedMaxSequenceNumber), 10),
	})
	start := time.Now()

	sqlQuery, err := buildAppendQuery(s.dialect, s.cfg.TableName, allEvents, filter, expectedMaxSequenceNumber)
	if err != nil {
		s.appendFailed(ctx, span, start, errorTypeBuildQuery, logMsgBuildInsertQueryFailed, err, logAttrEventCount, len(allEvents))
		return errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	result, err := s.execAppend(ctx, sqlQuery)
	s.logSQL(ctx, eventstore.OperationAppend, sqlQuery, time.Since(start))

	if err != nil && s.dialect.IsSerializationFailure(err) {
		s.appendConflicted(ctx, span, start, len(allEvents), 0, expectedMaxSequenceNumber)
		return eventstore.ErrConcurrencyConflict
	}

	if err != nil {
		s.appendFailed(ctx, span, start, errorTypeDatabaseExec, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.appendFailed(ctx, span, start, errorTypeRowsAffected, logMsgRowsAffectedFailed, err)
		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, err)
	}

	if rowsAffected < int64(len(allEvents)) {
		s.appendConflicted(ctx, span, start, len(allEvents), rowsAffected, expectedMaxSequenceNumber)
		return eventstore.ErrConcurrencyConflict
	}

	duration := time.Since(start)

	s.logInfo(ctx, logMsgEventsAppended, logAttrEventCount, len(allEvents), logAttrDurationMS, toMilliseconds(duration))
	s.recordDuration(ctx, eventstore.MetricAppendDuration, duration, eventstore.OperationAppend, eventstore.StatusSuccess)
	s.recordValue(ctx, eventstore.MetricEventsAppended, float64(len(allEvents)), eventstore.OperationAppend)
	s.finishSpan(span, eventstore.StatusSuccess, map[string]string{
		attrRowsAffected: strconv.FormatInt(rowsAffected, 10),
		attrDurationMS:   formatMilliseconds(duration),
	})

	return nil
}

func (s *Store) execAppend(ctx context.Context, sqlQuery string) (adapters.DBResult, error) {
	if s.dialect.SerializableAppends() {
		return s.db.ExecSerializable(ctx, sqlQuery)
	}

	return s.db.Exec(ctx, sqlQuery)
}

func (s *Store) appendConflicted(
	ctx context.Context,
	span eventstore.SpanContext,
	start time.Time,
	eventCount int,
	rowsAffected int64,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) {

	duration := time.Since(start)

	s.logInfo(ctx, logMsgConcurrencyConflict,
		logAttrExpectedEvents, eventCount,
		logAttrRowsAffected, rowsAffected,
		logAttrExpectedSequence, expectedMaxSequenceNumber,
	)
	s.recordDuration(ctx, eventstore.MetricAppendDuration, duration, eventstore.OperationAppend, eventstore.StatusConflict)
	s.incrementCounter(ctx, eventstore.MetricConcurrencyConflicts, map[string]string{labelOperation: eventstore.OperationAppend})
	s.finishSpan(span, eventstore.StatusConflict, map[string]string{
		attrRowsAffected: strconv.FormatInt(rowsAffected, 10),
		attrDurationMS:   formatMilliseconds(duration),
	})
}

// CreateSchema runs the dialect's idempotent DDL.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, statement := range s.dialect.SchemaStatements(s.cfg.TableName) {
		if _, err := s.db.Exec(ctx, statement); err != nil {
			s.logError(ctx, logMsgCreateSchemaFailed, err, logAttrQuery, statement)
			return errors.Join(eventstore.ErrCreatingSchemaFailed, err)
		}
	}

	s.logInfo(ctx, logMsgSchemaCreated, logAttrTable, s.cfg.TableName)

	return nil
}

func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

func (s *Store) queryFailed(ctx context.Context, span eventstore.SpanContext, start time.Time, errorType, msg string, err error, args ...any) {
	s.failed(ctx, span, start, eventstore.MetricQueryDuration, eventstore.OperationQuery, errorType, msg, err, args...)
}

func (s *Store) appendFailed(ctx context.Context, span eventstore.SpanContext, start time.Time, errorType, msg string, err error, args ...any) {
	s.failed(ctx, span, start, eventstore.MetricAppendDuration, eventstore.OperationAppend, errorType, msg, err, args...)
}

func (s *Store) failed(
	ctx context.Context,
	span eventstore.SpanContext,
	start time.Time,
	durationMetric string,
	operation string,
	errorType string,
	msg string,
	err error,
	args ...any,
) {

	duration := time.Since(start)

	s.logError(ctx, msg, err, args...)
	s.recordDuration(ctx, durationMetric, duration, operation, eventstore.StatusError)
	s.incrementCounter(ctx, eventstore.MetricDatabaseErrors, map[string]string{
		labelOperation: operation,
		labelStatus:    eventstore.StatusError,
		labelErrorType: errorType,
	})
	s.finishSpan(span, eventstore.StatusError, map[string]string{
		attrErrorType:  errorType,
		attrDurationMS: formatMilliseconds(duration),
	})
}
