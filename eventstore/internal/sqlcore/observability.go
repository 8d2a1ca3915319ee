package sqlcore

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const (
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgCreateSchemaFailed       = "failed to create events schema"
	logMsgSchemaCreated            = "events schema created"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "

	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrTable            = "table"
	logAttrEventType        = "event_type"
	logAttrEventCount       = "event_count"
	logAttrDurationMS       = "duration_ms"
	logAttrExpectedEvents   = "expected_events"
	logAttrRowsAffected     = "rows_affected"
	logAttrExpectedSequence = "expected_sequence"

	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"

	attrOperation        = "operation"
	attrConsistency      = "consistency"
	attrEventCount       = "event_count"
	attrEventType        = "event_type"
	attrMaxSequence      = "max_sequence"
	attrExpectedSequence = "expected_sequence"
	attrRowsAffected     = "rows_affected"
	attrDurationMS       = "duration_ms"
	attrErrorType        = "error_type"

	errorTypeBuildQuery    = "build_query"
	errorTypeDatabaseQuery = "database_query"
	errorTypeDatabaseExec  = "database_exec"
	errorTypeRowScan       = "row_scan"
	errorTypeBuildEvent    = "build_storable_event"
	errorTypeRowsAffected  = "rows_affected"
)

// Both loggers are served when both are configured; the contextual one carries trace correlation.

func (s *Store) logSQL(ctx context.Context, action, sqlQuery string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.cfg.Logger != nil {
		s.cfg.Logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if s.cfg.ContextualLogger != nil {
		s.cfg.ContextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

func (s *Store) logInfo(ctx context.Context, action string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info(logMsgOperation+action, args...)
	}

	if s.cfg.ContextualLogger != nil {
		s.cfg.ContextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

func (s *Store) logWarn(ctx context.Context, msg string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Warn(msg, args...)
	}

	if s.cfg.ContextualLogger != nil {
		s.cfg.ContextualLogger.WarnContext(ctx, msg, args...)
	}
}

func (s *Store) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.cfg.Logger != nil {
		s.cfg.Logger.Error(msg, allArgs...)
	}

	if s.cfg.ContextualLogger != nil {
		s.cfg.ContextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

func (s *Store) recordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if s.cfg.MetricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operation, labelStatus: status}

	if collector, ok := s.cfg.MetricsCollector.(eventstore.ContextualMetricsCollector); ok {
		collector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.cfg.MetricsCollector.RecordDuration(metric, duration, labels)
}

func (s *Store) recordValue(ctx context.Context, metric string, value float64, operation string) {
	if s.cfg.MetricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operation, labelStatus: eventstore.StatusSuccess}

	if collector, ok := s.cfg.MetricsCollector.(eventstore.ContextualMetricsCollector); ok {
		collector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	s.cfg.MetricsCollector.RecordValue(metric, value, labels)
}

func (s *Store) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.cfg.MetricsCollector == nil {
		return
	}

	if collector, ok := s.cfg.MetricsCollector.(eventstore.ContextualMetricsCollector); ok {
		collector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.cfg.MetricsCollector.IncrementCounter(metric, labels)
}

func (s *Store) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if s.cfg.TracingCollector == nil {
		return ctx, nil
	}

	return s.cfg.TracingCollector.StartSpan(ctx, name, attrs)
}

func (s *Store) finishSpan(span eventstore.SpanContext, status string, attrs map[string]string) {
	if s.cfg.TracingCollector == nil || span == nil {
		return
	}

	s.cfg.TracingCollector.FinishSpan(span, status, attrs)
}

// toMilliseconds converts a duration to milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return strconv.FormatFloat(toMilliseconds(d), 'f', 2, 64)
}
