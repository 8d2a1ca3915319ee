// Package oteladapters implements the eventstore observability interfaces on OpenTelemetry:
// spans through a trace.Tracer, instruments through a metric.Meter, and logs through the slog bridge
// or the OpenTelemetry log API.
package oteladapters
