// Package telemetry wires OpenTelemetry for the circulation service: a meter
// provider exported in Prometheus format, a tracer provider with an optional
// OTLP/HTTP exporter, and the eventstore collectors built on both.
package telemetry
