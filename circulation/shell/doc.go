// Package shell connects the circulation core to the event store.
//
// It maps domain events to storable events and back, carries event metadata,
// retries decisions on concurrency conflicts, and provides the logging, metrics
// and tracing helpers shared by the command and query handlers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' or 'adapter' layer.
package shell
