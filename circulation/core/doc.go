// Package core contains the circulation domain of a single catalogued item:
// its status, its hold queue, the routing rule, and the domain events
// which record every transition.
//
// Everything in here is synchronous and free of I/O. An Item is rebuilt from
// its event history with ItemFrom, a transition method decides one event and
// applies it, and the returned Outcome carries the event plus the signals
// (transaction log entry, item at desk) the shell dispatches after commit.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
