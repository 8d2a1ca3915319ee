// Package signals delivers the outbound signals of committed transitions,
// transaction_logged and item_at_desk, to their subscribers.
//
// The command handler emits after the event was appended. Delivery is
// asynchronous and best effort: a slow or failing subscriber never blocks or
// rolls back a transition, and subscribers must tolerate seeing a signal zero
// or more times.
package signals
