// Package patronholds implements the Patron Holds query: the loans and pending
// requests one patron holds across all items.
//
// The consistency boundary spans many items, which is possible because the
// event store filters by payload predicates instead of per-item streams.
package patronholds
