package core

import (
	"slices"
)

// HoldQueue is the ordered wait queue of one item. Requests are admitted at
// the tail, the active loan (if any) always sits at index 0, and no operation
// reorders existing entries.
//
// The zero value is an empty queue. Read accessors take a value receiver, so
// they also work on the copy returned by Item.Holds.
type HoldQueue struct {
	entries []HoldEntry
}

// Len returns the number of entries including the active loan.
func (q HoldQueue) Len() int {
	return len(q.entries)
}

// IsEmpty reports whether the queue has no entries.
func (q HoldQueue) IsEmpty() bool {
	return len(q.entries) == 0
}

// Entries returns a copy of all entries in queue order.
func (q HoldQueue) Entries() []HoldEntry {
	return slices.Clone(q.entries)
}

// Head returns the entry at index 0.
func (q HoldQueue) Head() (HoldEntry, bool) {
	if len(q.entries) == 0 {
		return HoldEntry{}, false
	}

	return q.entries[0], true
}

// Tail returns the most recently admitted entry.
func (q HoldQueue) Tail() (HoldEntry, bool) {
	if len(q.entries) == 0 {
		return HoldEntry{}, false
	}

	return q.entries[len(q.entries)-1], true
}

// Find returns the entry with the given id.
func (q HoldQueue) Find(id HoldIDString) (HoldEntry, bool) {
	idx := q.indexOf(id)
	if idx < 0 {
		return HoldEntry{}, false
	}

	return q.entries[idx], true
}

// EnqueueRequest appends a request to the tail.
func (q *HoldQueue) EnqueueRequest(entry HoldEntry) error {
	if !entry.IsRequest() {
		return ErrWrongHoldKind
	}

	q.entries = append(q.entries, entry)

	return nil
}

// SetLoanHead places a loan at the head. If the head already belongs to the
// same patron (a renewed loan or the patron's own request being served) it is
// replaced in place, otherwise the loan is inserted in front of the queue.
func (q *HoldQueue) SetLoanHead(entry HoldEntry) error {
	if !entry.IsLoan() {
		return ErrWrongHoldKind
	}

	head, ok := q.Head()

	switch {
	case ok && head.PatronID == entry.PatronID:
		q.entries[0] = entry
	case ok && head.IsLoan():
		return ErrLoanHeadOccupied
	default:
		q.entries = slices.Insert(q.entries, 0, entry)
	}

	return nil
}

// PopHead removes and returns the entry at index 0.
func (q *HoldQueue) PopHead() (HoldEntry, error) {
	if len(q.entries) == 0 {
		return HoldEntry{}, ErrEmptyQueue
	}

	head := q.entries[0]
	q.entries = slices.Delete(q.entries, 0, 1)

	return head, nil
}

// Remove deletes the entry with the given id from anywhere in the queue.
func (q *HoldQueue) Remove(id HoldIDString) (HoldEntry, error) {
	idx := q.indexOf(id)
	if idx < 0 {
		return HoldEntry{}, ErrHoldNotFound
	}

	removed := q.entries[idx]
	q.entries = slices.Delete(q.entries, idx, idx+1)

	return removed, nil
}

// PendingRequestsCount returns the number of requests waiting behind the
// active loan. Index 0 is the loan only while the item is on loan.
func (q HoldQueue) PendingRequestsCount(status Status) int {
	if status == StatusOnLoan {
		return max(len(q.entries)-1, 0)
	}

	return len(q.entries)
}

// FirstRequest returns the oldest pending request, which is index 1 while the
// item is on loan and index 0 otherwise.
func (q HoldQueue) FirstRequest(status Status) (HoldEntry, error) {
	idx := 0
	if status == StatusOnLoan {
		idx = 1
	}

	if idx >= len(q.entries) || !q.entries[idx].IsRequest() {
		return HoldEntry{}, ErrEmptyQueue
	}

	return q.entries[idx], nil
}

func (q *HoldQueue) updateHead(update func(*HoldEntry)) error {
	if len(q.entries) == 0 {
		return ErrEmptyQueue
	}

	update(&q.entries[0])

	return nil
}

func (q HoldQueue) indexOf(id HoldIDString) int {
	return slices.IndexFunc(q.entries, func(h HoldEntry) bool {
		return h.ID == id
	})
}
