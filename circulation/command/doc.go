// Package command implements the circulation commands.
//
// Every command follows the same Query-Decide-Append cycle on the history of
// exactly one item: the handler queries the item's events with strong
// consistency, replays them into a core.Item, lets the command decide its
// transition and appends the resulting event on the condition that the
// item's history did not grow in between. A concurrency conflict repeats the
// whole cycle with exponential backoff. Signals of the transition are emitted
// only after the append succeeded.
//
// The command handlers know nothing about observability, wrap them with the
// observable package (see NewHandlers).
package command
