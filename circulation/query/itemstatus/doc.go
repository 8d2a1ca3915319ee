// Package itemstatus implements the Item Status query.
//
// It projects the current status, availability and hold queue of one item
// from the item's history. Nothing is written.
package itemstatus
