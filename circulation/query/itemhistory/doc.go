// Package itemhistory implements the Item History query, the audit trail of one item.
package itemhistory
