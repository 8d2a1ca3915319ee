// Package spies provides recording test doubles for the observability interfaces and for slog.
package spies
