package shell

import "context"

type correlationKey struct{}

// WithCorrelationID returns a context carrying the correlation id of the request being served.
func WithCorrelationID(ctx context.Context, correlationID CorrelationID) context.Context {
	return context.WithValue(ctx, correlationKey{}, correlationID)
}

// CorrelationIDFrom returns the correlation id stored in ctx, empty if none.
func CorrelationIDFrom(ctx context.Context) CorrelationID {
	if id, ok := ctx.Value(correlationKey{}).(CorrelationID); ok {
		return id
	}

	return ""
}
