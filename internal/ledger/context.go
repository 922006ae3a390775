package ledger

import "context"

type correlationKey struct{}

// WithCorrelationID tags ledger writes (outbox events, drift reports) with a
// request id or sweep run id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
