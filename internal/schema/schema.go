package schema

import "context"

// Unavailable is the degraded description served when the catalogue cannot
// be introspected. The pipeline keeps going with it instead of aborting.
const Unavailable = "schema unavailable"

// Source builds the ordered textual catalogue of tables and typed columns,
// grouped by table with columns in physical ordinal order.
type Source interface {
	Describe(ctx context.Context) (string, error)
}

// Cache serves a freshness-bounded schema description. Get never fails: a
// failed rebuild yields the Unavailable sentinel and is retried on the next
// call.
type Cache interface {
	Get(ctx context.Context) string
	Invalidate(ctx context.Context)
}
