package output

import "context"

// CachePort is a best-effort side channel. Implementations swallow their own
// failures: a miss and an outage look the same to callers.
type CachePort interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Status(ctx context.Context) string
	Close() error
}
