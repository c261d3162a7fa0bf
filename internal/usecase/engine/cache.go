package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"dom-engine/internal/domain/entity"
	"dom-engine/internal/domain/selector"
)

// cached serves a deterministic operation from the result cache when
// possible. Cache failures only cost a recomputation.
func cached[T any](ctx context.Context, e *Engine, op string, parts []string, compute func(context.Context) (T, error)) (T, error) {
	key := cacheKey(op, parts...)

	if raw, ok := e.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			e.metrics.CacheLookup(true)
			return v, nil
		}
	}
	e.metrics.CacheLookup(false)

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		e.cache.Set(ctx, key, raw)
	}
	return v, nil
}

func cacheKey(op string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(op))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return op + ":" + hex.EncodeToString(h.Sum(nil))
}

func operationKey(op entity.EditOperation) (string, error) {
	raw, err := json.Marshal(struct {
		Kind entity.EditKind
		Op   entity.EditOperation
	}{op.Kind(), op})
	if err != nil {
		return "", fmt.Errorf("%w: encode operation: %v", entity.ErrValidation, err)
	}
	return string(raw), nil
}

func escape(sel string) string {
	return selector.Escape(sel)
}
