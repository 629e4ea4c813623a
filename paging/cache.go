package paging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// BatchCache stores assembled batches by key. Get returns nil, nil on a miss.
// Cached pages may be stale with respect to the store; callers choose the TTL.
type BatchCache interface {
	Get(ctx context.Context, key string) (*Batch, error)
	Set(ctx context.Context, key string, batch *Batch) error
}

// queryScope fingerprints everything in cfg that affects the documents a
// page holds.
func queryScope(cfg Options) (string, error) {
	collation := ""
	if cfg.Collation != nil {
		collation = fmt.Sprintf("%+v", *cfg.Collation)
	}
	extra := make(bson.A, 0, len(cfg.ExtraPipeline))
	for _, stage := range cfg.ExtraPipeline {
		extra = append(extra, canonical(stage))
	}

	raw, err := bson.Marshal(bson.D{
		{Key: "filter", Value: canonical(cfg.Filter)},
		{Key: "projection", Value: canonical(cfg.Projection)},
		{Key: "field", Value: cfg.OrderingField},
		{Key: "ordering", Value: int(cfg.Ordering)},
		{Key: "limit", Value: cfg.Limit},
		{Key: "collation", Value: collation},
		{Key: "extra", Value: extra},
		{Key: "aggregate", Value: cfg.UseAggregate},
		{Key: "format", Value: cfg.ResponseFormat},
	})
	if err != nil {
		return "", configError("cache_scope", "fingerprint query: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// cacheKey combines a query scope with the requested pointers.
func cacheKey(scope, prevPage, nextPage string) string {
	sum := sha256.Sum256([]byte(prevPage + "\x00" + nextPage))
	return scope + ":" + hex.EncodeToString(sum[:16])
}

// canonical rewrites maps as key-sorted documents so that equal filters
// marshal to equal bytes.
func canonical(v any) any {
	switch t := v.(type) {
	case bson.M:
		return canonicalMap(t)
	case map[string]any:
		return canonicalMap(t)
	case bson.D:
		out := make(bson.D, len(t))
		for i, e := range t {
			out[i] = bson.E{Key: e.Key, Value: canonical(e.Value)}
		}
		return out
	case bson.A:
		return canonicalSlice(t)
	case []any:
		return canonicalSlice(t)
	case []bson.M:
		out := make(bson.A, len(t))
		for i, m := range t {
			out[i] = canonicalMap(m)
		}
		return out
	default:
		return v
	}
}

func canonicalMap(m map[string]any) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(bson.D, 0, len(keys))
	for _, k := range keys {
		out = append(out, bson.E{Key: k, Value: canonical(m[k])})
	}
	return out
}

func canonicalSlice(s []any) bson.A {
	out := make(bson.A, len(s))
	for i, v := range s {
		out[i] = canonical(v)
	}
	return out
}
