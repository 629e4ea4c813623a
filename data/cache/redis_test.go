package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ncobase/cursorpage/data/metrics"
	"github.com/ncobase/cursorpage/paging"
	"github.com/ncobase/cursorpage/paging/pagingtest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRedis serves the commands BatchCache issues from a map.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestBatchCache_RoundTrip(t *testing.T) {
	rc := newFakeRedis()
	c := NewBatchCache(rc, "cursorpage", 30*time.Second)
	ctx := context.Background()

	oid := primitive.NewObjectID()
	batch := &paging.Batch{
		Response:  []bson.M{{"_id": oid, "age": int64(42), "name": "ada"}},
		PrevPage:  "prev",
		NextPage:  "next",
		BatchSize: 1,
	}
	require.NoError(t, c.Set(ctx, "k1", batch))
	assert.Equal(t, 30*time.Second, rc.ttls["cursorpage:page:k1"])

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, batch, got)
}

func TestBatchCache_Miss(t *testing.T) {
	collector := metrics.NewDataCollector()
	c := NewBatchCacheWithMetrics(newFakeRedis(), "", 0, collector)

	got, err := c.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Equal(t, "missing", c.Key("missing"))
	redisStats := collector.GetStats()["redis"].(map[string]any)
	assert.Equal(t, int64(1), redisStats["commands"])
	assert.Equal(t, int64(0), redisStats["errors"])
}

func TestBatchCache_Errors(t *testing.T) {
	rc := newFakeRedis()
	rc.err = errors.New("connection refused")
	c := NewBatchCache(rc, "p", time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, rc.err)
	assert.ErrorIs(t, c.Set(ctx, "k", &paging.Batch{}), rc.err)
	assert.Error(t, c.Set(ctx, "k", nil))

	_, err = NewBatchCache(nil, "p", time.Minute).Get(ctx, "k")
	assert.Error(t, err)
}

func TestBatchCache_Delete(t *testing.T) {
	rc := newFakeRedis()
	c := NewBatchCache(rc, "p", time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", &paging.Batch{Response: []bson.M{}}))
	require.NoError(t, c.Delete(ctx, "k"))

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBatchCache_WithPaginator(t *testing.T) {
	rc := newFakeRedis()
	store := pagingtest.NewMemoryStore(
		bson.M{"_id": int32(1)}, bson.M{"_id": int32(2)}, bson.M{"_id": int32(3)},
	)
	p, err := paging.New(store, paging.Options{
		OrderingField: "_id",
		Ordering:      paging.Ascending,
		Limit:         2,
	}, paging.WithCache(NewBatchCache(rc, "test", time.Minute)))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := p.Fetch(ctx, "", "")
	require.NoError(t, err)
	cached, err := p.Fetch(ctx, "", "")
	require.NoError(t, err)

	assert.Equal(t, first, cached)
	assert.Equal(t, 1, store.Calls())
	assert.Len(t, rc.data, 1)
}
