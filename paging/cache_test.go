package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestQueryScope_Deterministic(t *testing.T) {
	build := func() Options {
		return Options{
			Filter: bson.M{
				"status": "active",
				"age":    bson.M{"$gte": 18, "$lt": 65},
				"$or":    bson.A{bson.M{"a": 1, "b": 2}, bson.M{"c": 3}},
				"tags":   []any{"x", bson.M{"k": "v", "j": "w"}},
			},
			Projection:    bson.M{"name": 1, "email": 1},
			OrderingField: "email",
			Ordering:      Ascending,
			Limit:         10,
			Collation:     &options.Collation{Locale: "en", Strength: 2},
			ExtraPipeline: mongo.Pipeline{{{Key: "$addFields", Value: bson.M{"x": 1, "y": 2}}}},
		}
	}

	first, err := queryScope(build())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		scope, err := queryScope(build())
		require.NoError(t, err)
		assert.Equal(t, first, scope)
	}

	changed := build()
	changed.Limit = 11
	other, err := queryScope(changed)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	changed = build()
	changed.Collation.Locale = "fr"
	other, err = queryScope(changed)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestCacheKey(t *testing.T) {
	keys := map[string]bool{
		cacheKey("scope", "", ""):   true,
		cacheKey("scope", "a", ""):  true,
		cacheKey("scope", "", "a"):  true,
		cacheKey("other", "", "a"):  true,
		cacheKey("scope", "a", "b"): true,
	}
	assert.Len(t, keys, 5)
	assert.Equal(t, cacheKey("scope", "a", ""), cacheKey("scope", "a", ""))
}
