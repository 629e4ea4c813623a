package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPlanProjection(t *testing.T) {
	tests := []struct {
		name       string
		projection bson.M
		field      string
		include    bson.M
		exclude    bson.M
		hidden     []string
		pipeline   bool
	}{
		{
			name:    "none",
			field:   "email",
			include: bson.M{},
			exclude: bson.M{},
		},
		{
			name:       "inclusion adds ordering field",
			projection: bson.M{"name": 1},
			field:      "email",
			include:    bson.M{"name": 1, "email": 1},
			exclude:    bson.M{},
			hidden:     []string{"email"},
		},
		{
			name:       "inclusion already has field",
			projection: bson.M{"name": 1, "email": true},
			field:      "email",
			include:    bson.M{"name": 1, "email": true},
			exclude:    bson.M{},
		},
		{
			name:       "inclusion of parent document",
			projection: bson.M{"profile": 1},
			field:      "profile.age",
			include:    bson.M{"profile": 1},
			exclude:    bson.M{},
		},
		{
			name:       "exclusion of unrelated field",
			projection: bson.M{"password": 0},
			field:      "email",
			include:    bson.M{},
			exclude:    bson.M{"password": 0},
			pipeline:   true,
		},
		{
			name:       "exclusion of required fields",
			projection: bson.M{"_id": 0, "email": false},
			field:      "email",
			include:    bson.M{},
			exclude:    bson.M{},
			hidden:     []string{"_id", "email"},
		},
		{
			name:       "exclusion of parent document",
			projection: bson.M{"meta": 0, "password": 0},
			field:      "meta.rank",
			include:    bson.M{},
			exclude:    bson.M{"password": 0},
			hidden:     []string{"meta"},
			pipeline:   true,
		},
		{
			name:       "exclusion inside ordering field",
			projection: bson.M{"meta.rank.raw": 0},
			field:      "meta.rank",
			include:    bson.M{},
			exclude:    bson.M{},
			hidden:     []string{"meta.rank.raw"},
		},
		{
			name:       "exclusion of sibling path",
			projection: bson.M{"meta.rankings": 0},
			field:      "meta.rank",
			include:    bson.M{},
			exclude:    bson.M{"meta.rankings": 0},
			pipeline:   true,
		},
		{
			name:       "mixed",
			projection: bson.M{"name": 1, "_id": 0},
			field:      "_id",
			include:    bson.M{"name": 1},
			exclude:    bson.M{},
			hidden:     []string{"_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planProjection(tt.projection, tt.field)
			assert.Equal(t, tt.include, plan.include)
			assert.Equal(t, tt.exclude, plan.exclude)
			assert.Equal(t, tt.hidden, plan.hidden)
			assert.Equal(t, tt.pipeline, plan.needsPipeline())
		})
	}
}

func TestProjectionPlan_Strip(t *testing.T) {
	plan := projectionPlan{hidden: []string{"_id", "profile.age", "missing.path"}}
	docs := []bson.M{
		{"_id": 1, "name": "a", "profile": bson.M{"age": 30, "city": "Oslo"}},
		{"_id": 2, "name": "b"},
	}

	plan.strip(docs)

	assert.Equal(t, bson.M{"name": "a", "profile": bson.M{"city": "Oslo"}}, docs[0])
	assert.Equal(t, bson.M{"name": "b"}, docs[1])
}

func TestProjectionPlan_StripEmptyParents(t *testing.T) {
	t.Run("unrequested parent is removed", func(t *testing.T) {
		plan := planProjection(bson.M{"name": 1}, "meta.rank")
		docs := []bson.M{{"_id": 1, "name": "a", "meta": bson.M{"rank": 1}}}

		plan.strip(docs)

		assert.Equal(t, []bson.M{{"_id": 1, "name": "a"}}, docs)
	})

	t.Run("requested parent is kept", func(t *testing.T) {
		plan := planProjection(bson.M{"meta.rank": 0}, "meta.rank")
		docs := []bson.M{{"_id": 1, "meta": bson.M{"rank": 1}}}

		plan.strip(docs)

		assert.Equal(t, []bson.M{{"_id": 1, "meta": bson.M{}}}, docs)
	})

	t.Run("parent with other fields is kept", func(t *testing.T) {
		plan := planProjection(bson.M{"meta.label": 1}, "meta.rank.value")
		docs := []bson.M{{"_id": 1, "meta": bson.M{"label": "x", "rank": bson.M{"value": 1}}}}

		plan.strip(docs)

		assert.Equal(t, []bson.M{{"_id": 1, "meta": bson.M{"label": "x"}}}, docs)
	})
}

func TestLookupField(t *testing.T) {
	doc := bson.M{
		"a": bson.M{"b": bson.D{{Key: "c", Value: 3}}},
		"x": 1,
	}
	assert.Equal(t, 3, lookupField(doc, "a.b.c"))
	assert.Equal(t, 1, lookupField(doc, "x"))
	assert.Nil(t, lookupField(doc, "x.y"))
	assert.Nil(t, lookupField(doc, "nope"))
}
