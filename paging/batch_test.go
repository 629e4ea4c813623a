package paging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func docsWithIDs(ids ...int32) []bson.M {
	docs := make([]bson.M, len(ids))
	for i, id := range ids {
		docs[i] = bson.M{"_id": id, "n": id}
	}
	return docs
}

func ids(docs []bson.M) []int32 {
	out := make([]int32, len(docs))
	for i, d := range docs {
		out[i] = d["_id"].(int32)
	}
	return out
}

func pointerID(t *testing.T, token string) any {
	t.Helper()
	p, err := DecodePointer(token)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.ID
}

func TestAssemble_Empty(t *testing.T) {
	for _, tr := range []traversal{traversalFirst, traversalForward, traversalBackward} {
		batch, err := assemble(nil, 3, "n", tr)
		require.NoError(t, err)
		assert.NotNil(t, batch.Response)
		assert.Empty(t, batch.Response)
		assert.Zero(t, batch.BatchSize)
		assert.False(t, batch.HasPrev())
		assert.False(t, batch.HasNext())
	}
}

func TestAssemble_First(t *testing.T) {
	batch, err := assemble(docsWithIDs(1, 2, 3, 4), 3, "n", traversalFirst)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, ids(batch.Response))
	assert.Equal(t, 3, batch.BatchSize)
	assert.False(t, batch.HasPrev())
	assert.Equal(t, int32(3), pointerID(t, batch.NextPage))

	batch, err = assemble(docsWithIDs(1, 2), 3, "n", traversalFirst)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.BatchSize)
	assert.False(t, batch.HasPrev())
	assert.False(t, batch.HasNext())
}

func TestAssemble_Forward(t *testing.T) {
	batch, err := assemble(docsWithIDs(4, 5, 6, 7), 3, "n", traversalForward)
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 5, 6}, ids(batch.Response))
	assert.Equal(t, int32(4), pointerID(t, batch.PrevPage))
	assert.Equal(t, int32(6), pointerID(t, batch.NextPage))

	batch, err = assemble(docsWithIDs(7), 3, "n", traversalForward)
	require.NoError(t, err)
	assert.Equal(t, []int32{7}, ids(batch.Response))
	assert.Equal(t, int32(7), pointerID(t, batch.PrevPage))
	assert.False(t, batch.HasNext())
}

func TestAssemble_Backward(t *testing.T) {
	raw := docsWithIDs(6, 5, 4, 3)

	batch, err := assemble(raw, 3, "n", traversalBackward)
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 5, 6}, ids(batch.Response))
	assert.Equal(t, int32(4), pointerID(t, batch.PrevPage))
	assert.Equal(t, int32(6), pointerID(t, batch.NextPage))
	assert.Equal(t, []int32{6, 5, 4, 3}, ids(raw))

	batch, err = assemble(docsWithIDs(2, 1), 3, "n", traversalBackward)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, ids(batch.Response))
	assert.False(t, batch.HasPrev())
	assert.Equal(t, int32(2), pointerID(t, batch.NextPage))
}

func TestAssemble_MissingID(t *testing.T) {
	raw := []bson.M{{"n": 1}, {"n": 2}}

	_, err := assemble(raw, 1, "n", traversalFirst)
	assert.True(t, errors.Is(err, ErrConfiguration))
}
