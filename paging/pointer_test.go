package paging

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPointer_RoundTrip(t *testing.T) {
	oid := primitive.NewObjectID()
	created := primitive.NewDateTimeFromTime(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name  string
		doc   bson.M
		field string
		value any
		id    any
	}{
		{"object id", bson.M{"_id": oid}, "_id", oid, oid},
		{"string", bson.M{"_id": oid, "email": "a@example.com"}, "email", "a@example.com", oid},
		{"int64", bson.M{"_id": int64(9), "seq": int64(1) << 40}, "seq", int64(1) << 40, int64(9)},
		{"int32", bson.M{"_id": "u-1", "age": int32(31)}, "age", int32(31), "u-1"},
		{"double", bson.M{"_id": int32(1), "score": 2.5}, "score", 2.5, int32(1)},
		{"date", bson.M{"_id": oid, "created_at": created}, "created_at", created, oid},
		{"nested", bson.M{"_id": oid, "profile": bson.M{"age": int32(40)}}, "profile.age", int32(40), oid},
		{"missing field", bson.M{"_id": oid}, "email", nil, oid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := EncodePointer(tt.doc, tt.field)
			require.NoError(t, err)
			assert.NotContains(t, token, "+")
			assert.NotContains(t, token, "/")
			assert.NotContains(t, token, "=")

			p, err := DecodePointer(token)
			require.NoError(t, err)
			assert.Equal(t, tt.value, p.Value)
			assert.Equal(t, tt.id, p.ID)
		})
	}
}

func TestEncodePointer_MissingID(t *testing.T) {
	_, err := EncodePointer(bson.M{"email": "a@example.com"}, "email")
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = EncodePointer(bson.M{"_id": nil}, "_id")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestDecodePointer_Empty(t *testing.T) {
	p, err := DecodePointer("")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestDecodePointer_Invalid(t *testing.T) {
	marshal := func(doc bson.D) []byte {
		raw, err := bson.Marshal(doc)
		require.NoError(t, err)
		return raw
	}
	encode := func(doc bson.D) string {
		return base64.RawURLEncoding.EncodeToString(marshal(doc))
	}
	valid := marshal(bson.D{{Key: "v", Value: "abc"}, {Key: "i", Value: 1}})

	tokens := map[string]string{
		"not base64":    "%%%",
		"not bson":      base64.RawURLEncoding.EncodeToString([]byte("hello world")),
		"foreign":       encode(bson.D{{Key: "page", Value: 2}}),
		"missing value": encode(bson.D{{Key: "i", Value: 1}}),
		"null id":       encode(bson.D{{Key: "v", Value: 1}, {Key: "i", Value: nil}}),
		"truncated":     base64.RawURLEncoding.EncodeToString(valid[:len(valid)-2]),
	}

	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			p, err := DecodePointer(token)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrPointerDecode), "got %v", err)
			assert.Equal(t, -1002, Code(err))
		})
	}
}
