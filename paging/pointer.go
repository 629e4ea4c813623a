package paging

import (
	"encoding/base64"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// IDField is the store's native unique id field.
const IDField = "_id"

var pointerEncoding = base64.RawURLEncoding

// Pointer is the decoded content of a continuation token: the ordering field
// value and the unique id of the boundary document.
type Pointer struct {
	Value any
	ID    any
}

// pointerPayload is the BSON container of a token. Keeping the values in BSON
// preserves their store types (ObjectID, DateTime, int32 vs int64, ...).
type pointerPayload struct {
	Value any `bson:"v"`
	ID    any `bson:"i"`
}

// EncodePointer builds the token for doc. A missing ordering field encodes as
// null; a missing _id is an error because the pointer could never be resolved.
func EncodePointer(doc bson.M, field string) (string, error) {
	id, ok := doc[IDField]
	if !ok || id == nil {
		return "", configError("encode_pointer", "document has no %s field", IDField)
	}

	raw, err := bson.Marshal(bson.D{
		{Key: "v", Value: lookupField(doc, field)},
		{Key: "i", Value: id},
	})
	if err != nil {
		return "", configError("encode_pointer", "marshal pointer: %w", err)
	}
	return pointerEncoding.EncodeToString(raw), nil
}

// DecodePointer reverses EncodePointer. An empty token means "no pointer" and
// yields nil, nil.
func DecodePointer(token string) (*Pointer, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := pointerEncoding.DecodeString(token)
	if err != nil {
		return nil, pointerError("decode_pointer", err)
	}
	doc := bson.Raw(raw)
	if err := doc.Validate(); err != nil {
		return nil, pointerError("decode_pointer", err)
	}
	for _, key := range []string{"v", "i"} {
		if _, err := doc.LookupErr(key); err != nil {
			return nil, pointerError("decode_pointer", fmt.Errorf("token has no %q element", key))
		}
	}

	var payload pointerPayload
	if err := bson.Unmarshal(raw, &payload); err != nil {
		return nil, pointerError("decode_pointer", err)
	}
	if payload.ID == nil {
		return nil, pointerError("decode_pointer", errors.New("token has a null id"))
	}
	return &Pointer{Value: payload.Value, ID: payload.ID}, nil
}
