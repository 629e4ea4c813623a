package paging

import (
	"slices"

	"go.mongodb.org/mongo-driver/bson"
)

// Batch is the result of one page fetch. An absent pointer is "".
type Batch struct {
	Response  []bson.M `bson:"response" json:"response"`
	PrevPage  string   `bson:"prev_page,omitempty" json:"prev_page,omitempty"`
	NextPage  string   `bson:"next_page,omitempty" json:"next_page,omitempty"`
	BatchSize int      `bson:"batch_size" json:"batch_size"`
}

// HasPrev reports whether a previous page exists.
func (b *Batch) HasPrev() bool { return b.PrevPage != "" }

// HasNext reports whether a next page exists.
func (b *Batch) HasNext() bool { return b.NextPage != "" }

// traversal says how the page being assembled was requested.
type traversal int

const (
	traversalFirst traversal = iota
	traversalForward
	traversalBackward
)

func (t traversal) String() string {
	switch t {
	case traversalForward:
		return "forward"
	case traversalBackward:
		return "backward"
	default:
		return "first"
	}
}

// assemble turns the raw limit+1 over-fetch into a Batch: it drops the
// sentinel, restores natural order for backward pages and derives the
// pointers from the first and last documents that remain.
func assemble(raw []bson.M, limit int, field string, t traversal) (*Batch, error) {
	hasNext := len(raw) > limit
	if hasNext {
		raw = raw[:limit]
	}

	batch := &Batch{Response: make([]bson.M, 0, len(raw))}
	if len(raw) == 0 {
		return batch, nil
	}

	if t == traversalBackward {
		raw = slices.Clone(raw)
		slices.Reverse(raw)
	}
	batch.Response = append(batch.Response, raw...)
	batch.BatchSize = len(batch.Response)

	var withPrev, withNext bool
	switch t {
	case traversalFirst:
		withNext = hasNext
	case traversalBackward:
		// Without a further page behind us this is the start of the result
		// set again, so only the way forward is offered.
		withPrev, withNext = hasNext, true
	case traversalForward:
		withPrev, withNext = true, hasNext
	}

	var err error
	if withPrev {
		if batch.PrevPage, err = EncodePointer(batch.Response[0], field); err != nil {
			return nil, err
		}
	}
	if withNext {
		if batch.NextPage, err = EncodePointer(batch.Response[len(batch.Response)-1], field); err != nil {
			return nil, err
		}
	}
	return batch, nil
}
