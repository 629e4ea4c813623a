package paging

import (
	"context"
	"iter"
)

// Iterator walks batches lazily; every Next performs one store round-trip.
// The filter of each pull depends on the previous batch, so an Iterator must
// not be used from more than one goroutine.
//
//	it := p.Paginate("", "")
//	for it.Next(ctx) {
//	    handle(it.Batch())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
type Iterator struct {
	p          *Paginator
	prev, next string

	started bool
	done    bool
	batch   *Batch
	err     error
}

// Next fetches the following batch. It returns false when the sequence is
// exhausted or a fetch failed; check Err to tell them apart.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}

	prev, next := it.prev, it.next
	if it.started {
		prev, next = "", it.batch.NextPage
	}

	batch, err := it.p.Fetch(ctx, prev, next)
	if err != nil {
		it.err = err
		return false
	}
	it.started = true
	it.batch = batch

	if !it.p.cfg.AutomaticPagination || !batch.HasNext() {
		it.done = true
	}
	return true
}

// Batch returns the batch fetched by the last successful Next.
func (it *Iterator) Batch() *Batch {
	return it.batch
}

// Err returns the error that stopped the iteration, if any. Batches returned
// before the error remain valid.
func (it *Iterator) Err() error {
	return it.err
}

// All adapts the iterator to a range-over-func sequence. A failing pull is
// yielded as a nil batch with its error and ends the sequence.
func (it *Iterator) All(ctx context.Context) iter.Seq2[*Batch, error] {
	return func(yield func(*Batch, error) bool) {
		for it.Next(ctx) {
			if !yield(it.Batch(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}
