// Package paging provides cursor-based ("bucket pattern") pagination over
// MongoDB collections.
//
// Cursor-based pagination is superior to offset-based pagination for:
//   - Large datasets (no performance degradation with deep pages)
//   - Real-time data (handles insertions/deletions gracefully)
//   - Consistent results (no duplicates or missing items)
//
// Each fetch asks the store for limit+1 documents. The extra document only
// proves that another page exists and is dropped before the batch is
// returned, so no count query is ever issued.
//
// # Basic Usage
//
//	p, err := paging.New(collection, paging.Options{
//	    Filter:        bson.M{"status": "active"},
//	    OrderingField: "created_at",
//	    Ordering:      paging.Descending,
//	    Limit:         20,
//	})
//	if err != nil {
//	    return err
//	}
//
//	batch, err := p.Fetch(ctx, "", "")
//	// batch.Response: up to 20 documents
//	// batch.NextPage: token for the following page, "" on the last page
//
//	next, err := p.Fetch(ctx, "", batch.NextPage)
//	back, err := p.Fetch(ctx, next.PrevPage, "")
//
// # Walking A Whole Collection
//
// With AutomaticPagination the iterator keeps following NextPage:
//
//	it := p.Paginate("", "")
//	for it.Next(ctx) {
//	    process(it.Batch().Response)
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
//
// # Page Pointers
//
// Tokens are base64url encoded BSON holding the ordering field value and the
// _id of the boundary document. They are stable across restarts and must only
// be used with the OrderingField they were issued for.
//
// # Ordering
//
// Documents are sorted by (OrderingField, _id); _id breaks ties so that
// non-unique ordering fields page without gaps or duplicates. Backward pages
// are queried in reverse and flipped back before they are returned.
//
// # Execution
//
// Plain queries run as find. Collation, extra pipeline stages, exclusion
// projections or UseAggregate switch to an aggregation pipeline. The ordering
// field and _id are always fetched and removed again if the projection did
// not ask for them.
//
// # Errors
//
// Errors match ErrConfiguration, ErrPointerDecode or ErrStoreQuery with
// errors.Is. Store errors also match the driver error they wrap. Nothing is
// retried.
package paging
