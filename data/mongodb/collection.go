package mongodb

import (
	"context"

	"github.com/ncobase/cursorpage/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Request describes one paginated query. Zero fields fall back to the
// defaults of the Collection.
type Request struct {
	Filter        bson.M
	Projection    bson.M
	OrderingField string
	Ordering      paging.Direction
	Limit         int

	PrevPage string
	NextPage string

	// AutomaticPagination overrides the default when set.
	AutomaticPagination *bool

	Collation      *options.Collation
	ExtraPipeline  mongo.Pipeline
	UseAggregate   bool
	ResponseFormat string
}

// Collection runs paginated queries against one store.
type Collection struct {
	store    paging.Store
	defaults paging.Defaults
	opts     []paging.Option
}

// NewCollection wraps store; opts are applied to every paginator it builds.
func NewCollection(store paging.Store, defaults paging.Defaults, opts ...paging.Option) *Collection {
	return &Collection{store: store, defaults: defaults, opts: opts}
}

// Paginator builds a paginator for req without querying the store.
func (c *Collection) Paginator(req Request) (*paging.Paginator, error) {
	automatic := c.defaults.AutomaticPagination
	if req.AutomaticPagination != nil {
		automatic = *req.AutomaticPagination
	}

	return paging.New(c.store, c.defaults.Normalize(paging.Options{
		Filter:              req.Filter,
		Projection:          req.Projection,
		OrderingField:       req.OrderingField,
		Ordering:            req.Ordering,
		Limit:               req.Limit,
		Collation:           req.Collation,
		ExtraPipeline:       req.ExtraPipeline,
		UseAggregate:        req.UseAggregate,
		ResponseFormat:      req.ResponseFormat,
		AutomaticPagination: automatic,
	}), c.opts...)
}

// Paginate returns the lazy batch sequence of req.
func (c *Collection) Paginate(req Request) (*paging.Iterator, error) {
	p, err := c.Paginator(req)
	if err != nil {
		return nil, err
	}
	return p.Paginate(req.PrevPage, req.NextPage), nil
}

// FetchPage returns the single batch addressed by req.
func (c *Collection) FetchPage(ctx context.Context, req Request) (*paging.Batch, error) {
	p, err := c.Paginator(req)
	if err != nil {
		return nil, err
	}
	return p.Fetch(ctx, req.PrevPage, req.NextPage)
}
