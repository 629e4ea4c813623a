package paging

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Options is the query configuration of a Paginator. It is copied by New and
// never changes afterwards; pointers issued under one OrderingField cannot be
// used with another.
type Options struct {
	Filter        bson.M
	Projection    bson.M
	OrderingField string
	Ordering      Direction
	Limit         int

	// Collation, ExtraPipeline and UseAggregate route queries through the
	// aggregation pipeline.
	Collation     *options.Collation
	ExtraPipeline mongo.Pipeline
	UseAggregate  bool

	ResponseFormat string

	// AutomaticPagination makes Paginate follow NextPage until the end of
	// the result set instead of yielding a single batch.
	AutomaticPagination bool
}

// Defaults holds process-wide fallbacks for Options. It is passed explicitly
// (typically built from configuration) rather than read from globals.
type Defaults struct {
	Limit               int
	MaxLimit            int
	OrderingField       string
	Ordering            Direction
	ResponseFormat      string
	AutomaticPagination bool
}

// DefaultLimit and MaxLimit bound page sizes when no configuration is given.
const (
	DefaultLimit = 256
	MaxLimit     = 1024
)

// NewDefaults returns the built-in defaults: newest-first by _id.
func NewDefaults() Defaults {
	return Defaults{
		Limit:               DefaultLimit,
		MaxLimit:            MaxLimit,
		OrderingField:       IDField,
		Ordering:            Descending,
		ResponseFormat:      FormatDefault,
		AutomaticPagination: true,
	}
}

// Options returns Options populated from d.
func (d Defaults) Options() Options {
	return d.Normalize(Options{AutomaticPagination: d.AutomaticPagination})
}

// Normalize fills the zero fields of o from d and caps Limit at MaxLimit.
func (d Defaults) Normalize(o Options) Options {
	if o.OrderingField == "" {
		o.OrderingField = d.OrderingField
	}
	if o.Ordering == 0 {
		o.Ordering = d.Ordering
	}
	if o.Limit <= 0 {
		o.Limit = d.Limit
	}
	if d.MaxLimit > 0 && o.Limit > d.MaxLimit {
		o.Limit = d.MaxLimit
	}
	if o.ResponseFormat == "" {
		o.ResponseFormat = d.ResponseFormat
	}
	return o
}

func cloneM(m bson.M) bson.M {
	if m == nil {
		return nil
	}
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
