package paging

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the part of a MongoDB collection the paginator needs.
// *mongo.Collection implements it.
type Store interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// query is one over-fetching round-trip.
type query struct {
	filter bson.M
	sort   bson.D
	limit  int64
}

type executor interface {
	name() string
	execute(ctx context.Context, q query) (*mongo.Cursor, error)
}

// newExecutor picks the execution strategy once, when the paginator is built.
func newExecutor(store Store, cfg Options, plan projectionPlan) executor {
	if cfg.UseAggregate || cfg.Collation != nil || len(cfg.ExtraPipeline) > 0 || plan.needsPipeline() {
		return &pipelineExecutor{
			store:     store,
			include:   plan.include,
			exclude:   plan.exclude,
			extra:     cfg.ExtraPipeline,
			collation: cfg.Collation,
		}
	}
	return &findExecutor{store: store, projection: plan.include}
}

// findExecutor issues filter, projection, sort and limit as a plain find.
type findExecutor struct {
	store      Store
	projection bson.M
}

func (e *findExecutor) name() string { return "find" }

func (e *findExecutor) execute(ctx context.Context, q query) (*mongo.Cursor, error) {
	opts := options.Find().SetSort(q.sort).SetLimit(q.limit)
	if len(e.projection) > 0 {
		opts.SetProjection(e.projection)
	}
	return e.store.Find(ctx, q.filter, opts)
}

// pipelineExecutor runs
//
//	$match -> $project(include) -> $sort -> $limit -> extra... -> $project(exclude)
//
// with the collation as an aggregate option.
type pipelineExecutor struct {
	store     Store
	include   bson.M
	exclude   bson.M
	extra     mongo.Pipeline
	collation *options.Collation
}

func (e *pipelineExecutor) name() string { return "aggregate" }

func (e *pipelineExecutor) pipeline(q query) mongo.Pipeline {
	stages := mongo.Pipeline{{{Key: "$match", Value: q.filter}}}
	if len(e.include) > 0 {
		stages = append(stages, bson.D{{Key: "$project", Value: e.include}})
	}
	stages = append(stages,
		bson.D{{Key: "$sort", Value: q.sort}},
		bson.D{{Key: "$limit", Value: q.limit}},
	)
	stages = append(stages, e.extra...)
	if len(e.exclude) > 0 {
		stages = append(stages, bson.D{{Key: "$project", Value: e.exclude}})
	}
	return stages
}

func (e *pipelineExecutor) execute(ctx context.Context, q query) (*mongo.Cursor, error) {
	opts := options.Aggregate()
	if e.collation != nil {
		opts.SetCollation(e.collation)
	}
	return e.store.Aggregate(ctx, e.pipeline(q), opts)
}

// readBatchCap bounds the preallocation of readCursor; larger batches grow.
const readBatchCap = 64

// readCursor reads at most n documents and always closes cur.
func readCursor(ctx context.Context, cur *mongo.Cursor, n int) ([]bson.M, error) {
	docs := make([]bson.M, 0, max(min(n, readBatchCap), 0))
	for len(docs) < n && cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			_ = cur.Close(ctx)
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		_ = cur.Close(ctx)
		return nil, err
	}
	if err := cur.Close(ctx); err != nil {
		return nil, err
	}
	return docs, nil
}
