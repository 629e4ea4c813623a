package paging

import (
	"context"
	"math"
	"time"

	"github.com/ncobase/cursorpage/ctxutil"
	"github.com/ncobase/cursorpage/data/metrics"
	"github.com/ncobase/cursorpage/ecode"
	"github.com/ncobase/cursorpage/logging/logger"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ncobase/cursorpage/paging"

// Paginator fetches batches of one query. It is immutable after New and may
// be shared between goroutines; the Iterators it returns may not.
type Paginator struct {
	store     Store
	cfg       Options
	plan      projectionPlan
	exec      executor
	formatter Formatter

	logger    *logger.Logger
	tracer    trace.Tracer
	collector metrics.Collector
	cache     BatchCache
	scope     string
}

// Option customizes a Paginator.
type Option func(*Paginator)

// WithLogger sets the logger. The standard logger is used otherwise.
func WithLogger(l *logger.Logger) Option {
	return func(p *Paginator) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCollector reports store round-trips to c.
func WithCollector(c metrics.Collector) Option {
	return func(p *Paginator) {
		if c != nil {
			p.collector = c
		}
	}
}

// WithTracerProvider creates the fetch spans from tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Paginator) {
		if tp != nil {
			p.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithCache serves repeated page requests from c.
func WithCache(c BatchCache) Option {
	return func(p *Paginator) {
		p.cache = c
	}
}

// New validates cfg and prepares the query execution strategy.
func New(store Store, cfg Options, opts ...Option) (*Paginator, error) {
	p := &Paginator{
		store:     store,
		logger:    logger.StdLogger(),
		tracer:    otel.Tracer(tracerName),
		collector: metrics.NoOpCollector{},
	}
	for _, opt := range opts {
		opt(p)
	}

	if store == nil {
		return nil, configError("new", "%s", ecode.FieldIsRequired("store"))
	}
	if cfg.OrderingField == "" {
		return nil, configError("new", "%s", ecode.FieldIsRequired("ordering field"))
	}
	if cfg.Limit <= 0 || int64(cfg.Limit) >= math.MaxInt64 {
		return nil, configError("new", "%s: %d", ecode.FieldIsInvalid("limit"), cfg.Limit)
	}
	if !cfg.Ordering.Valid() {
		return nil, configError("new", "%s: %d", ecode.FieldIsInvalid("ordering"), int(cfg.Ordering))
	}
	if cfg.ResponseFormat == "" {
		cfg.ResponseFormat = FormatDefault
	}
	formatter, ok := GetFormatter(cfg.ResponseFormat)
	if !ok {
		return nil, configError("new", "%s", ecode.NotSupported("response format "+cfg.ResponseFormat))
	}
	if cfg.ResponseFormat == FormatChat && cfg.Ordering == Ascending {
		p.logger.Warnf(context.Background(),
			"response format %q requires descending ordering, switching ordering of %q to descending",
			FormatChat, cfg.OrderingField)
		cfg.Ordering = Descending
	}

	cfg.Filter = cloneM(cfg.Filter)
	cfg.Projection = cloneM(cfg.Projection)

	p.cfg = cfg
	p.formatter = formatter
	p.plan = planProjection(cfg.Projection, cfg.OrderingField)
	p.exec = newExecutor(store, cfg, p.plan)

	if p.cache != nil {
		scope, err := queryScope(cfg)
		if err != nil {
			return nil, err
		}
		p.scope = scope
	}
	return p, nil
}

// Options returns the effective configuration.
func (p *Paginator) Options() Options {
	return p.cfg
}

// Fetch performs one round-trip and returns the batch after nextPage, or the
// batch before prevPage. prevPage wins when both are given; with neither the
// first batch is returned.
func (p *Paginator) Fetch(ctx context.Context, prevPage, nextPage string) (*Batch, error) {
	ctx = ctxutil.SetOperation(ctx, "paging.fetch")
	ctx, span := p.tracer.Start(ctx, "paging.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("paging.executor", p.exec.name()),
			attribute.String("paging.ordering_field", p.cfg.OrderingField),
			attribute.Int("paging.limit", p.cfg.Limit),
		),
	)
	defer span.End()

	batch, err := p.fetch(ctx, span, prevPage, nextPage)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("paging.batch_size", batch.BatchSize),
		attribute.Bool("paging.has_prev", batch.HasPrev()),
		attribute.Bool("paging.has_next", batch.HasNext()),
	)
	return batch, nil
}

func (p *Paginator) fetch(ctx context.Context, span trace.Span, prevPage, nextPage string) (*Batch, error) {
	q, t, err := p.buildQuery(prevPage, nextPage)
	span.SetAttributes(attribute.String("paging.traversal", t.String()))
	if err != nil {
		return nil, err
	}

	var key string
	if p.cache != nil {
		key = cacheKey(p.scope, prevPage, nextPage)
		batch := p.cached(ctx, key)
		span.SetAttributes(attribute.Bool("paging.cache_hit", batch != nil))
		if batch != nil {
			return batch, nil
		}
	}

	start := time.Now()
	cur, err := p.exec.execute(ctx, q)
	if err == nil && cur == nil {
		err = errNilCursor
	}
	p.collector.MongoOperation(p.exec.name(), err)
	if err != nil {
		p.collector.DBQuery(time.Since(start), err)
		return nil, storeError(p.exec.name(), err)
	}

	raw, err := readCursor(ctx, cur, int(q.limit))
	p.collector.DBQuery(time.Since(start), err)
	if err != nil {
		return nil, storeError("read_cursor", err)
	}

	batch, err := assemble(raw, p.cfg.Limit, p.cfg.OrderingField, t)
	if err != nil {
		return nil, err
	}
	p.plan.strip(batch.Response)
	batch.Response = p.formatter.Format(batch.Response)

	p.logger.EntryWithFields(ctx, logrus.Fields{
		"executor":   p.exec.name(),
		"traversal":  t.String(),
		"filter":     q.filter,
		"batch_size": batch.BatchSize,
		"has_prev":   batch.HasPrev(),
		"has_next":   batch.HasNext(),
	}).Debug("page fetched")

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, batch); err != nil {
			p.logger.Warnf(ctx, "failed to cache page: %v", err)
		}
	}
	return batch, nil
}

// Paginate returns a lazy sequence of batches starting at the given pointers.
// Without AutomaticPagination it yields exactly one batch.
func (p *Paginator) Paginate(prevPage, nextPage string) *Iterator {
	return &Iterator{p: p, prev: prevPage, next: nextPage}
}

func (p *Paginator) buildQuery(prevPage, nextPage string) (query, traversal, error) {
	q := query{limit: int64(p.cfg.Limit) + 1}

	token, forward, t := nextPage, true, traversalForward
	switch {
	case prevPage != "":
		token, forward, t = prevPage, false, traversalBackward
	case nextPage == "":
		q.filter = BuildFilter(p.cfg.Filter, p.cfg.OrderingField, nil, "")
		q.sort = BuildSort(p.cfg.OrderingField, p.cfg.Ordering)
		return q, traversalFirst, nil
	}

	ptr, err := DecodePointer(token)
	if err != nil {
		return query{}, t, err
	}
	op, dir := ResolveDirection(p.cfg.Ordering, forward)
	q.filter = BuildFilter(p.cfg.Filter, p.cfg.OrderingField, ptr, op)
	q.sort = BuildSort(p.cfg.OrderingField, dir)
	return q, t, nil
}

func (p *Paginator) cached(ctx context.Context, key string) *Batch {
	batch, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warnf(ctx, "failed to read cached page: %v", err)
		return nil
	}
	return batch
}
