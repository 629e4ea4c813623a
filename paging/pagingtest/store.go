// Package pagingtest provides an in-memory paging.Store for tests.
//
// MemoryStore evaluates the subset of the MongoDB query language the
// paginator emits: equality, $gt/$gte/$lt/$lte/$ne/$in/$exists, $and, $or,
// multi-key sorts, limits, projections and the $match, $project, $sort,
// $limit, $skip and $addFields pipeline stages. Values are compared in BSON
// type order, numbers by value.
package pagingtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrUnsupported is returned for query constructs the store cannot evaluate.
var ErrUnsupported = errors.New("pagingtest: unsupported query")

// MemoryStore holds documents in insertion order.
type MemoryStore struct {
	mu   sync.Mutex
	docs []bson.M

	calls    int
	failAt   map[int]error
	finds    []Find
	pipeline []mongo.Pipeline
	aggOpts  []*options.AggregateOptions
}

// Find records one Find call.
type Find struct {
	Filter  bson.M
	Options *options.FindOptions
}

// NewMemoryStore returns a store holding docs.
func NewMemoryStore(docs ...any) *MemoryStore {
	s := &MemoryStore{failAt: map[int]error{}}
	if err := s.Insert(docs...); err != nil {
		panic(err)
	}
	return s
}

// Insert adds docs. Each document is round-tripped through BSON so that it
// holds the same Go types a cursor would decode.
func (s *MemoryStore) Insert(docs ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			return err
		}
		var m bson.M
		if err := bson.Unmarshal(raw, &m); err != nil {
			return err
		}
		s.docs = append(s.docs, m)
	}
	return nil
}

// FailAt makes the n-th call (1-based, Find and Aggregate counted together)
// return err.
func (s *MemoryStore) FailAt(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt[n] = err
}

// Calls returns the number of Find and Aggregate calls served.
func (s *MemoryStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Finds returns the recorded Find calls.
func (s *MemoryStore) Finds() []Find {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Find(nil), s.finds...)
}

// Pipelines returns the recorded aggregation pipelines.
func (s *MemoryStore) Pipelines() []mongo.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mongo.Pipeline(nil), s.pipeline...)
}

// AggregateOptions returns the options of the recorded Aggregate calls.
func (s *MemoryStore) AggregateOptions() []*options.AggregateOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*options.AggregateOptions(nil), s.aggOpts...)
}

func (s *MemoryStore) Find(_ context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if err, ok := s.failAt[s.calls]; ok {
		return nil, err
	}

	f, err := toM(filter)
	if err != nil {
		return nil, err
	}
	opt := options.MergeFindOptions(opts...)
	s.finds = append(s.finds, Find{Filter: f, Options: opt})

	docs, err := s.match(s.docs, f)
	if err != nil {
		return nil, err
	}
	if opt.Sort != nil {
		if docs, err = sortDocs(docs, opt.Sort); err != nil {
			return nil, err
		}
	}
	if opt.Skip != nil {
		docs = skipDocs(docs, *opt.Skip)
	}
	if opt.Limit != nil && *opt.Limit > 0 {
		docs = limitDocs(docs, *opt.Limit)
	}
	if opt.Projection != nil {
		if docs, err = project(docs, opt.Projection); err != nil {
			return nil, err
		}
	}
	return cursor(docs)
}

func (s *MemoryStore) Aggregate(_ context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if err, ok := s.failAt[s.calls]; ok {
		return nil, err
	}

	var stages mongo.Pipeline
	switch p := pipeline.(type) {
	case mongo.Pipeline:
		stages = p
	case []bson.D:
		stages = p
	default:
		return nil, fmt.Errorf("%w: pipeline of type %T", ErrUnsupported, pipeline)
	}
	s.pipeline = append(s.pipeline, stages)
	s.aggOpts = append(s.aggOpts, options.MergeAggregateOptions(opts...))

	docs := s.docs
	for _, stage := range stages {
		if len(stage) != 1 {
			return nil, fmt.Errorf("%w: stage with %d keys", ErrUnsupported, len(stage))
		}
		var err error
		switch arg := stage[0].Value; stage[0].Key {
		case "$match":
			var f bson.M
			if f, err = toM(arg); err == nil {
				docs, err = s.match(docs, f)
			}
		case "$project":
			docs, err = project(docs, arg)
		case "$sort":
			docs, err = sortDocs(docs, arg)
		case "$limit":
			docs = limitDocs(docs, toInt64(arg))
		case "$skip":
			docs = skipDocs(docs, toInt64(arg))
		case "$addFields", "$set":
			docs, err = addFields(docs, arg)
		default:
			err = fmt.Errorf("%w: stage %s", ErrUnsupported, stage[0].Key)
		}
		if err != nil {
			return nil, err
		}
	}
	return cursor(docs)
}

func cursor(docs []bson.M) (*mongo.Cursor, error) {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return mongo.NewCursorFromDocuments(out, nil, nil)
}

func (s *MemoryStore) match(docs []bson.M, filter bson.M) ([]bson.M, error) {
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		ok, err := matches(d, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func matches(doc, filter bson.M) (bool, error) {
	for key, cond := range filter {
		switch key {
		case "$and", "$or":
			clauses, err := toDocs(cond)
			if err != nil {
				return false, err
			}
			matched := false
			for _, c := range clauses {
				ok, err := matches(doc, c)
				if err != nil {
					return false, err
				}
				if key == "$and" && !ok {
					return false, nil
				}
				matched = matched || ok
			}
			if key == "$or" && !matched {
				return false, nil
			}
		default:
			if strings.HasPrefix(key, "$") {
				return false, fmt.Errorf("%w: operator %s", ErrUnsupported, key)
			}
			ok, err := matchField(doc, key, cond)
			if err != nil || !ok {
				return false, err
			}
		}
	}
	return true, nil
}

func matchField(doc bson.M, path string, cond any) (bool, error) {
	value, present := lookup(doc, path)

	ops, isOps := operators(cond)
	if !isOps {
		return compare(value, cond) == 0, nil
	}
	for op, arg := range ops {
		var ok bool
		switch op {
		case "$eq":
			ok = compare(value, arg) == 0
		case "$ne":
			ok = compare(value, arg) != 0
		case "$gt":
			ok = present && sameClass(value, arg) && compare(value, arg) > 0
		case "$gte":
			ok = present && sameClass(value, arg) && compare(value, arg) >= 0
		case "$lt":
			ok = present && sameClass(value, arg) && compare(value, arg) < 0
		case "$lte":
			ok = present && sameClass(value, arg) && compare(value, arg) <= 0
		case "$exists":
			ok = present == truthy(arg)
		case "$in":
			list, err := toList(arg)
			if err != nil {
				return false, err
			}
			for _, v := range list {
				if compare(value, v) == 0 {
					ok = true
					break
				}
			}
		default:
			return false, fmt.Errorf("%w: operator %s", ErrUnsupported, op)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// operators returns cond as an operator document when all its keys are
// operators.
func operators(cond any) (bson.M, bool) {
	m, err := toM(cond)
	if err != nil || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, err := toM(cur)
		if err != nil {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// typeRank follows the BSON comparison order.
func typeRank(v any) int {
	switch v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return 1
	case int, int8, int16, int32, int64, uint8, uint16, uint32, float32, float64, primitive.Decimal128:
		return 2
	case string, primitive.Symbol:
		return 3
	case bson.M, bson.D, map[string]any:
		return 4
	case bson.A, []any:
		return 5
	case primitive.Binary, []byte:
		return 6
	case primitive.ObjectID:
		return 7
	case bool:
		return 8
	case primitive.DateTime, time.Time:
		return 9
	case primitive.Timestamp:
		return 10
	}
	return 11
}

// sameClass reports whether range operators apply; MongoDB only matches
// $gt/$lt against values of the same type class.
func sameClass(a, b any) bool {
	return typeRank(a) == typeRank(b)
}

func compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch ra {
	case 2:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 3:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	case 7:
		x, y := a.(primitive.ObjectID), b.(primitive.ObjectID)
		return bytes.Compare(x[:], y[:])
	case 8:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case 9:
		return cmpInt64(toMillis(a), toMillis(b))
	case 1:
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpInt(a, b int) int {
	return cmpInt64(int64(a), int64(b))
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toMillis(v any) int64 {
	switch t := v.(type) {
	case primitive.DateTime:
		return int64(t)
	case time.Time:
		return t.UnixMilli()
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func toInt64(v any) int64 {
	return int64(toFloat(v))
}

func truthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return toFloat(v) != 0
}

func toM(v any) (bson.M, error) {
	switch t := v.(type) {
	case bson.M:
		return t, nil
	case map[string]any:
		return bson.M(t), nil
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return m, nil
	case nil:
		return bson.M{}, nil
	}
	return nil, fmt.Errorf("%w: document of type %T", ErrUnsupported, v)
}

func toList(v any) ([]any, error) {
	switch t := v.(type) {
	case bson.A:
		return t, nil
	case []any:
		return t, nil
	case []bson.M:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, nil
	case []bson.D:
		out := make([]any, len(t))
		for i, d := range t {
			out[i] = d
		}
		return out, nil
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: list of type %T", ErrUnsupported, v)
}

func toDocs(v any) ([]bson.M, error) {
	list, err := toList(v)
	if err != nil {
		return nil, err
	}
	out := make([]bson.M, len(list))
	for i, item := range list {
		if out[i], err = toM(item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sortDocs(docs []bson.M, spec any) ([]bson.M, error) {
	var keys bson.D
	switch t := spec.(type) {
	case bson.D:
		keys = t
	case bson.M:
		if len(t) > 1 {
			return nil, fmt.Errorf("%w: unordered multi-key sort", ErrUnsupported)
		}
		for k, v := range t {
			keys = append(keys, bson.E{Key: k, Value: v})
		}
	default:
		return nil, fmt.Errorf("%w: sort of type %T", ErrUnsupported, spec)
	}

	out := append([]bson.M(nil), docs...)
	sort.SliceStable(out, func(i, j int) bool {
		for _, k := range keys {
			a, _ := lookup(out[i], k.Key)
			b, _ := lookup(out[j], k.Key)
			c := compare(a, b)
			if toInt64(k.Value) < 0 {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	return out, nil
}

func limitDocs(docs []bson.M, n int64) []bson.M {
	if n >= 0 && int64(len(docs)) > n {
		return docs[:n]
	}
	return docs
}

func skipDocs(docs []bson.M, n int64) []bson.M {
	if n >= int64(len(docs)) {
		return nil
	}
	if n > 0 {
		return docs[n:]
	}
	return docs
}

// project applies an inclusion or exclusion projection on top-level fields;
// a dotted path selects its top-level parent.
func project(docs []bson.M, spec any) ([]bson.M, error) {
	p, err := toM(spec)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return docs, nil
	}

	paths := pathTree{}
	keepID := true
	inclusive, exclusive := false, false
	for k, v := range p {
		switch {
		case k == "_id" && !truthy(v):
			keepID = false
		case k == "_id":
		case truthy(v):
			inclusive = true
			paths.add(k)
		default:
			exclusive = true
			paths.add(k)
		}
	}
	if inclusive && exclusive {
		return nil, fmt.Errorf("%w: mixed projection", ErrUnsupported)
	}

	out := make([]bson.M, len(docs))
	for i, d := range docs {
		nd := paths.apply(d, inclusive)
		if id, ok := d["_id"]; ok && keepID {
			nd["_id"] = id
		} else {
			delete(nd, "_id")
		}
		out[i] = nd
	}
	return out, nil
}

// pathTree holds projected dotted paths; a nil child marks a whole field.
type pathTree map[string]pathTree

func (t pathTree) add(path string) {
	head, rest, nested := strings.Cut(path, ".")
	child, seen := t[head]
	if seen && child == nil {
		return
	}
	if !nested {
		t[head] = nil
		return
	}
	if child == nil {
		child = pathTree{}
		t[head] = child
	}
	child.add(rest)
}

// apply keeps (inclusive) or drops the paths of t from doc. Like the server,
// an inclusion of a sub-path keeps the parent document even when none of its
// fields are present, and drops scalar values found where a document is
// expected.
func (t pathTree) apply(doc bson.M, inclusive bool) bson.M {
	out := bson.M{}
	for k, v := range doc {
		child, named := t[k]
		switch {
		case !named:
			if !inclusive {
				out[k] = v
			}
		case child == nil:
			if inclusive {
				out[k] = v
			}
		default:
			sub, err := toM(v)
			if err != nil || v == nil {
				if !inclusive {
					out[k] = v
				}
				continue
			}
			out[k] = child.apply(sub, inclusive)
		}
	}
	return out
}

func addFields(docs []bson.M, spec any) ([]bson.M, error) {
	fields, err := toM(spec)
	if err != nil {
		return nil, err
	}
	out := make([]bson.M, len(docs))
	for i, d := range docs {
		nd := make(bson.M, len(d)+len(fields))
		for k, v := range d {
			nd[k] = v
		}
		for k, v := range fields {
			nd[k] = v
		}
		out[i] = nd
	}
	return out, nil
}
