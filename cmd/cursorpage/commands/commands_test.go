package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ncobase/cursorpage/config"
	"github.com/ncobase/cursorpage/data/mongodb"
	"github.com/ncobase/cursorpage/paging"
	"github.com/ncobase/cursorpage/paging/pagingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPageFlags_Request(t *testing.T) {
	f := pageFlags{
		filter:          `{"created_at": {"$gte": {"$date": "2024-01-01T00:00:00Z"}}, "active": true}`,
		projection:      `{"password": 0}`,
		field:           "created_at",
		order:           "asc",
		limit:           10,
		next:            "token",
		all:             true,
		collationLocale: "en",
	}

	req, err := f.request()
	require.NoError(t, err)
	assert.Equal(t, "created_at", req.OrderingField)
	assert.Equal(t, paging.Ascending, req.Ordering)
	assert.Equal(t, 10, req.Limit)
	assert.Equal(t, "token", req.NextPage)
	assert.True(t, *req.AutomaticPagination)
	assert.Equal(t, "en", req.Collation.Locale)
	assert.Equal(t, true, req.Filter["active"])

	gte := req.Filter["created_at"].(bson.M)["$gte"]
	assert.IsType(t, primitive.DateTime(0), gte)
	assert.Equal(t, bson.M{"password": int32(0)}, req.Projection)
}

func TestPageFlags_RequestErrors(t *testing.T) {
	for _, f := range []pageFlags{
		{filter: `{"a":`},
		{projection: `[1, 2]`},
		{order: "up"},
		{limit: -1},
	} {
		_, err := f.request()
		assert.Error(t, err, "%+v", f)
	}
}

func TestPrintPages(t *testing.T) {
	store := pagingtest.NewMemoryStore(
		bson.M{"_id": int32(1), "name": "a"},
		bson.M{"_id": int32(2), "name": "b"},
		bson.M{"_id": int32(3), "name": "c"},
	)
	coll := mongodb.NewCollection(store, paging.NewDefaults())
	all := true

	var out bytes.Buffer
	err := printPages(context.Background(), &out, coll, mongodb.Request{
		Ordering:            paging.Ascending,
		Limit:               2,
		AutomaticPagination: &all,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first paging.Batch
	require.NoError(t, bson.UnmarshalExtJSON([]byte(lines[0]), false, &first))
	assert.Equal(t, 2, first.BatchSize)
	assert.NotEmpty(t, first.NextPage)
	assert.Contains(t, lines[1], `"name":"c"`)
	assert.NotContains(t, lines[1], "next_page")
}

func TestPrintPages_Error(t *testing.T) {
	coll := mongodb.NewCollection(pagingtest.NewMemoryStore(), paging.NewDefaults())

	err := printPages(context.Background(), &bytes.Buffer{}, coll, mongodb.Request{NextPage: "%%"})
	assert.ErrorIs(t, err, paging.ErrPointerDecode)
}

func TestRootCmd(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Version:")

	root = NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"page"})
	assert.Error(t, root.Execute())
}

func TestTracerOption(t *testing.T) {
	cfg := &config.Config{
		AppName: "pages",
		RunMode: "debug",
		Observes: &config.Observes{Tracer: &config.Tracer{
			Endpoint:     "otel:4317",
			SamplingRate: 0.5,
		}},
	}

	opt := tracerOption(cfg)
	assert.Equal(t, "otel:4317", opt.URL)
	assert.Equal(t, "pages", opt.Name)
	assert.Equal(t, "debug", opt.Environment)
	assert.Equal(t, 0.5, opt.SamplingRate)
	assert.NotEmpty(t, opt.Version)
}

func TestStartTracer(t *testing.T) {
	disabled := &config.Config{Observes: &config.Observes{Tracer: &config.Tracer{}}}
	shutdown, err := startTracer(context.Background(), disabled)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	invalid := &config.Config{Observes: &config.Observes{Tracer: &config.Tracer{Endpoint: "otel:4317", SamplingRate: 2}}}
	_, err = startTracer(context.Background(), invalid)
	assert.ErrorContains(t, err, "sampling_rate")
}

func TestStartSentry(t *testing.T) {
	assert.NoError(t, startSentry(&config.Config{}))
	assert.NoError(t, startSentry(&config.Config{Observes: &config.Observes{Sentry: &config.Sentry{}}}))

	invalid := &config.Config{Observes: &config.Observes{Sentry: &config.Sentry{
		Endpoint:   "https://key@sentry.example.com/1",
		SampleRate: -1,
	}}}
	assert.ErrorContains(t, startSentry(invalid), "sample_rate")
}
