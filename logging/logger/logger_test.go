package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/ncobase/cursorpage/ctxutil"
	"github.com/ncobase/cursorpage/logging/logger/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newBufferLogger(t *testing.T, cfg *config.Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	l, cleanup, err := NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	buf := &bytes.Buffer{}
	l.SetOutput(buf)
	return l, buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_ContextFields(t *testing.T) {
	l, buf := newBufferLogger(t, &config.Config{Level: int(logrus.InfoLevel), Format: "json"})
	l.SetVersion("1.0.0")

	ctx := ctxutil.SetTraceID(context.Background(), "trace-1")
	ctx = ctxutil.SetOperation(ctx, "paging.fetch")
	l.Infof(ctx, "fetched %d documents", 3)

	entry := decodeEntry(t, buf)
	assert.Equal(t, "fetched 3 documents", entry["msg"])
	assert.Equal(t, "trace-1", entry[ctxutil.TraceIDKey])
	assert.Equal(t, "paging.fetch", entry[OperationKey])
	assert.Equal(t, "1.0.0", entry[VersionKey])
}

func TestLogger_LevelFilters(t *testing.T) {
	l, buf := newBufferLogger(t, &config.Config{Level: int(logrus.WarnLevel)})

	l.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	l.Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_NilConfig(t *testing.T) {
	l, cleanup, err := NewLogger(nil)
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, l)
}

func TestLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pager.log")
	_, cleanup, err := NewLogger(&config.Config{Output: "file", OutputFile: path})
	require.NoError(t, err)
	cleanup()
	assert.FileExists(t, path)

	_, _, err = NewLogger(&config.Config{Output: "file"})
	assert.Error(t, err)
}

func TestLogger_DesensitizesFilters(t *testing.T) {
	l, buf := newBufferLogger(t, &config.Config{
		Level:           int(logrus.DebugLevel),
		Desensitization: config.DefaultDesensitization(),
	})

	filter := bson.M{"email": "jane@example.com", "age": bson.M{"$gt": 30}}
	l.EntryWithFields(context.Background(), logrus.Fields{"filter": filter}).Debug("query")

	entry := decodeEntry(t, buf)
	f := entry["filter"].(map[string]any)
	assert.Equal(t, "******", f["email"])
	assert.Equal(t, map[string]any{"$gt": float64(30)}, f["age"])
}

func TestDesensitizer_BsonD(t *testing.T) {
	d := NewDesensitizer(&config.Desensitization{
		Enabled:         true,
		SensitiveFields: []string{"token"},
		MaskChar:        "#",
		FixedMaskLength: 3,
		ExactFieldMatch: true,
	})

	out := d.DesensitizeFields(logrus.Fields{
		"sort":  bson.D{{Key: "token", Value: 1}, {Key: "_id", Value: 1}},
		"token": "abc",
	})
	assert.Equal(t, "###", out["token"])
	assert.Equal(t, []any{map[string]any{"token": "###"}, map[string]any{"_id": 1}}, out["sort"])
}

func TestDesensitizer_KeepsByteValues(t *testing.T) {
	d := NewDesensitizer(&config.Desensitization{Enabled: true, SensitiveFields: []string{"password"}})
	id := primitive.NewObjectID()

	out := d.DesensitizeFields(logrus.Fields{
		"filter": bson.M{"_id": bson.M{"$gt": id}},
		"raw":    []byte("xyz"),
	})
	assert.Equal(t, map[string]any{"_id": map[string]any{"$gt": id}}, out["filter"])
	assert.Equal(t, []byte("xyz"), out["raw"])
}

func TestDesensitizer_Disabled(t *testing.T) {
	d := NewDesensitizer(&config.Desensitization{Enabled: false})
	fields := logrus.Fields{"password": "x"}
	assert.Equal(t, fields, d.DesensitizeFields(fields))
}
