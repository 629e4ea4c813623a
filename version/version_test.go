package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	info := fromBuildInfo(Info{Version: "0.0.0", Branch: "unknown", Revision: "unknown", BuiltAt: "unknown"}, bi)
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "0123456", info.Revision)
	assert.Equal(t, "2024-05-01T10:00:00Z", info.BuiltAt)
	assert.True(t, info.Modified)

	linked := fromBuildInfo(Info{Version: "v2.0.0", Revision: "abc", BuiltAt: "now"}, bi)
	assert.Equal(t, "v2.0.0", linked.Version)
	assert.Equal(t, "abc", linked.Revision)
	assert.Equal(t, "now", linked.BuiltAt)
}

func TestInfo_Render(t *testing.T) {
	info := Info{Version: "v1.0.0", Branch: "main", Revision: "abc1234", BuiltAt: "today", GoVersion: "go1.24"}
	assert.Contains(t, info.String(), "Version: v1.0.0")

	js, err := info.JSON()
	require.NoError(t, err)
	assert.Contains(t, js, `"revision": "abc1234"`)
	assert.NotContains(t, js, "modified")
}
