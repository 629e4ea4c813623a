package observes

import (
	"errors"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport keeps events in memory.
type recordingTransport struct {
	sentry.Transport
	events []*sentry.Event
}

func (t *recordingTransport) Configure(sentry.ClientOptions) {}
func (t *recordingTransport) SendEvent(event *sentry.Event)  { t.events = append(t.events, event) }
func (t *recordingTransport) Flush(time.Duration) bool       { return true }

func TestNewSentry_Disabled(t *testing.T) {
	assert.NoError(t, NewSentry(nil))
	assert.NoError(t, NewSentry(&SentryOptions{Name: "cursorpage"}))
}

func TestReportError(t *testing.T) {
	transport := &recordingTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: "https://key@sentry.example.com/1", Transport: transport})
	require.NoError(t, err)

	hub := sentry.CurrentHub()
	previous := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(previous) })

	ReportError(nil, time.Second)
	assert.Empty(t, transport.events)

	ReportError(errors.New("connection reset"), time.Second)
	require.Len(t, transport.events, 1)
	require.NotEmpty(t, transport.events[0].Exception)
	assert.Equal(t, "connection reset", transport.events[0].Exception[0].Value)
}
