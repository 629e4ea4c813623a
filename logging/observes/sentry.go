package observes

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryOptions configures error reporting.
type SentryOptions struct {
	Dsn         string
	Name        string
	Release     string
	Environment string
	SampleRate  float64
}

// NewSentry initializes the Sentry client. A nil option or an empty DSN
// leaves reporting disabled.
func NewSentry(opt *SentryOptions) error {
	if opt == nil || opt.Dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              opt.Dsn,
		AttachStacktrace: true,
		SampleRate:       opt.SampleRate,
		ServerName:       opt.Name,
		Release:          opt.Release,
		Environment:      opt.Environment,
	})
}

// ReportError sends err to Sentry and waits up to timeout for delivery.
// It does nothing for a nil error or when Sentry was not initialized.
func ReportError(err error, timeout time.Duration) {
	if err == nil || sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.CaptureException(err)
	sentry.Flush(timeout)
}
