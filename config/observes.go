package config

import (
	"fmt"
	"time"

	"github.com/ncobase/cursorpage/validator"
	"github.com/spf13/viper"
)

// Sentry config struct
type Sentry struct {
	Endpoint    string  `json:"endpoint" yaml:"endpoint"` // DSN, reporting is off when empty
	Environment string  `json:"environment" yaml:"environment"`
	Release     string  `json:"release" yaml:"release"`
	SampleRate  float64 `json:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Tracer config struct for OpenTelemetry
type Tracer struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"` // OTLP gRPC endpoint, tracing export is off when empty
	Insecure bool   `json:"insecure" yaml:"insecure"`

	// Service identification
	ServiceName    string `json:"service_name" yaml:"service_name"`
	ServiceVersion string `json:"service_version" yaml:"service_version"`
	Environment    string `json:"environment" yaml:"environment"`

	SamplingRate float64 `json:"sampling_rate" yaml:"sampling_rate" validate:"gte=0,lte=1"`

	// Performance tuning
	MaxExportBatchSize int           `json:"max_export_batch_size" yaml:"max_export_batch_size" validate:"gte=0"`
	BatchTimeout       time.Duration `json:"batch_timeout" yaml:"batch_timeout" validate:"gte=0"`
	ExportTimeout      time.Duration `json:"export_timeout" yaml:"export_timeout" validate:"gte=0"`
}

// Observes config struct
type Observes struct {
	Sentry *Sentry
	Tracer *Tracer
}

func getObservesConfig(v *viper.Viper) *Observes {
	return &Observes{
		Sentry: &Sentry{
			Endpoint:    v.GetString("observes.sentry.endpoint"),
			Environment: v.GetString("observes.sentry.environment"),
			Release:     v.GetString("observes.sentry.release"),
			SampleRate:  v.GetFloat64("observes.sentry.sample_rate"),
		},
		Tracer: &Tracer{
			Endpoint:           v.GetString("observes.tracer.endpoint"),
			Insecure:           v.GetBool("observes.tracer.insecure"),
			ServiceName:        v.GetString("observes.tracer.service_name"),
			ServiceVersion:     v.GetString("observes.tracer.service_version"),
			Environment:        v.GetString("observes.tracer.environment"),
			SamplingRate:       v.GetFloat64("observes.tracer.sampling_rate"),
			MaxExportBatchSize: v.GetInt("observes.tracer.max_export_batch_size"),
			BatchTimeout:       v.GetDuration("observes.tracer.batch_timeout"),
			ExportTimeout:      v.GetDuration("observes.tracer.export_timeout"),
		},
	}
}

// TracingEnabled reports whether spans are exported.
func (t *Tracer) TracingEnabled() bool {
	return t != nil && t.Endpoint != ""
}

// Validate checks the tracer section.
func (t *Tracer) Validate() error {
	if t == nil {
		return nil
	}
	if err := validator.Error(t); err != nil {
		return fmt.Errorf("observes.tracer: %w", err)
	}
	return nil
}

// ReportingEnabled reports whether errors are sent to Sentry.
func (s *Sentry) ReportingEnabled() bool {
	return s != nil && s.Endpoint != ""
}

// Validate checks the sentry section.
func (s *Sentry) Validate() error {
	if s == nil {
		return nil
	}
	if err := validator.Error(s); err != nil {
		return fmt.Errorf("observes.sentry: %w", err)
	}
	return nil
}
