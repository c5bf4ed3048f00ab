package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kbukum/rxkit/validation"
)

// TelemetryConfig enables OTLP export of pipeline metrics and traces.
// When disabled the global no-op providers stay installed.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults applies default values to telemetry configuration.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate validates telemetry configuration.
func (c *TelemetryConfig) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

// ShutdownFunc flushes and stops whatever Setup installed.
type ShutdownFunc func(ctx context.Context) error

// Setup installs the OTLP tracer and meter providers described by cfg. The
// returned ShutdownFunc is always non-nil.
func Setup(ctx context.Context, cfg TelemetryConfig, serviceName, serviceVersion, environment string) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	tp, err := InitTracer(ctx, &TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    environment,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		SampleRate:     cfg.SampleRate,
	})
	if err != nil {
		return noop, err
	}

	mp, err := InitMeter(ctx, &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    environment,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		Interval:       cfg.Interval,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return noop, err
	}

	return func(ctx context.Context) error {
		return stderrors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}, nil
}
