package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/rxkit/logger"
)

const meterName = "github.com/kbukum/rxkit"

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Signal kinds recorded by PipelineMetrics.Signal.
const (
	SignalNext     = "next"
	SignalFail     = "fail"
	SignalComplete = "complete"
)

// Subscription outcomes recorded by PipelineMetrics.SubscriptionEnded.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Task statuses recorded by PipelineMetrics.TaskCompleted.
const (
	TaskOK       = "ok"
	TaskPanicked = "panicked"
)

// PipelineMetrics holds the instruments for subscriptions and schedulers.
type PipelineMetrics struct {
	subscriptionsActive metric.Int64UpDownCounter
	subscriptionsTotal  metric.Int64Counter
	signalsTotal        metric.Int64Counter
	tasksSubmitted      metric.Int64Counter
	tasksCompleted      metric.Int64Counter
	tasksRejected       metric.Int64Counter
	queueDepth          metric.Int64UpDownCounter
	taskDuration        metric.Float64Histogram
}

// NewPipelineMetrics creates the metric instruments on the given meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	subscriptionsActive, err := meter.Int64UpDownCounter("rx.subscriptions.active",
		metric.WithDescription("Number of subscriptions that have not terminated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.subscriptions.active counter: %w", err)
	}

	subscriptionsTotal, err := meter.Int64Counter("rx.subscriptions.total",
		metric.WithDescription("Terminated subscriptions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.subscriptions.total counter: %w", err)
	}

	signalsTotal, err := meter.Int64Counter("rx.signals.total",
		metric.WithDescription("Signals delivered to consumers by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.signals.total counter: %w", err)
	}

	tasksSubmitted, err := meter.Int64Counter("scheduler.tasks.submitted",
		metric.WithDescription("Units of work accepted by a scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler.tasks.submitted counter: %w", err)
	}

	tasksCompleted, err := meter.Int64Counter("scheduler.tasks.completed",
		metric.WithDescription("Units of work finished by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler.tasks.completed counter: %w", err)
	}

	tasksRejected, err := meter.Int64Counter("scheduler.tasks.rejected",
		metric.WithDescription("Units of work refused by a stopped scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler.tasks.rejected counter: %w", err)
	}

	queueDepth, err := meter.Int64UpDownCounter("scheduler.queue.depth",
		metric.WithDescription("Units of work waiting for a worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler.queue.depth counter: %w", err)
	}

	taskDuration, err := meter.Float64Histogram("scheduler.task.duration",
		metric.WithDescription("Duration of units of work in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler.task.duration histogram: %w", err)
	}

	return &PipelineMetrics{
		subscriptionsActive: subscriptionsActive,
		subscriptionsTotal:  subscriptionsTotal,
		signalsTotal:        signalsTotal,
		tasksSubmitted:      tasksSubmitted,
		tasksCompleted:      tasksCompleted,
		tasksRejected:       tasksRejected,
		queueDepth:          queueDepth,
		taskDuration:        taskDuration,
	}, nil
}

var (
	pipelineOnce    sync.Once
	pipelineMetrics *PipelineMetrics
)

// Pipeline returns the process-wide instruments built on the global meter.
// Instruments created before InitMeter forward to the provider it installs.
func Pipeline() *PipelineMetrics {
	pipelineOnce.Do(func() {
		m, err := NewPipelineMetrics(Meter(meterName))
		if err != nil {
			logger.WithComponent("observability").Error("pipeline metrics unavailable", logger.Fields(logger.FieldError, err.Error()))
			return
		}
		pipelineMetrics = m
	})
	return pipelineMetrics
}

// All recording methods accept a nil receiver so callers never need to check.

// SubscriptionStarted increments the active subscription count.
func (m *PipelineMetrics) SubscriptionStarted(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.subscriptionsActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrSource, source)))
}

// SubscriptionEnded decrements the active count and records the outcome.
func (m *PipelineMetrics) SubscriptionEnded(ctx context.Context, source, outcome string) {
	if m == nil {
		return
	}
	m.subscriptionsActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrSource, source)))
	m.subscriptionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrSource, source),
		attribute.String(AttrOutcome, outcome),
	))
}

// Signal records one signal delivered to a consumer.
func (m *PipelineMetrics) Signal(ctx context.Context, source, kind string) {
	if m == nil {
		return
	}
	m.signalsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrSource, source),
		attribute.String(AttrSignal, kind),
	))
}

// TaskSubmitted records a unit of work accepted by a scheduler.
func (m *PipelineMetrics) TaskSubmitted(ctx context.Context, scheduler string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrScheduler, scheduler))
	m.tasksSubmitted.Add(ctx, 1, attrs)
	m.queueDepth.Add(ctx, 1, attrs)
}

// TaskStarted records a unit of work leaving the queue.
func (m *PipelineMetrics) TaskStarted(ctx context.Context, scheduler string) {
	if m == nil {
		return
	}
	m.queueDepth.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrScheduler, scheduler)))
}

// TaskCompleted records a finished unit of work.
func (m *PipelineMetrics) TaskCompleted(ctx context.Context, scheduler, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.tasksCompleted.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrScheduler, scheduler),
		attribute.String(AttrStatus, status),
	))
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrScheduler, scheduler),
	))
}

// TaskRejected records a unit of work refused by a scheduler.
func (m *PipelineMetrics) TaskRejected(ctx context.Context, scheduler string) {
	if m == nil {
		return
	}
	m.tasksRejected.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrScheduler, scheduler)))
}
