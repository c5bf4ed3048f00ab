package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMetrics(t *testing.T) (*PipelineMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewPipelineMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumWhere(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum, got %T", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")
	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestNewPipelineMetrics_Noop(t *testing.T) {
	m, err := NewPipelineMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	m.SubscriptionStarted(ctx, "src")
	m.Signal(ctx, "src", SignalNext)
	m.SubscriptionEnded(ctx, "src", OutcomeCompleted)
	m.TaskSubmitted(ctx, "pool")
	m.TaskStarted(ctx, "pool")
	m.TaskCompleted(ctx, "pool", TaskOK, time.Millisecond)
	m.TaskRejected(ctx, "pool")
}

func TestPipelineMetrics_NilReceiver(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()
	m.SubscriptionStarted(ctx, "src")
	m.SubscriptionEnded(ctx, "src", OutcomeFailed)
	m.Signal(ctx, "src", SignalFail)
	m.TaskSubmitted(ctx, "pool")
	m.TaskStarted(ctx, "pool")
	m.TaskCompleted(ctx, "pool", TaskPanicked, 0)
	m.TaskRejected(ctx, "pool")
}

func TestPipelineMetrics_Subscriptions(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.SubscriptionStarted(ctx, "numbers")
	m.SubscriptionStarted(ctx, "numbers")
	m.Signal(ctx, "numbers", SignalNext)
	m.Signal(ctx, "numbers", SignalNext)
	m.Signal(ctx, "numbers", SignalComplete)
	m.SubscriptionEnded(ctx, "numbers", OutcomeCompleted)

	data := collect(t, reader)
	if got := sumWhere(t, data["rx.subscriptions.active"], AttrSource, "numbers"); got != 1 {
		t.Errorf("expected 1 active subscription, got %d", got)
	}
	if got := sumWhere(t, data["rx.subscriptions.total"], AttrOutcome, OutcomeCompleted); got != 1 {
		t.Errorf("expected 1 completed subscription, got %d", got)
	}
	if got := sumWhere(t, data["rx.signals.total"], AttrSignal, SignalNext); got != 2 {
		t.Errorf("expected 2 next signals, got %d", got)
	}
}

func TestPipelineMetrics_Tasks(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m.TaskSubmitted(ctx, "computation")
	}
	m.TaskStarted(ctx, "computation")
	m.TaskCompleted(ctx, "computation", TaskOK, 10*time.Millisecond)
	m.TaskRejected(ctx, "computation")

	data := collect(t, reader)
	if got := sumWhere(t, data["scheduler.tasks.submitted"], AttrScheduler, "computation"); got != 3 {
		t.Errorf("expected 3 submitted, got %d", got)
	}
	if got := sumWhere(t, data["scheduler.queue.depth"], AttrScheduler, "computation"); got != 2 {
		t.Errorf("expected queue depth 2, got %d", got)
	}
	if got := sumWhere(t, data["scheduler.tasks.completed"], AttrStatus, TaskOK); got != 1 {
		t.Errorf("expected 1 completed task, got %d", got)
	}
	if got := sumWhere(t, data["scheduler.tasks.rejected"], AttrScheduler, "computation"); got != 1 {
		t.Errorf("expected 1 rejected task, got %d", got)
	}
	hist, ok := data["scheduler.task.duration"].(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("expected one duration sample, got %+v", data["scheduler.task.duration"])
	}
}

func TestPipeline_Singleton(t *testing.T) {
	if Pipeline() == nil {
		t.Fatal("expected pipeline metrics on the global meter")
	}
	if Pipeline() != Pipeline() {
		t.Error("expected the same instance on every call")
	}
}

func TestEndSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	_, ok := tp.Tracer("test").Start(context.Background(), SpanSubscribe)
	EndSpan(ok, OutcomeCompleted, nil)

	_, failed := tp.Tracer("test").Start(context.Background(), SpanSubscribe)
	EndSpan(failed, OutcomeFailed, fmt.Errorf("boom"))

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status.Code == codes.Error {
		t.Error("expected completed span not to be marked as error")
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected failed span status error, got %v", spans[1].Status.Code)
	}
	found := false
	for _, a := range spans[1].Attributes {
		if a.Key == AttrOutcome && a.Value.AsString() == OutcomeFailed {
			found = true
		}
	}
	if !found {
		t.Error("expected outcome attribute on failed span")
	}
}

func TestTraceID(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), SpanSubscribe)
	defer span.End()
	if got, want := TraceID(ctx), span.SpanContext().TraceID().String(); got != want {
		t.Errorf("expected trace id %s, got %q", want, got)
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("expected no trace id, got %q", got)
	}
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), SpanPipeline)
	defer span.End()
	if ctx == nil || span == nil {
		t.Fatal("expected context and span")
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tc := range tests {
		if got := samplerFor(tc.rate).Description(); got != tc.want {
			t.Errorf("rate %v: expected %q, got %q", tc.rate, tc.want, got)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("svc", "1.2.3", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := res.Set().Value(attribute.Key(AttrServiceName))
	if !ok || v.AsString() != "svc" {
		t.Errorf("expected service.name=svc, got %v", v)
	}
}

func TestTelemetryConfig(t *testing.T) {
	cfg := TelemetryConfig{}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}

	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected sample_rate > 1 to fail")
	}

	cfg.SampleRate = 0.5
	cfg.Endpoint = "not a host"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid endpoint to fail")
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), TelemetryConfig{}, "svc", "dev", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}
