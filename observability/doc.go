// Package observability wires rxkit into OpenTelemetry.
//
// Setup installs OTLP/HTTP tracer and meter providers from a TelemetryConfig.
// Pipeline returns the process-wide PipelineMetrics instruments that the rx
// and scheduler packages record into: active and terminated subscriptions,
// delivered signals, scheduler queue depth, task counts and durations. Every
// subscription is traced as one rx.subscribe span.
//
// Without Setup the global no-op providers are in place and recording costs
// almost nothing.
package observability
