package rx

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/scheduler"
)

// SubscribeExecutorName names the pool created by DefaultExecutor.
const SubscribeExecutorName = "subscribe"

var (
	executorMu      sync.Mutex
	defaultExecutor scheduler.Submitter
)

// DefaultExecutor returns the executor producers run on when Subscribe is
// not given one. It is created and started on first use from
// scheduler.DefaultConfig().
//
// The executor is a bounded pool: each producer holds a worker until it
// returns. A producer that blocks waiting on another subscription served by
// the same pool can deadlock once every worker is blocked that way. Run such
// producers on an IO scheduler with SubscribeOn, or give the inner
// subscription its own executor.
func DefaultExecutor() scheduler.Submitter {
	executorMu.Lock()
	defer executorMu.Unlock()
	if defaultExecutor == nil {
		p := scheduler.NewPool(SubscribeExecutorName, scheduler.DefaultConfig().SubscribeWorkers)
		_ = p.Start(context.Background())
		defaultExecutor = p
	}
	return defaultExecutor
}

// SetDefaultExecutor replaces the default executor and returns the previous
// one, which may be nil. The caller owns the lifecycle of both.
func SetDefaultExecutor(s scheduler.Submitter) scheduler.Submitter {
	executorMu.Lock()
	defer executorMu.Unlock()
	prev := defaultExecutor
	defaultExecutor = s
	return prev
}

type subscribeOptions struct {
	executor scheduler.Submitter
	name     string
	metrics  *observability.PipelineMetrics
}

// SubscribeOption configures one subscription.
type SubscribeOption func(*subscribeOptions)

// WithExecutor runs the producer on s instead of the default executor.
// Inner subscriptions opened by FlatMap inherit it. When s has a fixed number
// of workers, producers that block on other subscriptions using s can
// exhaust it and deadlock.
func WithExecutor(s scheduler.Submitter) SubscribeOption {
	return func(o *subscribeOptions) { o.executor = s }
}

// WithName labels the subscription in logs, metrics and spans.
func WithName(name string) SubscribeOption {
	return func(o *subscribeOptions) { o.name = name }
}

// WithMetrics records into m instead of observability.Pipeline().
func WithMetrics(m *observability.PipelineMetrics) SubscribeOption {
	return func(o *subscribeOptions) { o.metrics = m }
}

type executorKey struct{}

func executorFrom(ctx context.Context) scheduler.Submitter {
	if s, ok := ctx.Value(executorKey{}).(scheduler.Submitter); ok {
		return s
	}
	return nil
}

// Subscribe starts an independent execution of the Source and returns
// immediately. The producer runs as a task on the executor; c receives its
// signals. Cancelling ctx cancels the subscription.
func (s *Source[T]) Subscribe(ctx context.Context, c Consumer[T], opts ...SubscribeOption) *Token {
	o := subscribeOptions{name: s.name}
	for _, opt := range opts {
		opt(&o)
	}
	if o.executor == nil {
		o.executor = executorFrom(ctx)
	}
	if o.executor == nil {
		o.executor = DefaultExecutor()
	}
	if o.metrics == nil {
		o.metrics = observability.Pipeline()
	}
	if c == nil {
		c = Funcs[T]{}
	}

	tok := newToken()
	ctx = logger.ContextWithSubscription(ctx, tok.id)
	ctx = context.WithValue(ctx, executorKey{}, o.executor)
	ctx, span := observability.StartSpan(ctx, observability.SpanSubscribe, trace.WithAttributes(
		attribute.String(observability.AttrSubscriptionID, tok.id),
		attribute.String(observability.AttrSource, o.name),
	))

	if id := observability.TraceID(ctx); id != "" {
		ctx = logger.ContextWithTrace(ctx, id)
	}

	log := logger.WithComponent("rx").WithContext(ctx)
	started := time.Now()
	o.metrics.SubscriptionStarted(ctx, o.name)

	ctx, g := newGuard(ctx, func(outcome string, err error) {
		defer tok.finish(err)
		o.metrics.SubscriptionEnded(context.WithoutCancel(ctx), o.name, outcome)
		observability.EndSpan(span, outcome, err)
		fields := logger.Fields(
			logger.FieldSource, o.name,
			logger.FieldOutcome, outcome,
			logger.FieldDuration, time.Since(started).Milliseconds(),
		)
		if err != nil {
			fields = logger.MergeWithError(fields, err)
		}
		log.Debug("subscription ended", fields)
	})
	tok.g = g

	em := newEmitter[T](g, &counted[T]{c: c, m: o.metrics, source: o.name})
	log.Debug("subscribed", logger.Fields(logger.FieldSource, o.name, logger.FieldScheduler, o.executor.Name()))

	h, err := o.executor.Submit(ctx, func(wctx context.Context) {
		invoke(wctx, s.p, em)
	})
	if err != nil {
		em.Fail(ctx, err)
		return tok
	}
	tok.handle.Store(h)
	return tok
}

// counted records every signal that reaches the Consumer.
type counted[T any] struct {
	c      Consumer[T]
	m      *observability.PipelineMetrics
	source string
}

func (c *counted[T]) Next(ctx context.Context, v T) {
	c.m.Signal(ctx, c.source, observability.SignalNext)
	c.c.Next(ctx, v)
}

func (c *counted[T]) Fail(ctx context.Context, err error) {
	c.m.Signal(ctx, c.source, observability.SignalFail)
	c.c.Fail(ctx, err)
}

func (c *counted[T]) Complete(ctx context.Context) {
	c.m.Signal(ctx, c.source, observability.SignalComplete)
	c.c.Complete(ctx)
}
