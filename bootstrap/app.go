package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/rx"
	"github.com/kbukum/rxkit/scheduler"
)

// App represents an rxkit program with uniform lifecycle management.
// The type parameter C is the config type, which must satisfy Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.OnStart(func(ctx context.Context) error {
//	    // schedulers are running here
//	    return nil
//	})
//	app.RunTask(ctx, task)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	output          io.Writer

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: DefaultGracefulTimeout,
		output:          os.Stdout,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.output != nil {
		app.output = o.output
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Components = component.NewRegistry(
		component.WithLogger(app.Logger.WithComponent("component")),
		component.WithStopTimeout(app.gracefulTimeout),
	)
	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Schedulers are the pools an App creates with UseSchedulers.
type Schedulers struct {
	Computation *scheduler.Pool
	Single      *scheduler.Pool
	IO          *scheduler.IO
	// Subscribe runs producers for every Subscribe without an explicit
	// executor while the App is running.
	Subscribe *scheduler.Pool
}

// UseSchedulers creates the computation, single, io and subscribe
// schedulers from cfg and registers them as components. Once they have
// started, the subscribe pool replaces rx.DefaultExecutor; the previous
// executor is restored on shutdown.
func (a *App[C]) UseSchedulers(cfg scheduler.Config, opts ...scheduler.Option) (*Schedulers, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts = append([]scheduler.Option{scheduler.WithLogger(a.Logger.WithComponent("scheduler"))}, opts...)
	s := &Schedulers{
		Computation: scheduler.NewPool(cfg.Name, cfg.Workers, opts...),
		Single:      scheduler.NewSingle(scheduler.SingleName, opts...),
		IO:          scheduler.NewIO(scheduler.IOName, cfg.IOMaxConcurrent, opts...),
		Subscribe:   scheduler.NewPool(rx.SubscribeExecutorName, cfg.SubscribeWorkers, opts...),
	}
	for _, c := range []component.Component{s.Computation, s.Single, s.IO, s.Subscribe} {
		if err := a.RegisterComponent(c); err != nil {
			return nil, err
		}
	}

	var prev scheduler.Submitter
	a.OnStart(func(context.Context) error {
		prev = rx.SetDefaultExecutor(s.Subscribe)
		return nil
	})
	a.OnStop(func(context.Context) error {
		rx.SetDefaultExecutor(prev)
		return nil
	})
	return s, nil
}

// EnableTelemetry installs the OpenTelemetry providers described by cfg
// and flushes them on shutdown. A disabled cfg installs nothing.
func (a *App[C]) EnableTelemetry(ctx context.Context, cfg observability.TelemetryConfig) error {
	base := a.Cfg.GetServiceConfig()
	shutdown, err := observability.Setup(ctx, cfg, a.Name, a.Version, base.Environment)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	a.OnStop(func(ctx context.Context) error {
		return shutdown(ctx)
	})
	return nil
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the lifecycle of a long-running program: start components,
// run OnStart hooks, ready check, OnReady hooks, block until a signal or
// ctx is done, then shut down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full lifecycle. The task context
// is cancelled on SIGINT or SIGTERM. Shutdown runs once the task returns.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		_ = a.stop()
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.MergeWithError(nil, err))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		_ = a.stop()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// DisplaySummary prints the startup summary with live component health.
func (a *App[C]) DisplaySummary() {
	a.Summary.Display(a.output, a.Components)
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop runs OnStop hooks and stops all components within the graceful
// timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooksReverse(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.MergeWithError(nil, err))
		shutdownErr = err
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.MergeWithError(nil, err))
		shutdownErr = err
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
