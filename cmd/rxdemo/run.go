package main

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/rxkit/bootstrap"
	"github.com/kbukum/rxkit/config"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/rx"
	"github.com/kbukum/rxkit/scheduler"
	"github.com/kbukum/rxkit/validation"
)

const serviceName = "rxdemo"

type demoConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Scheduler            scheduler.Config              `yaml:"scheduler" mapstructure:"scheduler"`
	Telemetry            observability.TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Pipeline             pipelineConfig                `yaml:"pipeline" mapstructure:"pipeline"`
}

// pipelineConfig shapes Just(values) -> Map(x*factor) -> Filter(x>min).
type pipelineConfig struct {
	Values []int `yaml:"values" mapstructure:"values" validate:"required,min=1"`
	Factor int   `yaml:"factor" mapstructure:"factor"`
	Min    int   `yaml:"min" mapstructure:"min"`
}

func (c *demoConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Scheduler.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if len(c.Pipeline.Values) == 0 {
		c.Pipeline.Values = []int{10, 20, 30}
	}
	if c.Pipeline.Factor == 0 {
		c.Pipeline.Factor = 2
	}
	if c.Pipeline.Min == 0 {
		c.Pipeline.Min = 20
	}
}

func (c *demoConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := validation.Struct(&c.Pipeline); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

type runOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func loadConfig(opts runOptions) (*demoConfig, error) {
	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}

	cfg := &demoConfig{}
	if err := config.LoadConfig(serviceName, cfg, loaderOpts...); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}

func runDemo(ctx context.Context, opts runOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithOutput(out))
	if err != nil {
		return err
	}
	if err := app.EnableTelemetry(ctx, cfg.Telemetry); err != nil {
		return err
	}
	s, err := app.UseSchedulers(cfg.Scheduler)
	if err != nil {
		return err
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		return runPipeline(ctx, s, cfg.Pipeline, out)
	})
}

// runPipeline produces on the IO scheduler, delivers on the single worker
// and blocks until the subscription is over.
func runPipeline(ctx context.Context, s *bootstrap.Schedulers, p pipelineConfig, out io.Writer) error {
	src := rx.Map(rx.Just(p.Values...), func(_ context.Context, x int) (int, error) {
		return x * p.Factor, nil
	}).
		Filter(func(_ context.Context, x int) (bool, error) { return x > p.Min, nil }).
		SubscribeOn(s.IO).
		ObserveOn(s.Single)

	tok := src.Subscribe(ctx, rx.Funcs[int]{
		OnNext: func(ctx context.Context, v int) {
			w, _ := scheduler.WorkerFrom(ctx)
			fmt.Fprintf(out, "%d on %s\n", v, w)
		},
		OnFail: func(ctx context.Context, err error) {
			fmt.Fprintf(out, "Failed: %v\n", err)
		},
		OnComplete: func(ctx context.Context) {
			fmt.Fprintln(out, "Completed")
		},
	}, rx.WithName("demo"))

	<-tok.Done()
	return tok.Err()
}
