// Package bootstrap runs an rxkit program through a uniform lifecycle.
//
// An App is built from a typed config that embeds config.ServiceConfig. It
// initializes the logger, owns a component.Registry, and can create the
// process schedulers (UseSchedulers) and OpenTelemetry providers
// (EnableTelemetry) as part of that lifecycle.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	if _, err := app.UseSchedulers(cfg.Scheduler); err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return runPipeline(ctx)
//	})
//
// Components start in registration order and stop in reverse. OnStop hooks
// run before components are stopped.
package bootstrap
