// Package bootstrap drives the service lifecycle: start registered
// components, run configure callbacks and hooks, wait for a shutdown signal,
// then stop everything in reverse order within a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	_ = app.RegisterComponent(database.NewComponent(cfg.Database, app.Logger))
//	return app.Run(ctx)
package bootstrap
