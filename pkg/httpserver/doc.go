// Package httpserver runs the notification API with graceful shutdown
// and health probes.
//
// Run serves until its context is cancelled, then calls Shutdown with the
// configured deadline. Callers own signal handling, usually through
// signal.NotifyContext, so the HTTP server and background workers stop
// together. WithOnShutdown hooks fire when shutdown begins, which lets
// event streams return instead of holding it open.
//
//	srv := httpserver.NewFromConfig(cfg,
//	    httpserver.WithLogger(log),
//	    httpserver.WithOnShutdown(inbox.Close),
//	)
//
//	r.Get("/healthz", httpserver.HealthCheckHandler(log, 0, nil))
//	r.Get("/readyz", httpserver.HealthCheckHandler(log, 2*time.Second, map[string]httpserver.Check{
//	    "postgres": pg.Healthcheck(pool),
//	}))
//
//	if err := srv.Run(ctx, r); err != nil {
//	    return err
//	}
//
// Listen failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown.
package httpserver
