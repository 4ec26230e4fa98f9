package httpserver

import (
	"context"
	"log/slog"
	"time"
)

// Option configures the HTTP server. Options panic on values that can
// only be programming mistakes.
type Option func(*config)

// WithAddr sets the listen address. ":0" picks a free port; read it back
// with Server.Addr.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: WithAddr: empty address")
	}
	return func(c *config) { c.addr = addr }
}

// WithReadTimeout bounds reading a request, headers included.
func WithReadTimeout(d time.Duration) Option {
	mustPositive("WithReadTimeout", d)
	return func(c *config) { c.readTimeout = d }
}

// WithWriteTimeout bounds writing a plain response. Event streams lift it
// per request through http.ResponseController.
func WithWriteTimeout(d time.Duration) Option {
	mustPositive("WithWriteTimeout", d)
	return func(c *config) { c.writeTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	mustPositive("WithIdleTimeout", d)
	return func(c *config) { c.idleTimeout = d }
}

// WithShutdownTimeout caps how long Shutdown waits for open requests.
func WithShutdownTimeout(d time.Duration) Option {
	mustPositive("WithShutdownTimeout", d)
	return func(c *config) { c.shutdownTimeout = d }
}

// WithLogger supplies the server logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStartHook registers h to run once the listener is bound, with the
// address actually in use.
func WithStartHook(h func(ctx context.Context, addr string)) Option {
	if h == nil {
		panic("httpserver: WithStartHook: nil hook")
	}
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook registers h to run after Shutdown has drained the server.
func WithStopHook(h func(ctx context.Context)) Option {
	if h == nil {
		panic("httpserver: WithStopHook: nil hook")
	}
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}

// WithOnShutdown registers f with http.Server.RegisterOnShutdown: it runs
// as soon as shutdown begins, which is when open event streams must end.
func WithOnShutdown(f func()) Option {
	if f == nil {
		panic("httpserver: WithOnShutdown: nil func")
	}
	return func(c *config) { c.onShutdown = append(c.onShutdown, f) }
}

func mustPositive(name string, d time.Duration) {
	if d <= 0 {
		panic("httpserver: " + name + ": duration must be positive")
	}
}
