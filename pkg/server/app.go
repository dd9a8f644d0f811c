package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	applogger "ecogw/pkg/logger"
)

// Runner is a blocking loop that returns when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Listener is a network front end bound by Start.
type Listener interface {
	Start() error
	Stop(ctx context.Context) error
}

// Option configures App.
type Option func(*App)

// WithListener adds a front end. Listeners start in order and stop in reverse.
func WithListener(name string, l Listener) Option {
	return func(a *App) {
		a.listeners = append(a.listeners, namedListener{name: name, Listener: l})
	}
}

// WithCloser releases c after every runner has returned.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) {
		a.closers = append(a.closers, namedCloser{name: name, Closer: c})
	}
}

// WithShutdownTimeout bounds the whole graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}

type namedListener struct {
	name string
	Listener
}

type namedCloser struct {
	name string
	io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	logger          *applogger.Logger
	runner          Runner
	listeners       []namedListener
	closers         []namedCloser
	shutdownTimeout time.Duration
}

// New creates a new App around the main loop.
func New(logger *applogger.Logger, runner Runner, opts ...Option) *App {
	a := &App{
		logger:          logger,
		runner:          runner,
		shutdownTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until ctx is done or SIGINT/SIGTERM.
// A listener that fails to bind aborts startup.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i, l := range a.listeners {
		if err := l.Start(); err != nil {
			a.stopListeners(a.listeners[:i])
			a.close()
			return fmt.Errorf("start %s: %w", l.name, err)
		}
	}

	var lifecycle conc.WaitGroup
	lifecycle.Go(func() {
		if err := a.runner.Run(ctx); err != nil {
			a.logger.Error("main loop error", applogger.Error(err))
		}
	})

	a.logger.Info("gateway started; awaiting shutdown signal")
	<-ctx.Done()
	a.logger.Info("shutdown signal received")

	return a.shutdown(&lifecycle)
}

// shutdown waits for the in-flight job, then stops the front ends and releases resources.
func (a *App) shutdown(lifecycle *conc.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if r := lifecycle.WaitAndRecover(); r != nil {
			a.logger.Error("main loop panicked", applogger.Error(r.AsError()))
		}
	}()

	select {
	case <-done:
	case <-time.After(a.shutdownTimeout):
		a.logger.Warn("main loop did not stop in time", applogger.Duration("timeout_ms", a.shutdownTimeout))
	}

	a.stopListeners(a.listeners)
	a.close()
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) stopListeners(ls []namedListener) {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	for i := len(ls) - 1; i >= 0; i-- {
		if err := ls[i].Stop(ctx); err != nil {
			a.logger.Warn("listener stop error", applogger.String("listener", ls[i].name), applogger.Error(err))
		}
	}
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}
}
