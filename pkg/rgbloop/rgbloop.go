package rgbloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/rgbloop/internal/adapters/stats"
	"github.com/bft-labs/rgbloop/internal/adapters/tcp"
	"github.com/bft-labs/rgbloop/internal/app"
	"github.com/bft-labs/rgbloop/internal/domain"
	"github.com/bft-labs/rgbloop/internal/ports"
)

// Stats is a snapshot of write latencies.
type Stats = stats.Summary

// Loop is a transmitter that can be embedded in other applications.
// Use New() to create an instance, then Start() to begin sending.
type Loop struct {
	config      Config
	opts        options
	lifecycle   *app.Lifecycle
	transmitter *app.Transmitter
	histogram   *stats.Histogram
	logger      ports.Logger

	mu sync.Mutex
}

// New creates a Loop in StateStopped. Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Loop, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seq, err := domain.ParseSequence(cfg.Sequence)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialer == nil {
		o.dialer = tcp.NewDialer(cfg.DialTimeout)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	hist := stats.NewHistogram()

	transmitter := app.NewTransmitter(app.TransmitterConfig{
		Address:      cfg.Address(),
		Interval:     cfg.Interval,
		WriteTimeout: cfg.WriteTimeout,
		Sequence:     seq,
		Count:        cfg.Count,
	}, o.dialer, o.logger, hist, emitter)

	return &Loop{
		config:      cfg,
		opts:        o,
		lifecycle:   app.NewLifecycle(o.logger, emitter),
		transmitter: transmitter,
		histogram:   hist,
		logger:      o.logger,
	}, nil
}

// Start dials the receiver and begins sending in the background.
// Plugins are initialized before the transmit goroutine starts.
// Use Wait to block until the run ends.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := l.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.lifecycle.Begin(cancel)

	pluginCfg := PluginConfig{
		Address:      l.config.Address(),
		Logger:       l.logger,
		Reconfigurer: l,
	}
	for i, p := range l.opts.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			l.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			l.shutdownPlugins(l.opts.plugins[:i])
			_ = l.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			l.lifecycle.Finish(err)
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		l.logger.Debug("plugin initialized", ports.String("plugin", p.Name()))
	}

	go l.run(runCtx, cancel)
	return nil
}

func (l *Loop) run(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	if err := l.lifecycle.TransitionTo(app.StateRunning, "transmitter starting"); err != nil {
		// Stop() raced ahead of us; nothing to run.
		l.shutdownPlugins(l.opts.plugins)
		l.lifecycle.Finish(nil)
		return
	}

	err := l.transmitter.Run(ctx)

	l.shutdownPlugins(l.opts.plugins)
	l.logStats()

	switch {
	case err == nil:
		_ = l.lifecycle.TransitionTo(app.StateStopped, "send count reached")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		err = nil
		if l.lifecycle.State() == app.StateRunning {
			_ = l.lifecycle.TransitionTo(app.StateStopped, "context done")
		}
	default:
		l.logger.Error("transmitter failed", ports.Err(err))
		_ = l.lifecycle.TransitionTo(app.StateCrashed, err.Error())
	}
	l.lifecycle.Finish(err)
}

// Stop cancels the run and waits for the transmitter to close its connection.
// Returns ErrNotRunning if the Loop is not running.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if !l.lifecycle.CanStop() {
		l.mu.Unlock()
		return ErrNotRunning
	}
	if err := l.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		l.mu.Unlock()
		return err
	}
	l.lifecycle.Cancel()
	l.mu.Unlock()

	if err := l.lifecycle.WaitWithTimeout(app.ShutdownTimeout); err != nil {
		_ = l.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
		return err
	}
	_ = l.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	return nil
}

// Wait blocks until the current run ends and returns its error.
// Cancellation and reaching Config.Count both return nil.
func (l *Loop) Wait() error {
	done := l.lifecycle.Done()
	if done == nil {
		return ErrNotRunning
	}
	<-done
	return l.lifecycle.Err()
}

// Done returns a channel that is closed when the current run ends.
func (l *Loop) Done() <-chan struct{} {
	return l.lifecycle.Done()
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (l *Loop) Status() State {
	return convertState(l.lifecycle.State())
}

// Stats returns write latency statistics accumulated since New.
func (l *Loop) Stats() Stats {
	return l.histogram.Summary()
}

// Reconfigure changes the interval and/or sequence of a running Loop.
// The change takes effect when the current pass over the sequence completes.
func (l *Loop) Reconfigure(interval time.Duration, sequence string) error {
	if interval < 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	var u app.Update
	u.Interval = interval
	if sequence != "" {
		seq, err := domain.ParseSequence(sequence)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		u.Sequence = seq
	}
	l.transmitter.Apply(u)
	return nil
}

func (l *Loop) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			l.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		}
	}
}

func (l *Loop) logStats() {
	s := l.histogram.Summary()
	if s.Count == 0 {
		return
	}
	l.logger.Info("write latency",
		ports.Int64("sends", s.Count),
		ports.Duration("p50", s.P50),
		ports.Duration("p99", s.P99),
		ports.Duration("max", s.Max),
	)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSend(value byte, seq uint64, latency time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnSend(SendEvent{Value: value, Seq: seq, Latency: latency})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
