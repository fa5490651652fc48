// Package profiler serves a wall-clock profile of the transmitter over HTTP.
//
// fgprof samples all goroutines, including those blocked in the write or the
// inter-send wait, which is where a transmitter spends nearly all its time.
package profiler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/felixge/fgprof"

	"github.com/bft-labs/rgbloop/internal/ports"
	"github.com/bft-labs/rgbloop/pkg/rgbloop"
)

// Path is the URL path of the profile endpoint.
const Path = "/debug/fgprof"

// Config holds configuration options for the profiler plugin.
type Config struct {
	// Addr is the listen address, e.g. "localhost:6060". Empty disables the plugin.
	Addr string
}

// Plugin serves fgprof on Config.Addr for the lifetime of a run.
type Plugin struct {
	addr   string
	srv    *http.Server
	ln     net.Listener
	done   chan struct{}
	logger rgbloop.Logger
}

// New creates a profiler plugin.
func New(cfg Config) *Plugin {
	return &Plugin{addr: cfg.Addr}
}

// WithProfiler returns an rgbloop Option that enables the profile endpoint.
func WithProfiler(cfg Config) rgbloop.Option {
	return rgbloop.WithPlugin(New(cfg))
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string { return "profiler" }

// Initialize binds the listen address and starts serving.
func (p *Plugin) Initialize(ctx context.Context, cfg rgbloop.PluginConfig) error {
	p.logger = cfg.Logger
	if p.addr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", p.addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(Path, fgprof.Handler())
	p.ln = ln
	p.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		if err := p.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("profiler stopped", ports.Err(err))
		}
	}()

	p.logger.Info("profiler listening", ports.String("url", "http://"+ln.Addr().String()+Path))
	return nil
}

// Addr returns the bound address, or nil when disabled.
func (p *Plugin) Addr() net.Addr {
	if p.ln == nil {
		return nil
	}
	return p.ln.Addr()
}

// Shutdown stops the HTTP server.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := p.srv.Shutdown(ctx)
	<-p.done
	return err
}

var _ rgbloop.Plugin = (*Plugin)(nil)
