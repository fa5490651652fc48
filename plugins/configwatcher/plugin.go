// Package configwatcher reloads the transmit interval and sequence from the
// TOML config file while the transmitter is running.
package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/rgbloop/internal/ports"
	"github.com/bft-labs/rgbloop/pkg/rgbloop"
)

// Plugin watches one config file. Only the interval and sequence keys are
// reloaded; the receiver address is fixed for the lifetime of a connection.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration

	logger   rgbloop.Logger
	target   rgbloop.Reconfigurer
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML file to watch. Empty disables the plugin.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// reloadable is the subset of the config file that can change at runtime.
type reloadable struct {
	Interval string `toml:"interval"`
	Sequence string `toml:"sequence"`
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the config file's directory.
func (p *Plugin) Initialize(ctx context.Context, cfg rgbloop.PluginConfig) error {
	p.logger = cfg.Logger
	p.target = cfg.Reconfigurer

	if p.path == "" || p.target == nil {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors replace files on save, so watch the directory rather than the file.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher started", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", ports.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		if err := p.reload(); err != nil {
			p.logger.Warn("config reload ignored", ports.Err(err))
		}
	})
}

// reload reads the file and hands interval and sequence to the transmitter.
func (p *Plugin) reload() error {
	b, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}
	var r reloadable
	if err := toml.Unmarshal(b, &r); err != nil {
		return fmt.Errorf("parse %s: %w", p.path, err)
	}

	if r.Interval == "" && r.Sequence == "" {
		// Nothing reloadable, e.g. a file caught mid-write.
		return nil
	}

	var interval time.Duration
	if r.Interval != "" {
		interval, err = time.ParseDuration(r.Interval)
		if err != nil {
			return fmt.Errorf("parse interval: %w", err)
		}
		if interval <= 0 {
			return fmt.Errorf("interval must be positive")
		}
	}
	if err := p.target.Reconfigure(interval, r.Sequence); err != nil {
		return err
	}
	p.logger.Info("config reloaded",
		ports.Duration("interval", interval),
		ports.String("sequence", r.Sequence),
	)
	return nil
}

// Ensure Plugin implements rgbloop.Plugin.
var _ rgbloop.Plugin = (*Plugin)(nil)
