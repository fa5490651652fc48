package rgbloop

import logAdapter "github.com/bft-labs/rgbloop/internal/adapters/log"

// Option configures optional behavior of a Loop.
type Option func(*options)

type options struct {
	logger       Logger
	dialer       Dialer
	eventHandler EventHandler
	plugins      []Plugin
}

func defaultOptions() options {
	return options{
		logger: logAdapter.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDialer replaces the TCP dialer. If not provided, a dialer bounded by
// Config.DialTimeout is used.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithEventHandler sets a handler for Loop events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the Loop starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
