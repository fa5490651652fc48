package configwatcher

import "github.com/bft-labs/rgbloop/pkg/rgbloop"

// WithConfigWatcher returns an rgbloop Option that reloads interval and
// sequence whenever the config file changes.
//
// Usage:
//
//	loop, err := rgbloop.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/rgbloop/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) rgbloop.Option {
	return rgbloop.WithPlugin(New(cfg))
}
