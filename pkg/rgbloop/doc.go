// Package rgbloop provides an embeddable transmitter that cycles a fixed
// byte sequence over a single TCP connection, one byte per interval.
//
// The default sequence is the literal "rgb", which the LED firmware on the
// receiving board maps to red, green and blue.
//
// # Basic Usage
//
//	cfg := rgbloop.DefaultConfig()
//	cfg.Host = "192.168.2.94"
//
//	loop, err := rgbloop.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := loop.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := loop.Wait(); err != nil {
//	    log.Fatal(err) // ErrConnect or ErrConnectionBroken
//	}
//
// # Failure Model
//
// There is no retry and no reconnect. A failed dial ends the run with
// [ErrConnect]; a write that transmits nothing or fails ends it with
// [ErrConnectionBroken]. Both leave the instance in [StateCrashed].
//
// # Event Handling
//
// Implement [EventHandler] and pass it via [WithEventHandler]. Events are
// called synchronously from the transmit goroutine.
//
// # Plugins
//
// Plugins are initialized by Start in registration order and shut down in
// reverse order when the run ends:
//
//	import "github.com/bft-labs/rgbloop/plugins/configwatcher"
//	import "github.com/bft-labs/rgbloop/plugins/profiler"
//
//	loop, err := rgbloop.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{Path: path}),
//	    profiler.WithProfiler(profiler.Config{Addr: "localhost:6060"}),
//	)
package rgbloop
