package domain

import "errors"

// Domain errors represent error conditions in the rgbloop domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrConnect is returned when the initial TCP dial fails.
	ErrConnect = errors.New("rgbloop: connection failure")

	// ErrConnectionBroken is returned when a send transmits zero bytes
	// or the stream is no longer writable.
	ErrConnectionBroken = errors.New("rgbloop: socket connection broken")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("rgbloop: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("rgbloop: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("rgbloop: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("rgbloop: invalid configuration")

	// ErrEmptySequence is returned when a sequence has no values.
	ErrEmptySequence = errors.New("rgbloop: empty sequence")
)
