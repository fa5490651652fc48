package rgbloop

import "github.com/bft-labs/rgbloop/internal/domain"

// Errors returned by this package. Check them with errors.Is.
var (
	ErrConnect          = domain.ErrConnect
	ErrConnectionBroken = domain.ErrConnectionBroken
	ErrAlreadyRunning   = domain.ErrAlreadyRunning
	ErrNotRunning       = domain.ErrNotRunning
	ErrShutdownTimeout  = domain.ErrShutdownTimeout
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrEmptySequence    = domain.ErrEmptySequence
)
