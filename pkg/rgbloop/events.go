package rgbloop

import (
	"context"
	"time"

	"github.com/bft-labs/rgbloop/internal/ports"
)

// State is the lifecycle state of a Loop.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendEvent describes one successful single-byte send.
type SendEvent struct {
	Value   byte
	Seq     uint64
	Latency time.Duration
}

// EventHandler receives Loop events.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnSend(SendEvent)
}

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// Dialer opens the outbound connection. *net.Dialer satisfies it.
type Dialer = ports.Dialer

// Reconfigurer accepts a new interval and sequence for a running Loop.
// Empty values keep the current setting.
type Reconfigurer interface {
	Reconfigure(interval time.Duration, sequence string) error
}

// PluginConfig is handed to plugins on Initialize.
type PluginConfig struct {
	Address      string
	Logger       Logger
	Reconfigurer Reconfigurer
}

// Plugin extends a Loop with side functionality.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}
