package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/rgbloop/internal/domain"
	"github.com/bft-labs/rgbloop/internal/ports"
)

// ShutdownTimeout is the maximum time to wait for the transmitter to stop.
// A pending write is bounded by the write timeout, so this stays short.
const ShutdownTimeout = 10 * time.Second

// State represents the lifecycle state of the transmitter.
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

// allowed lists the legal targets for each state.
var allowed = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateStopped, StateCrashed},
	StateRunning:  {StateStopping, StateStopped, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle is the state machine around one transmitter run. It tracks the
// worker goroutine and remembers the error the run ended with.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	cancel       context.CancelFunc
	done         chan struct{}
	runErr       error
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateStopped,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to move to newState.
// Leaving Stopped or Crashed fails with ErrNotRunning; any other illegal
// move fails with ErrAlreadyRunning.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	if !canMove(oldState, newState) {
		l.mu.Unlock()
		if oldState == StateStopped || oldState == StateCrashed {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = newState
	l.mu.Unlock()

	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Debug("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)
	return nil
}

func canMove(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	s := l.State()
	return s == StateStopped || s == StateCrashed
}

// CanStop returns true if Stop() can be called.
func (l *Lifecycle) CanStop() bool {
	s := l.State()
	return s == StateRunning || s == StateStarting
}

// Begin records the cancel function of a new run and resets its result.
func (l *Lifecycle) Begin(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
	l.done = make(chan struct{})
	l.runErr = nil
}

// Cancel asks the current run to stop.
func (l *Lifecycle) Cancel() {
	l.mu.RLock()
	cancel := l.cancel
	l.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Finish records the result of the run and releases waiters.
func (l *Lifecycle) Finish(err error) {
	l.mu.Lock()
	l.runErr = err
	done := l.done
	l.mu.Unlock()
	if done != nil {
		close(done)
	}
}

// Done returns a channel closed when the current run finishes.
// It is nil before the first Begin.
func (l *Lifecycle) Done() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.done
}

// Err returns the error the last run finished with.
func (l *Lifecycle) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.runErr
}

// WaitWithTimeout waits for the current run to finish.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := l.Done()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, forcing exit",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
