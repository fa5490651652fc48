package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bft-labs/rgbloop/internal/domain"
	"github.com/bft-labs/rgbloop/internal/ports"
)

// TransmitterConfig holds the settings of one transmitter run.
type TransmitterConfig struct {
	// Address is the host:port of the receiver.
	Address string

	// Interval is the pause after every send.
	Interval time.Duration

	// WriteTimeout bounds a single write. Zero disables the deadline.
	WriteTimeout time.Duration

	// Sequence is the list of byte values sent round-robin.
	Sequence domain.Sequence

	// Count stops the run after that many sends. Zero means forever.
	Count uint64
}

// Update replaces the interval and/or sequence of a running transmitter.
// Zero fields keep the current value.
type Update struct {
	Interval time.Duration
	Sequence domain.Sequence
}

// SendEmitter is notified after each successful send.
type SendEmitter interface {
	OnSend(value byte, seq uint64, latency time.Duration)
}

// Transmitter owns one TCP connection and writes the sequence over it,
// one byte per interval, until cancelled or the connection breaks.
type Transmitter struct {
	cfg      TransmitterConfig
	dialer   ports.Dialer
	logger   ports.Logger
	recorder ports.SendRecorder
	emitter  SendEmitter

	mu      sync.Mutex
	pending *Update
}

// NewTransmitter creates a transmitter. recorder and emitter may be nil.
func NewTransmitter(cfg TransmitterConfig, dialer ports.Dialer, logger ports.Logger, recorder ports.SendRecorder, emitter SendEmitter) *Transmitter {
	return &Transmitter{
		cfg:      cfg,
		dialer:   dialer,
		logger:   logger,
		recorder: recorder,
		emitter:  emitter,
	}
}

// Apply queues u; it takes effect when the current pass over the sequence
// completes. A later Apply before that point supersedes an earlier one.
func (t *Transmitter) Apply(u Update) {
	t.mu.Lock()
	t.pending = &u
	t.mu.Unlock()
}

func (t *Transmitter) takePending() *Update {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.pending
	t.pending = nil
	return u
}

// Run dials the receiver and transmits until ctx is cancelled, Count sends
// have completed, or a fatal error occurs. Cancellation returns ctx.Err().
// Dial failures wrap domain.ErrConnect; failed writes wrap
// domain.ErrConnectionBroken.
func (t *Transmitter) Run(ctx context.Context) error {
	if t.cfg.Sequence.IsZero() {
		return domain.ErrEmptySequence
	}

	conn, err := t.dialer.DialContext(ctx, "tcp", t.cfg.Address)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, domain.ErrConnect) {
			err = fmt.Errorf("%w: %s: %v", domain.ErrConnect, t.cfg.Address, err)
		}
		return err
	}
	defer conn.Close()

	t.logger.Info("connected",
		ports.String("local", conn.LocalAddr().String()),
		ports.String("remote", conn.RemoteAddr().String()),
	)

	cursor := domain.NewCursor(t.cfg.Sequence)
	interval := t.cfg.Interval
	var sent uint64

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, passEnd := cursor.Next()
		latency, err := t.send(conn, v)
		if err != nil {
			return err
		}
		sent++

		t.logger.Info("send",
			ports.Int("value", int(v)),
			ports.String("byte", fmt.Sprintf("0x%02x", v)),
			ports.String("char", fmt.Sprintf("%q", v)),
			ports.Uint64("seq", sent),
		)
		if t.recorder != nil {
			t.recorder.RecordSend(latency)
		}
		if t.emitter != nil {
			t.emitter.OnSend(v, sent, latency)
		}

		if t.cfg.Count > 0 && sent >= t.cfg.Count {
			t.logger.Info("send count reached", ports.Uint64("count", sent))
			return nil
		}

		if passEnd {
			if u := t.takePending(); u != nil {
				interval = t.applyUpdate(cursor, interval, *u)
			}
		}

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// applyUpdate installs u at a pass boundary and returns the new interval.
// The cursor restarts only when the sequence actually changed.
func (t *Transmitter) applyUpdate(cursor *domain.Cursor, interval time.Duration, u Update) time.Duration {
	if u.Interval > 0 && u.Interval != interval {
		t.logger.Info("interval updated",
			ports.Duration("from", interval),
			ports.Duration("to", u.Interval),
		)
		interval = u.Interval
	}
	if !u.Sequence.IsZero() && !u.Sequence.Equal(cursor.Sequence()) {
		t.logger.Info("sequence updated",
			ports.String("from", cursor.Sequence().String()),
			ports.String("to", u.Sequence.String()),
		)
		cursor.Reset(u.Sequence)
	}
	return interval
}

// send writes v as a single byte and reports how long the write took.
func (t *Transmitter) send(conn net.Conn, v byte) (time.Duration, error) {
	if t.cfg.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout)); err != nil {
			return 0, fmt.Errorf("%w: set deadline: %v", domain.ErrConnectionBroken, err)
		}
	}

	start := time.Now()
	n, err := conn.Write([]byte{v})
	latency := time.Since(start)
	if err != nil {
		return latency, fmt.Errorf("%w: %v", domain.ErrConnectionBroken, err)
	}
	if n == 0 {
		return latency, fmt.Errorf("%w: wrote 0 bytes", domain.ErrConnectionBroken)
	}
	return latency, nil
}
