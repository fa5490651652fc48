package app

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/rgbloop/internal/adapters/tcp"
	"github.com/bft-labs/rgbloop/internal/domain"
	"github.com/bft-labs/rgbloop/internal/ports"
)

// captureLogger records log messages for assertions.
type captureLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureLogger) record(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *captureLogger) Debug(msg string, fields ...ports.Field) { c.record(msg) }
func (c *captureLogger) Info(msg string, fields ...ports.Field)  { c.record(msg) }
func (c *captureLogger) Warn(msg string, fields ...ports.Field)  { c.record(msg) }
func (c *captureLogger) Error(msg string, fields ...ports.Field) { c.record(msg) }

func (c *captureLogger) count(msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs {
		if m == msg {
			n++
		}
	}
	return n
}

type received struct {
	b  byte
	at time.Time
}

// peer is a single-connection TCP receiver on a loopback port.
type peer struct {
	ln    net.Listener
	bytes chan received
}

// newPeer accepts one connection and forwards each byte it reads.
// If closeAfter > 0 the connection is closed after that many bytes.
func newPeer(t *testing.T, closeAfter int) *peer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	p := &peer{ln: ln, bytes: make(chan received, 64)}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1)
		for n := 0; closeAfter == 0 || n < closeAfter; n++ {
			if _, err := conn.Read(buf); err != nil {
				return
			}
			p.bytes <- received{b: buf[0], at: time.Now()}
		}
	}()
	return p
}

func (p *peer) addr() string { return p.ln.Addr().String() }

func (p *peer) collect(t *testing.T, n int) []received {
	t.Helper()
	out := make([]received, 0, n)
	for len(out) < n {
		select {
		case r := <-p.bytes:
			out = append(out, r)
		case <-time.After(3 * time.Second):
			t.Fatalf("received %d bytes, want %d", len(out), n)
		}
	}
	return out
}

func values(rs []received) []byte {
	b := make([]byte, len(rs))
	for i, r := range rs {
		b[i] = r.b
	}
	return b
}

type countingRecorder struct {
	mu sync.Mutex
	n  int
}

func (c *countingRecorder) RecordSend(time.Duration) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingRecorder) sends() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func newTestTransmitter(addr, seq string, interval time.Duration, count uint64, logger ports.Logger, rec ports.SendRecorder) *Transmitter {
	cfg := TransmitterConfig{
		Address:      addr,
		Interval:     interval,
		WriteTimeout: time.Second,
		Sequence:     domain.MustParseSequence(seq),
		Count:        count,
	}
	return NewTransmitter(cfg, tcp.NewDialer(time.Second), logger, rec, nil)
}

func TestTransmitter_SendsRoundRobin(t *testing.T) {
	p := newPeer(t, 0)
	logger := &captureLogger{}
	rec := &countingRecorder{}
	tx := newTestTransmitter(p.addr(), "hex:000102", 10*time.Millisecond, 7, logger, rec)

	require.NoError(t, tx.Run(context.Background()))

	got := values(p.collect(t, 7))
	assert.Equal(t, []byte{0, 1, 2, 0, 1, 2, 0}, got)
	assert.Equal(t, 7, logger.count("send"))
	assert.Equal(t, 1, logger.count("connected"))
	assert.Equal(t, 7, rec.sends())
}

func TestTransmitter_DefaultSequenceIsLiteralRGB(t *testing.T) {
	p := newPeer(t, 0)
	tx := newTestTransmitter(p.addr(), domain.DefaultSequence, 10*time.Millisecond, 3, &captureLogger{}, nil)

	require.NoError(t, tx.Run(context.Background()))
	assert.Equal(t, []byte{0x72, 0x67, 0x62}, values(p.collect(t, 3)))
}

func TestTransmitter_SpacesSendsByInterval(t *testing.T) {
	const interval = 100 * time.Millisecond
	p := newPeer(t, 0)
	tx := newTestTransmitter(p.addr(), "hex:000102", interval, 3, &captureLogger{}, nil)

	require.NoError(t, tx.Run(context.Background()))

	rs := p.collect(t, 3)
	for i := 1; i < len(rs); i++ {
		gap := rs[i].at.Sub(rs[i-1].at)
		assert.GreaterOrEqual(t, gap, interval*8/10, "gap %d", i)
	}
}

func TestTransmitter_NoListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	logger := &captureLogger{}
	rec := &countingRecorder{}
	tx := newTestTransmitter(addr, "rgb", 10*time.Millisecond, 0, logger, rec)

	start := time.Now()
	err = tx.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrConnect)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Zero(t, logger.count("send"))
	assert.Zero(t, rec.sends())
}

func TestTransmitter_PeerCloseBreaksConnection(t *testing.T) {
	p := newPeer(t, 1)
	tx := newTestTransmitter(p.addr(), "rgb", 10*time.Millisecond, 0, &captureLogger{}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- tx.Run(context.Background()) }()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrConnectionBroken)
	case <-time.After(5 * time.Second):
		t.Fatal("transmitter kept sending after the peer closed")
	}
}

func TestTransmitter_CancelStopsBetweenSends(t *testing.T) {
	p := newPeer(t, 0)
	tx := newTestTransmitter(p.addr(), "rgb", time.Hour, 0, &captureLogger{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- tx.Run(ctx) }()

	p.collect(t, 1)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestTransmitter_RestartBeginsAtFirstValue(t *testing.T) {
	for i := 0; i < 2; i++ {
		p := newPeer(t, 0)
		tx := newTestTransmitter(p.addr(), "rgb", 10*time.Millisecond, 2, &captureLogger{}, nil)
		require.NoError(t, tx.Run(context.Background()))
		assert.Equal(t, []byte("rg"), values(p.collect(t, 2)), "run %d", i)
	}
}

func TestTransmitter_ApplyAtPassBoundary(t *testing.T) {
	p := newPeer(t, 0)
	tx := newTestTransmitter(p.addr(), "ab", 10*time.Millisecond, 6, &captureLogger{}, nil)
	tx.Apply(Update{Sequence: domain.MustParseSequence("xy"), Interval: 5 * time.Millisecond})

	require.NoError(t, tx.Run(context.Background()))
	assert.Equal(t, []byte("abxyxy"), values(p.collect(t, 6)))
}

func TestTransmitter_ApplySameSequenceKeepsPosition(t *testing.T) {
	p := newPeer(t, 0)
	tx := newTestTransmitter(p.addr(), "abc", 10*time.Millisecond, 5, &captureLogger{}, nil)
	tx.Apply(Update{Sequence: domain.MustParseSequence("abc")})

	require.NoError(t, tx.Run(context.Background()))
	assert.Equal(t, []byte("abcab"), values(p.collect(t, 5)))
}

// zeroWriteConn reports zero bytes written without an error.
type zeroWriteConn struct {
	net.Conn
}

func (zeroWriteConn) Write([]byte) (int, error) { return 0, nil }

type pipeDialer struct{}

func (pipeDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	a, b := net.Pipe()
	go func() { b.Close() }()
	return zeroWriteConn{Conn: a}, nil
}

func TestTransmitter_ZeroByteWriteIsFatal(t *testing.T) {
	cfg := TransmitterConfig{
		Address:  "pipe",
		Interval: time.Millisecond,
		Sequence: domain.MustParseSequence("rgb"),
	}
	logger := &captureLogger{}
	tx := NewTransmitter(cfg, pipeDialer{}, logger, nil, nil)

	err := tx.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrConnectionBroken)
	assert.Zero(t, logger.count("send"))
}

type failingDialer struct{}

func (failingDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	return nil, errors.New("no route to host")
}

func TestTransmitter_WrapsForeignDialErrors(t *testing.T) {
	cfg := TransmitterConfig{Address: "x:1", Interval: time.Second, Sequence: domain.MustParseSequence("rgb")}
	err := NewTransmitter(cfg, failingDialer{}, &captureLogger{}, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrConnect)
}

func TestTransmitter_EmptySequence(t *testing.T) {
	cfg := TransmitterConfig{Address: "x:1", Interval: time.Second}
	err := NewTransmitter(cfg, failingDialer{}, &captureLogger{}, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptySequence)
}
