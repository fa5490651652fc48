// Package tcp provides the TCP transport for the transmitter.
package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/bft-labs/rgbloop/internal/domain"
)

// Dialer opens TCP connections with a bounded connect timeout.
type Dialer struct {
	d *net.Dialer
}

// NewDialer returns a Dialer whose connect attempts give up after timeout.
func NewDialer(timeout time.Duration) *Dialer {
	return &Dialer{d: &net.Dialer{Timeout: timeout}}
}

// DialContext connects to address. Failures wrap domain.ErrConnect.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.d.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrConnect, address, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		// One byte per write; don't let Nagle coalesce them.
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}
