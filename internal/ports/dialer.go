package ports

import (
	"context"
	"net"
	"time"
)

// Dialer opens the single outbound connection the transmitter owns.
// *net.Dialer satisfies this interface.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// SendRecorder observes the outcome of each write.
type SendRecorder interface {
	// RecordSend is called after every successful single-byte write.
	RecordSend(d time.Duration)
}
