package protocol

import (
	"context"
	"net"
	"time"
)

// MaxDatagramSize bounds a single encoded packet.
const MaxDatagramSize = 64 * 1024

// DefaultPollInterval is how long ReadFrom waits before reporting ErrNoPacket.
const DefaultPollInterval = 20 * time.Millisecond

// Transport moves whole packets between peers without ordering or delivery
// guarantees. ReadFrom is called from one goroutine; WriteTo is safe for
// concurrent use.
type Transport interface {
	// ReadFrom waits at most one poll interval for a packet. It returns
	// ErrNoPacket when nothing arrived and ErrTransportClosed after Close.
	// The returned slice is owned by the caller.
	ReadFrom(ctx context.Context) ([]byte, net.Addr, error)
	// WriteTo sends one packet. Delivery is best effort.
	WriteTo(payload []byte, addr net.Addr) error
	LocalAddr() net.Addr
	Close() error
}

// SameAddr compares peer identities by network and address string.
func SameAddr(a, b net.Addr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Network() == b.Network() && a.String() == b.String()
}
