// Package memory implements protocol.Transport between endpoints of one
// process. Delivery is reliable and ordered unless a drop filter is set.
package memory

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/deltasync/internal/core/protocol"
)

// Addr is the address of an endpoint on a Network.
type Addr string

func (Addr) Network() string  { return "memory" }
func (a Addr) String() string { return string(a) }

type datagram struct {
	payload []byte
	from    net.Addr
}

// Network connects endpoints by name.
type Network struct {
	mu        sync.RWMutex
	endpoints map[Addr]*Endpoint
	drop      func(from, to net.Addr, payload []byte) bool
}

func NewNetwork() *Network {
	return &Network{endpoints: make(map[Addr]*Endpoint)}
}

// SetDropFilter installs a predicate deciding which datagrams are lost.
func (n *Network) SetDropFilter(drop func(from, to net.Addr, payload []byte) bool) {
	n.mu.Lock()
	n.drop = drop
	n.mu.Unlock()
}

// Listen creates an endpoint named addr.
func (n *Network) Listen(addr string, poll time.Duration) (*Endpoint, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.endpoints[Addr(addr)]; ok {
		return nil, fmt.Errorf("%w: %s in use", protocol.ErrBindFailed, addr)
	}
	if poll <= 0 {
		poll = protocol.DefaultPollInterval
	}
	e := &Endpoint{
		network: n,
		addr:    Addr(addr),
		inbox:   make(chan datagram, 1024),
		poll:    poll,
	}
	n.endpoints[e.addr] = e
	return e, nil
}

func (n *Network) deliver(from Addr, to net.Addr, payload []byte) error {
	n.mu.RLock()
	target := n.endpoints[Addr(to.String())]
	drop := n.drop
	n.mu.RUnlock()

	if target == nil || target.closed.Load() {
		// unreachable peers lose datagrams silently, like UDP
		return nil
	}
	if drop != nil && drop(from, to, payload) {
		return nil
	}
	select {
	case target.inbox <- datagram{payload: append([]byte(nil), payload...), from: from}:
	default:
	}
	return nil
}

// Endpoint is one bound address on a Network.
type Endpoint struct {
	network *Network
	addr    Addr
	inbox   chan datagram
	poll    time.Duration
	closed  atomic.Bool
}

var _ protocol.Transport = (*Endpoint)(nil)

func (e *Endpoint) ReadFrom(ctx context.Context) ([]byte, net.Addr, error) {
	if e.closed.Load() {
		return nil, nil, protocol.ErrTransportClosed
	}
	timer := time.NewTimer(e.poll)
	defer timer.Stop()
	select {
	case d := <-e.inbox:
		return d.payload, d.from, nil
	case <-timer.C:
		return nil, nil, protocol.ErrNoPacket
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

func (e *Endpoint) WriteTo(payload []byte, addr net.Addr) error {
	if e.closed.Load() {
		return protocol.ErrTransportClosed
	}
	return e.network.deliver(e.addr, addr, payload)
}

func (e *Endpoint) LocalAddr() net.Addr { return e.addr }

func (e *Endpoint) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.network.mu.Lock()
	delete(e.network.endpoints, e.addr)
	e.network.mu.Unlock()
	return nil
}
