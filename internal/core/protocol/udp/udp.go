// Package udp implements protocol.Transport over a plain UDP socket.
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/zeusync/deltasync/internal/core/protocol"
)

var _ protocol.Transport = (*Transport)(nil)

// Transport owns one UDP socket. Reads use a short deadline so the caller can
// observe cancellation between packets.
type Transport struct {
	conn   *net.UDPConn
	poll   time.Duration
	buf    []byte
	closed atomic.Bool
}

// Listen binds addr ("host:port", port 0 for an ephemeral port).
func Listen(addr string, poll time.Duration) (*Transport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", protocol.ErrBindFailed, addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", protocol.ErrBindFailed, addr, err)
	}
	if poll <= 0 {
		poll = protocol.DefaultPollInterval
	}
	return &Transport{
		conn: conn,
		poll: poll,
		buf:  make([]byte, protocol.MaxDatagramSize),
	}, nil
}

// ResolveAddr parses a peer address for WriteTo.
func ResolveAddr(addr string) (net.Addr, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", protocol.ErrDialFailed, addr, err)
	}
	return udpAddr, nil
}

func (t *Transport) ReadFrom(ctx context.Context) ([]byte, net.Addr, error) {
	if t.closed.Load() {
		return nil, nil, protocol.ErrTransportClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(t.poll)); err != nil {
		return nil, nil, t.mapErr(err)
	}
	n, addr, err := t.conn.ReadFromUDP(t.buf)
	if err != nil {
		return nil, nil, t.mapErr(err)
	}
	out := make([]byte, n)
	copy(out, t.buf[:n])
	return out, addr, nil
}

func (t *Transport) WriteTo(payload []byte, addr net.Addr) error {
	if t.closed.Load() {
		return protocol.ErrTransportClosed
	}
	if len(payload) > protocol.MaxDatagramSize {
		return fmt.Errorf("%w: %d bytes", protocol.ErrPacketTooLarge, len(payload))
	}
	_, err := t.conn.WriteTo(payload, addr)
	return t.mapErr(err)
}

func (t *Transport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.conn.Close()
}

func (t *Transport) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return protocol.ErrNoPacket
	}
	if errors.Is(err, net.ErrClosed) || t.closed.Load() {
		return protocol.ErrTransportClosed
	}
	return err
}
