// Package quic carries session datagrams over QUIC unreliable datagrams
// (RFC 9221). Each peer is one QUIC connection; the transport exposes them as
// a single packet socket addressed by the peer's remote address.
package quic

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

const (
	DefaultIdleTimeout = 30 * time.Second
	DefaultKeepAlive   = 5 * time.Second

	inboxSize = 1024
)

var _ protocol.Transport = (*Transport)(nil)

type datagram struct {
	payload []byte
	from    net.Addr
}

// Transport multiplexes QUIC connections behind protocol.Transport.
type Transport struct {
	listener *quic.Listener
	local    net.Addr
	poll     time.Duration
	logger   log.Log

	mu    sync.RWMutex
	conns map[string]*quic.Conn

	inbox  chan datagram
	closed atomic.Bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func config() *quic.Config {
	return &quic.Config{
		EnableDatagrams: true,
		MaxIdleTimeout:  DefaultIdleTimeout,
		KeepAlivePeriod: DefaultKeepAlive,
	}
}

func newTransport(poll time.Duration, logger log.Log) (*Transport, context.Context) {
	if poll <= 0 {
		poll = protocol.DefaultPollInterval
	}
	if logger == nil {
		logger = log.Provide()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Transport{
		poll:   poll,
		logger: logger.With(log.String("transport", "quic")),
		conns:  make(map[string]*quic.Conn),
		inbox:  make(chan datagram, inboxSize),
		cancel: cancel,
	}, ctx
}

// Listen accepts QUIC connections on addr until the transport is closed.
func Listen(addr string, tlsConfig *tls.Config, poll time.Duration, logger log.Log) (*Transport, error) {
	listener, err := quic.ListenAddr(addr, tlsConfig, config())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", protocol.ErrBindFailed, addr, err)
	}
	t, ctx := newTransport(poll, logger)
	t.listener = listener
	t.local = listener.Addr()

	t.wg.Add(1)
	go t.acceptLoop(ctx)

	t.logger.Info("QUIC listener started", log.String("addr", t.local.String()))
	return t, nil
}

// Dial connects to a QUIC server. The returned transport talks to that server
// only.
func Dial(ctx context.Context, addr string, tlsConfig *tls.Config, poll time.Duration, logger log.Log) (*Transport, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConfig, config())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", protocol.ErrDialFailed, addr, err)
	}
	t, loopCtx := newTransport(poll, logger)
	t.local = conn.LocalAddr()
	t.track(loopCtx, conn)

	t.logger.Info("QUIC connection established",
		log.String("local_addr", conn.LocalAddr().String()),
		log.String("remote_addr", conn.RemoteAddr().String()))
	return t, nil
}

// Peers returns the remote addresses of open connections.
func (t *Transport) Peers() []net.Addr {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]net.Addr, 0, len(t.conns))
	for _, c := range t.conns {
		out = append(out, c.RemoteAddr())
	}
	return out
}

func (t *Transport) acceptLoop(ctx context.Context) {
	defer t.wg.Done()
	for {
		conn, err := t.listener.Accept(ctx)
		if err != nil {
			if !t.closed.Load() {
				t.logger.Warn("Failed to accept QUIC connection", log.Error(err))
			}
			return
		}
		t.logger.Debug("QUIC connection accepted", log.String("remote_addr", conn.RemoteAddr().String()))
		t.track(ctx, conn)
	}
}

func (t *Transport) track(ctx context.Context, conn *quic.Conn) {
	key := conn.RemoteAddr().String()
	t.mu.Lock()
	t.conns[key] = conn
	t.mu.Unlock()

	t.wg.Add(1)
	go t.receiveLoop(ctx, key, conn)
}

func (t *Transport) receiveLoop(ctx context.Context, key string, conn *quic.Conn) {
	defer t.wg.Done()
	defer func() {
		t.mu.Lock()
		if t.conns[key] == conn {
			delete(t.conns, key)
		}
		t.mu.Unlock()
	}()

	from := conn.RemoteAddr()
	for {
		payload, err := conn.ReceiveDatagram(ctx)
		if err != nil {
			if !t.closed.Load() {
				t.logger.Debug("QUIC connection ended", log.String("remote_addr", key), log.Error(err))
			}
			return
		}
		select {
		case t.inbox <- datagram{payload: payload, from: from}:
		default:
			t.logger.Warn("QUIC inbox full, datagram dropped", log.String("remote_addr", key))
		}
	}
}

func (t *Transport) ReadFrom(ctx context.Context) ([]byte, net.Addr, error) {
	if t.closed.Load() {
		return nil, nil, protocol.ErrTransportClosed
	}
	timer := time.NewTimer(t.poll)
	defer timer.Stop()
	select {
	case d := <-t.inbox:
		return d.payload, d.from, nil
	case <-timer.C:
		return nil, nil, protocol.ErrNoPacket
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

func (t *Transport) WriteTo(payload []byte, addr net.Addr) error {
	if t.closed.Load() {
		return protocol.ErrTransportClosed
	}
	t.mu.RLock()
	conn := t.conns[addr.String()]
	t.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("%w: %s", protocol.ErrUnknownPeer, addr)
	}

	err := conn.SendDatagram(payload)
	var tooLarge *quic.DatagramTooLargeError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: %d bytes, limit %d", protocol.ErrPacketTooLarge, len(payload), tooLarge.MaxDatagramPayloadSize)
	}
	return err
}

func (t *Transport) LocalAddr() net.Addr { return t.local }

func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.cancel()

	t.mu.Lock()
	conns := make([]*quic.Conn, 0, len(t.conns))
	for _, c := range t.conns {
		conns = append(conns, c)
	}
	t.mu.Unlock()

	var all error
	for _, c := range conns {
		all = errors.Join(all, c.CloseWithError(0, "closed"))
	}
	if t.listener != nil {
		all = errors.Join(all, t.listener.Close())
	}
	t.wg.Wait()
	t.logger.Info("QUIC transport closed")
	return all
}
