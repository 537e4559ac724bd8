// Package network implements the lobby and replication protocol on top of a
// protocol.Transport.
//
// A Session has two sides. The network goroutine runs Serve: it owns the
// transport reads, answers control packets and hands everything that touches
// the World to the game goroutine through a mailbox. The game goroutine calls
// Drain once per frame, then SendDeltas on the server or AddEvent on a client.
package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/deltasync/internal/core/ecs"
	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
	"github.com/zeusync/deltasync/pkg/concurrent"
)

// Config configures a Session.
type Config struct {
	Role Role
	// ServerAddr is the server a client talks to. Packets from any other
	// address are dropped.
	ServerAddr net.Addr
	// IsHost is sent in the client's handshake.
	IsHost         bool
	HandshakeRetry time.Duration
	// LobbyCapacity bounds the roster; zero means MaxLobbySize.
	LobbyCapacity int
	InboundLimit  int
	InputLimit    int
}

func (c Config) withDefaults() Config {
	if c.HandshakeRetry <= 0 {
		c.HandshakeRetry = DefaultHandshakeRetry
	}
	if c.LobbyCapacity == 0 {
		c.LobbyCapacity = MaxLobbySize
	}
	if c.InboundLimit == 0 {
		c.InboundLimit = DefaultInboundLimit
	}
	if c.InputLimit == 0 {
		c.InputLimit = DefaultInputLimit
	}
	return c
}

// Validate checks role-specific requirements.
func (c Config) Validate() error {
	switch c.Role {
	case RoleServer:
	case RoleClient:
		if c.ServerAddr == nil {
			return ErrMissingServerAddr
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidRole, c.Role)
	}
	if c.LobbyCapacity < 0 || c.LobbyCapacity > MaxLobbySize {
		return fmt.Errorf("%w: %d", ErrInvalidLobbyLimits, c.LobbyCapacity)
	}
	return nil
}

type transportRef struct {
	protocol.Transport
}

type Session struct {
	cfg    Config
	id     uuid.UUID
	logger log.Log
	now    func() time.Time

	// mu guards roster.
	mu     sync.Mutex
	roster *Roster

	transport atomic.Pointer[transportRef]

	state          atomic.Int32
	gameHasStarted atomic.Bool
	readyToStart   atomic.Bool
	barrierDone    atomic.Bool
	needToReset    atomic.Bool
	rejected       atomic.Bool
	left           atomic.Bool

	inbound  *concurrent.Mailbox[Inbound]
	outbound *concurrent.Mailbox[protocol.InputEvent]

	packetsIn    atomic.Uint64
	packetsOut   atomic.Uint64
	decodeErrors atomic.Uint64

	// owned by the network goroutine
	lastHandshake time.Time

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

// NewSession validates cfg and creates an idle session.
func NewSession(cfg Config, logger log.Log) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Provide()
	}
	id := uuid.New()
	return &Session{
		cfg: cfg,
		id:  id,
		logger: logger.With(
			log.String("component", "session"),
			log.String("role", cfg.Role.String()),
			log.String("session_id", id.String()),
		),
		now:      time.Now,
		roster:   NewRoster(),
		inbound:  concurrent.NewMailbox[Inbound](cfg.InboundLimit),
		outbound: concurrent.NewMailbox[protocol.InputEvent](cfg.InputLimit),
	}, nil
}

func (s *Session) ID() uuid.UUID   { return s.id }
func (s *Session) Role() Role      { return s.cfg.Role }
func (s *Session) IsServer() bool  { return s.cfg.Role == RoleServer }
func (s *Session) Logger() log.Log { return s.logger }

func (s *Session) State() ConnState { return ConnState(s.state.Load()) }

func (s *Session) GameHasStarted() bool { return s.gameHasStarted.Load() }

func (s *Session) IsReadyToStart() bool { return s.readyToStart.Load() }

// NeedToReset reports that the game ended and the engine should reset.
func (s *Session) NeedToReset() bool { return s.needToReset.Load() }

// LocalAddr returns the bound address while serving.
func (s *Session) LocalAddr() net.Addr {
	if ref := s.transport.Load(); ref != nil {
		return ref.LocalAddr()
	}
	return nil
}

// CanStart reports whether enough peers joined for StartGame.
func (s *Session) CanStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.IsReadyToStart()
}

// PeerCount returns the number of connected members.
func (s *Session) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Connected()
}

// Serve runs the network loop on tr until ctx is cancelled, the transport is
// closed, a client's handshake is rejected or a client left the lobby.
// Cancellation is not an error.
func (s *Session) Serve(ctx context.Context, tr protocol.Transport) error {
	if !s.transport.CompareAndSwap(nil, &transportRef{tr}) {
		return ErrAlreadyRunning
	}
	defer s.transport.Store(nil)

	s.logger.Info("Session serving", log.String("addr", tr.LocalAddr().String()))
	if s.cfg.Role == RoleClient {
		s.rejected.Store(false)
		s.left.Store(false)
		s.state.Store(int32(StateAwaitingHandshake))
		s.sendHandshake()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.rejected.Load() {
			return ErrHandshakeRejected
		}
		if s.left.Load() {
			s.logger.Info("Left the lobby")
			return nil
		}

		data, from, err := tr.ReadFrom(ctx)
		switch {
		case err == nil:
			s.handle(data, from)
		case errors.Is(err, protocol.ErrNoPacket):
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		case errors.Is(err, protocol.ErrTransportClosed):
			if ctx.Err() != nil {
				return nil
			}
			return err
		default:
			// ICMP errors surface on the next read; the socket stays usable
			s.logger.Warn("Read failed", log.Error(err))
		}

		if s.cfg.Role == RoleClient {
			s.clientHousekeeping()
		}
	}
}

// Start runs Serve on a background goroutine.
func (s *Session) Start(ctx context.Context, tr protocol.Transport) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.done != nil {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		err := s.Serve(ctx, tr)
		s.runMu.Lock()
		s.runErr = err
		s.runMu.Unlock()
	}(s.done)
	return nil
}

// Stop cancels a loop started with Start and waits for it. It returns the
// loop's error.
func (s *Session) Stop() error {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.runMu.Unlock()
	if done == nil {
		return ErrNotRunning
	}
	cancel()
	<-done

	s.runMu.Lock()
	defer s.runMu.Unlock()
	err := s.runErr
	s.cancel, s.done, s.runErr = nil, nil, nil
	return err
}

// Drain returns everything the network goroutine handed over since the last
// call. The slice is valid until the next Drain.
func (s *Session) Drain() []Inbound {
	return s.inbound.Drain()
}

// AddEvent queues a local input event for the server. Events are only
// accepted on a client whose game has started.
func (s *Session) AddEvent(ev protocol.InputEvent) bool {
	if s.cfg.Role != RoleClient || !s.gameHasStarted.Load() {
		return false
	}
	return s.outbound.Push(ev)
}

// StartGame closes the lobby and asks every member to switch world.
func (s *Session) StartGame() error {
	if s.cfg.Role != RoleServer {
		return ErrWrongRole
	}
	s.mu.Lock()
	if !s.roster.IsReadyToStart() {
		s.mu.Unlock()
		return ErrNotReady
	}
	addrs := s.roster.Addrs()
	s.mu.Unlock()

	s.readyToStart.Store(true)
	s.logger.Info("Starting game", log.Int("players", len(addrs)))
	s.sendAll(protocol.Signal{Kind: protocol.PacketSwitchWorld}, addrs)
	return nil
}

// SendInitializeGame snapshots w and unicasts it to every member. The player
// count includes slots reserved by members who left during the barrier.
func (s *Session) SendInitializeGame(w *ecs.World) {
	s.mu.Lock()
	addrs := s.roster.Addrs()
	players := s.roster.Len()
	s.mu.Unlock()

	packet := protocol.InitializeGame{
		PlayerCount: int32(players),
		Entities:    Snapshot(w),
	}
	s.logger.Info("Initializing game",
		log.Int("players", players),
		log.Int("entities", len(packet.Entities)))
	s.sendAll(packet, addrs)
}

// SendDeltas builds this tick's updates and sends them to every member. It
// returns the number of update packets built.
func (s *Session) SendDeltas(w *ecs.World, deleted []ecs.EntityID) int {
	updates := BuildUpdates(w, deleted)
	if len(updates) == 0 {
		return 0
	}
	s.mu.Lock()
	addrs := s.roster.Addrs()
	s.mu.Unlock()

	for _, u := range updates {
		s.sendAll(u, addrs)
	}
	return len(updates)
}

// MarkDead records that the player in slot died. It reports whether every
// member of a started game is now dead.
func (s *Session) MarkDead(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.roster.BySlot(slot); c != nil {
		c.IsAlive = false
	}
	return s.roster.IsStarted() && s.roster.AllDead()
}

// SendGameOver tells every member the game ended and flags the local reset.
func (s *Session) SendGameOver() {
	s.mu.Lock()
	addrs := s.roster.Addrs()
	s.mu.Unlock()
	s.endGame(addrs)
}

func (s *Session) endGame(addrs []net.Addr) {
	s.logger.Info("Game over")
	s.sendAll(protocol.Signal{Kind: protocol.PacketEndGame}, addrs)
	s.needToReset.Store(true)
}

// Reset returns the session to the lobby after a game. Members stay in the
// roster with their per-game flags cleared; pending hand-offs are discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	s.roster.ResetGame()
	s.mu.Unlock()

	s.gameHasStarted.Store(false)
	s.readyToStart.Store(false)
	s.barrierDone.Store(false)
	s.needToReset.Store(false)
	s.inbound.Reset()
	s.outbound.Reset()
	if s.cfg.Role == RoleClient && s.State() != StateDisconnected {
		s.state.Store(int32(StateInLobby))
	}
	s.logger.Info("Session reset")
}

// Leave asks the server to drop this client from the lobby.
func (s *Session) Leave() error {
	if s.cfg.Role != RoleClient {
		return ErrWrongRole
	}
	if s.transport.Load() == nil {
		return ErrNotRunning
	}
	s.send(protocol.Signal{Kind: protocol.PacketLeaveLobby}, s.cfg.ServerAddr)
	return nil
}

// Status copies the session state for reporting.
func (s *Session) Status() Status {
	st := Status{
		ID:             s.id.String(),
		Role:           s.cfg.Role.String(),
		State:          s.State().String(),
		GameHasStarted: s.gameHasStarted.Load(),
		ReadyToStart:   s.readyToStart.Load(),
		NeedToReset:    s.needToReset.Load(),
		PacketsIn:      s.packetsIn.Load(),
		PacketsOut:     s.packetsOut.Load(),
		DecodeErrors:   s.decodeErrors.Load(),
		InboundDropped: s.inbound.Dropped(),
	}
	if s.cfg.Role == RoleServer {
		st.State = "serving"
	}
	if addr := s.LocalAddr(); addr != nil {
		st.LocalAddr = addr.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.roster.Clients() {
		st.Peers = append(st.Peers, PeerStatus{
			Addr:             c.Addr.String(),
			State:            c.State.String(),
			Slot:             c.Slot,
			IsHost:           c.IsHost,
			HasSwitchedWorld: c.HasSwitchedWorld,
			IsInitialized:    c.IsInitialized,
			IsAlive:          c.IsAlive,
			LastSeen:         c.LastSeen,
		})
	}
	return st
}

func (s *Session) clientHousekeeping() {
	if s.State() == StateAwaitingHandshake && s.now().Sub(s.lastHandshake) >= s.cfg.HandshakeRetry {
		s.sendHandshake()
	}
	if s.gameHasStarted.Load() {
		s.flushInputs()
	}
}

func (s *Session) sendHandshake() {
	s.lastHandshake = s.now()
	s.send(protocol.HandshakeRequest{IsHost: s.cfg.IsHost}, s.cfg.ServerAddr)
}

func (s *Session) flushInputs() {
	events := s.outbound.Drain()
	if len(events) == 0 {
		return
	}
	batch := make([]protocol.InputEvent, len(events))
	copy(batch, events)
	s.send(protocol.KeyInputs{Events: batch}, s.cfg.ServerAddr)
}

func (s *Session) send(p protocol.Packet, addr net.Addr) {
	ref := s.transport.Load()
	if ref == nil {
		s.logger.Debug("Send without transport", log.Stringer("packet", p.Type()))
		return
	}
	s.write(ref, protocol.Marshal(p), p.Type(), addr)
}

func (s *Session) sendAll(p protocol.Packet, addrs []net.Addr) {
	ref := s.transport.Load()
	if ref == nil || len(addrs) == 0 {
		return
	}
	payload := protocol.Marshal(p)
	for _, addr := range addrs {
		s.write(ref, payload, p.Type(), addr)
	}
}

func (s *Session) write(ref *transportRef, payload []byte, kind protocol.PacketType, addr net.Addr) {
	if err := ref.WriteTo(payload, addr); err != nil {
		s.logger.Warn("Send failed",
			log.Stringer("packet", kind),
			log.String("to", addr.String()),
			log.Error(err))
		return
	}
	s.packetsOut.Add(1)
}

func (s *Session) hand(item Inbound) {
	if !s.inbound.Push(item) {
		s.logger.Warn("Inbound mailbox full, item dropped", log.Stringer("kind", item.Kind))
	}
}
