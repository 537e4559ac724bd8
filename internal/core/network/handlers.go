package network

import (
	"net"

	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

func (s *Session) handle(data []byte, from net.Addr) {
	s.packetsIn.Add(1)
	p, err := protocol.Unmarshal(data)
	if err != nil {
		s.decodeErrors.Add(1)
		s.logger.Warn("Malformed packet",
			log.String("from", from.String()),
			log.Int("size", len(data)),
			log.Error(err))
		// entries decoded before the fault are still applied
		if p == nil {
			return
		}
	}

	if s.cfg.Role == RoleServer {
		s.handleServer(p, from)
		return
	}
	if !protocol.SameAddr(from, s.cfg.ServerAddr) {
		s.logger.Debug("Packet from unknown sender dropped",
			log.String("from", from.String()),
			log.Stringer("packet", p.Type()))
		return
	}
	s.handleClient(p)
}

func (s *Session) handleServer(p protocol.Packet, from net.Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.roster.Find(from); c != nil {
		c.LastSeen = s.now()
	}

	switch pkt := p.(type) {
	case protocol.HandshakeRequest:
		s.onHandshake(pkt, from)
	case protocol.KeyInputs:
		s.onKeyInputs(pkt, from)
	case protocol.Signal:
		switch pkt.Kind {
		case protocol.PacketLeaveLobby:
			s.onLeave(from)
		case protocol.PacketSwitchWorldOkForMe:
			s.onSwitchedWorld(from)
		case protocol.PacketInitializeGameOkForMe:
			s.onInitializedGame(from)
		case protocol.PacketEndGameAcknowledged:
			s.logger.Debug("End of game acknowledged", log.String("from", from.String()))
		default:
			s.ignore(p, from)
		}
	default:
		s.ignore(p, from)
	}
}

func (s *Session) handleClient(p protocol.Packet) {
	switch pkt := p.(type) {
	case protocol.HandshakeResponse:
		s.onHandshakeResponse(pkt)
	case protocol.ClientIndependentInitialization:
		s.logger.Debug("Slot assigned", log.Int32("slot", pkt.Slot))
		s.hand(Inbound{Kind: InboundOwnSlot, Slot: int(pkt.Slot)})
	case protocol.InitializeGame:
		s.hand(Inbound{Kind: InboundPlayerCount, Count: int(pkt.PlayerCount)})
		s.hand(Inbound{Kind: InboundUpdate, Update: protocol.ClientUpdate{
			Kind:     protocol.UpdateAddComponents,
			Entities: pkt.Entities,
		}})
		s.logger.Info("Game initialized",
			log.Int32("players", pkt.PlayerCount),
			log.Int("entities", len(pkt.Entities)))
		s.send(protocol.Signal{Kind: protocol.PacketInitializeGameOkForMe}, s.cfg.ServerAddr)
	case protocol.ClientUpdate:
		if pkt.Len() > 0 {
			s.hand(Inbound{Kind: InboundUpdate, Update: pkt})
		}
	case protocol.Signal:
		switch pkt.Kind {
		case protocol.PacketSwitchWorld:
			s.state.Store(int32(StateAwaitingWorldSwitch))
			s.hand(Inbound{Kind: InboundSwitchWorld})
			s.send(protocol.Signal{Kind: protocol.PacketSwitchWorldOkForMe}, s.cfg.ServerAddr)
		case protocol.PacketLaunchGame:
			if s.gameHasStarted.CompareAndSwap(false, true) {
				s.state.Store(int32(StateInGame))
				s.hand(Inbound{Kind: InboundLaunch})
				s.logger.Info("Game launched")
			}
		case protocol.PacketEndGame:
			s.needToReset.Store(true)
			s.send(protocol.Signal{Kind: protocol.PacketEndGameAcknowledged}, s.cfg.ServerAddr)
		case protocol.PacketLeaveLobbyResponse:
			s.state.Store(int32(StateDisconnected))
			s.left.Store(true)
		default:
			s.ignore(p, s.cfg.ServerAddr)
		}
	default:
		s.ignore(p, s.cfg.ServerAddr)
	}
}

func (s *Session) onHandshake(pkt protocol.HandshakeRequest, from net.Addr) {
	if s.roster.Find(from) != nil {
		s.send(protocol.HandshakeResponse{Accepted: true}, from)
		return
	}
	switch {
	case s.roster.Len() >= s.cfg.LobbyCapacity:
		s.logger.Info("Handshake rejected",
			log.String("from", from.String()),
			log.Error(ErrLobbyFull))
		s.send(protocol.HandshakeResponse{Accepted: false}, from)
		return
	case s.readyToStart.Load() || s.gameHasStarted.Load():
		s.logger.Info("Handshake rejected, game in progress", log.String("from", from.String()))
		s.send(protocol.HandshakeResponse{Accepted: false}, from)
		return
	}

	s.roster.Add(from, pkt.IsHost, s.now())
	s.logger.Info("Client joined",
		log.String("from", from.String()),
		log.Bool("is_host", pkt.IsHost),
		log.Int("lobby_size", s.roster.Len()))
	s.send(protocol.HandshakeResponse{Accepted: true}, from)
}

func (s *Session) onLeave(from net.Addr) {
	removed := s.roster.Remove(from)
	s.send(protocol.Signal{Kind: protocol.PacketLeaveLobbyResponse}, from)
	if !removed {
		return
	}
	s.logger.Info("Client left", log.String("from", from.String()), log.Int("lobby_size", s.roster.Connected()))

	switch {
	case !s.readyToStart.Load() && !s.gameHasStarted.Load():
	case s.roster.Connected() == 0:
		s.logger.Info("Every client left the game")
		s.needToReset.Store(true)
	case s.gameHasStarted.Load():
		if s.roster.IsStarted() && s.roster.AllDead() {
			s.endGame(s.roster.Addrs())
		}
	default:
		// the leaver may have been the last one the barrier or the launch
		// was waiting for
		s.completeBarrier()
		s.launch()
	}
}

func (s *Session) onSwitchedWorld(from net.Addr) {
	c := s.roster.Find(from)
	if c == nil {
		s.logger.Debug("World switch from unknown peer", log.String("from", from.String()))
		return
	}
	c.HasSwitchedWorld = true
	c.State = ClientInGame
	s.roster.AssignSlot(c)

	// every acknowledged peer is told its slot again on each ack
	for _, peer := range s.roster.Acknowledged() {
		s.send(protocol.ClientIndependentInitialization{Slot: int32(peer.Slot)}, peer.Addr)
	}

	s.completeBarrier()
}

// completeBarrier hands the barrier to the game loop once every member has
// switched world. It fires at most once per game.
func (s *Session) completeBarrier() {
	if !s.readyToStart.Load() || s.barrierDone.Load() || !s.roster.AllSwitchedWorld() {
		return
	}
	s.barrierDone.Store(true)
	s.logger.Info("Every client switched world", log.Int("players", s.roster.Len()))
	s.hand(Inbound{Kind: InboundBarrierComplete, Count: s.roster.Len()})
}

func (s *Session) onInitializedGame(from net.Addr) {
	c := s.roster.Find(from)
	if c == nil {
		return
	}
	c.IsInitialized = true

	if s.gameHasStarted.Load() {
		// the peer missed LaunchGame
		s.send(protocol.Signal{Kind: protocol.PacketLaunchGame}, from)
		return
	}
	s.launch()
}

// launch starts the game once every connected member acknowledged
// InitializeGame.
func (s *Session) launch() {
	if !s.barrierDone.Load() || s.gameHasStarted.Load() || !s.roster.AllInitializedGame() {
		return
	}
	for _, addr := range s.roster.Addrs() {
		s.send(protocol.Signal{Kind: protocol.PacketLaunchGame}, addr)
	}
	s.gameHasStarted.Store(true)
	s.hand(Inbound{Kind: InboundLaunch})
	s.logger.Info("Game launched", log.Int("players", s.roster.Connected()))
}

func (s *Session) onKeyInputs(pkt protocol.KeyInputs, from net.Addr) {
	if !s.gameHasStarted.Load() || len(pkt.Events) == 0 {
		return
	}
	c := s.roster.Find(from)
	if c == nil || c.Slot == NoSlot {
		s.logger.Debug("Inputs from unknown peer", log.String("from", from.String()))
		return
	}
	s.hand(Inbound{Kind: InboundInputs, Slot: c.Slot, Events: pkt.Events})
}

func (s *Session) ignore(p protocol.Packet, from net.Addr) {
	switch p.Type() {
	case protocol.PacketHeartbeat, protocol.PacketError, protocol.PacketErrorAcknowledged,
		protocol.PacketPlayerDisconnected, protocol.PacketClientUpdateACK, protocol.PacketGlobalState,
		protocol.PacketPlayerAction, protocol.PacketActionOutcome:
		s.logger.Debug("Reserved packet ignored",
			log.Stringer("packet", p.Type()),
			log.String("from", from.String()))
	default:
		s.logger.Warn("Unexpected packet ignored",
			log.Stringer("packet", p.Type()),
			log.String("from", from.String()))
	}
}

func (s *Session) onHandshakeResponse(pkt protocol.HandshakeResponse) {
	if s.State() != StateAwaitingHandshake {
		return
	}
	if !pkt.Accepted {
		s.logger.Warn("Handshake rejected")
		s.state.Store(int32(StateDisconnected))
		s.rejected.Store(true)
		return
	}
	s.state.Store(int32(StateInLobby))
	s.logger.Info("Joined lobby", log.String("server", s.cfg.ServerAddr.String()))
}
