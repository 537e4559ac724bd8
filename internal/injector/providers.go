// Package injector assembles a node (transport, session and engine) from the
// process configuration. The wiring is generated by google/wire from
// InitializeNode in wire.go.
package injector

import (
	"context"
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/deltasync/internal/config"
	"github.com/zeusync/deltasync/internal/core/components"
	"github.com/zeusync/deltasync/internal/core/network"
	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
	"github.com/zeusync/deltasync/internal/core/protocol/quic"
	"github.com/zeusync/deltasync/internal/core/protocol/udp"
	"github.com/zeusync/deltasync/internal/demo"
	"github.com/zeusync/deltasync/internal/engine"
)

// ClientBindAddress lets the system pick the client's local port.
const ClientBindAddress = ":0"

// ProviderSet builds a Node from a config and a role.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideSessionConfig,
	ProvideSession,
	ProvideTransport,
	ProvideEngine,
	NewNode,
)

// Node is one participant: a server or a client.
type Node struct {
	Role      network.Role
	Engine    *engine.Context
	Session   *network.Session
	Transport protocol.Transport
	Logger    log.Log
}

func NewNode(role network.Role, c *engine.Context, s *network.Session, tr protocol.Transport, logger log.Log) *Node {
	return &Node{Role: role, Engine: c, Session: s, Transport: tr, Logger: logger}
}

// Runner joins the node's session and frame loop with extra services.
func (n *Node) Runner(services ...engine.Service) *engine.Runner {
	return engine.NewRunner(n.Engine, n.Transport, services...)
}

// ProvideLogger builds the node logger, tagged with its role.
func ProvideLogger(cfg *config.Config, role network.Role) (log.Log, error) {
	logger, err := log.NewWithConfig(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(log.String("node", role.String())), nil
}

func ProvideSessionConfig(cfg *config.Config, role network.Role) (network.Config, error) {
	nc := network.Config{
		Role:           role,
		IsHost:         cfg.Network.IsHost,
		HandshakeRetry: cfg.Network.HandshakeRetry,
		LobbyCapacity:  cfg.Network.LobbyCapacity,
	}
	if role == network.RoleClient {
		addr, err := udp.ResolveAddr(cfg.Network.ServerAddress)
		if err != nil {
			return network.Config{}, err
		}
		nc.ServerAddr = addr
	}
	return nc, nil
}

func ProvideSession(nc network.Config, logger log.Log) (*network.Session, error) {
	return network.NewSession(nc, logger)
}

// ProvideTransport binds the server address, or an ephemeral port for a
// client. A QUIC client dials the server before returning.
func ProvideTransport(ctx context.Context, cfg *config.Config, nc network.Config, logger log.Log) (protocol.Transport, func(), error) {
	poll := cfg.Network.PollInterval
	var (
		tr  protocol.Transport
		err error
	)
	switch {
	case cfg.Network.Transport == config.TransportQUIC && nc.Role == network.RoleServer:
		tlsConfig, tlsErr := quic.GenerateSelfSignedTLS()
		if tlsErr != nil {
			return nil, nil, tlsErr
		}
		tr, err = quic.Listen(cfg.Network.Address, tlsConfig, poll, logger)
	case cfg.Network.Transport == config.TransportQUIC:
		tr, err = quic.Dial(ctx, nc.ServerAddr.String(), quic.ClientTLS(), poll, logger)
	case nc.Role == network.RoleServer:
		tr, err = udp.Listen(cfg.Network.Address, poll)
	default:
		tr, err = udp.Listen(ClientBindAddress, poll)
	}
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tr.Close(); err != nil {
			logger.Warn("Transport close failed", log.Error(err))
		}
	}
	return tr, cleanup, nil
}

// ProvideEngine builds the engine context and installs the demo game.
func ProvideEngine(cfg *config.Config, role network.Role, s *network.Session, logger log.Log) (*engine.Context, error) {
	reg, err := components.NewRegistry()
	if err != nil {
		return nil, err
	}
	ec := engine.DefaultConfig()
	ec.Name = role.String()
	ec.TickRate = cfg.Engine.TickRate
	ec.InitialWorld = cfg.Engine.InitialWorld
	ec.GameWorld = cfg.Engine.GameWorld
	ec.GameOverWorld = cfg.Engine.GameOverWorld
	ec.AutoStart = cfg.Engine.AutoStart
	ec.MinPlayers = cfg.Engine.MinPlayers
	ec.LobbyDelay = cfg.Engine.LobbyDelay

	c, err := engine.NewContext(ec, reg, s, logger)
	if err != nil {
		return nil, err
	}
	opts := demo.DefaultOptions()
	opts.Autopilot = role == network.RoleClient
	opts.RenderEvery = uint64(cfg.Engine.TickRate)
	if err := demo.Install(c, opts); err != nil {
		return nil, err
	}
	return c, nil
}
