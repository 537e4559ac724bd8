// Command deltasync runs a server, a client, or both in one process (solo),
// playing the demo game over the delta-sync protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/deltasync/internal/config"
	"github.com/zeusync/deltasync/internal/core/network"
	"github.com/zeusync/deltasync/internal/engine"
	"github.com/zeusync/deltasync/internal/injector"
	"github.com/zeusync/deltasync/internal/server"
)

// exitFailure is the status of a process that could not start.
const exitFailure = 84

type flags struct {
	config    string
	role      string
	addr      string
	server    string
	transport string
	logLevel  string
	monitor   string
	profile   string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("deltasync", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "path to a YAML config file")
	fs.StringVar(&f.role, "role", "", "server, client or solo")
	fs.StringVar(&f.addr, "addr", "", "address the server binds")
	fs.StringVar(&f.server, "server", "", "server address a client joins")
	fs.StringVar(&f.transport, "transport", "", "udp or quic")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.monitor, "monitor", "", "enable the monitor on this address")
	fs.StringVar(&f.profile, "profile", "", "cpu or mem")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	switch f.profile {
	case "", "cpu", "mem":
	default:
		return flags{}, fmt.Errorf("unknown profile mode %q", f.profile)
	}
	return f, nil
}

func loadConfig(f flags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.config != "" {
		loaded, err := config.Load(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.role != "" {
		cfg.Network.Role = f.role
	}
	if f.addr != "" {
		cfg.Network.Address = f.addr
	}
	if f.server != "" {
		cfg.Network.ServerAddress = f.server
	}
	if f.transport != "" {
		cfg.Network.Transport = f.transport
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.monitor != "" {
		cfg.Monitor.Enabled = true
		cfg.Monitor.Address = f.monitor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "deltasync:", err)
		os.Exit(exitFailure)
	}

	switch f.profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f); err != nil {
		fmt.Fprintln(os.Stderr, "deltasync:", err)
		stop()
		os.Exit(exitFailure)
	}
}

// run builds every node before starting any of them, so a bad config or a
// failed bind aborts the process before the first frame.
func run(ctx context.Context, f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	nodes, cleanup, err := buildNodes(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var services []engine.Service
	if cfg.Monitor.Enabled {
		sources := make([]server.StatusSource, 0, len(nodes))
		for _, n := range nodes {
			sources = append(sources, n.Engine)
		}
		monitor := server.NewMonitor(server.Config{
			Address:      cfg.Monitor.Address,
			PushInterval: cfg.Monitor.PushInterval,
			Token:        cfg.Monitor.Token,
		}, nodes[0].Logger, sources...)
		if err := monitor.Listen(); err != nil {
			return err
		}
		services = append(services, monitor)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, n := range nodes {
		var extra []engine.Service
		if i == 0 {
			extra = services
		}
		runner := n.Runner(extra...)
		g.Go(func() error { return runner.Run(ctx) })
	}
	return g.Wait()
}

// buildNodes returns the nodes of the configured role. Solo mode runs a
// server and min_players clients joining it.
func buildNodes(ctx context.Context, cfg *config.Config) ([]*injector.Node, func(), error) {
	var (
		nodes    []*injector.Node
		cleanups []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	add := func(c *config.Config, role network.Role) (*injector.Node, error) {
		n, fn, err := injector.InitializeNode(ctx, c, role)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		cleanups = append(cleanups, fn)
		return n, nil
	}

	switch cfg.Network.Role {
	case config.RoleServer:
		_, err := add(cfg, network.RoleServer)
		if err != nil {
			return nil, nil, err
		}
	case config.RoleClient:
		_, err := add(cfg, network.RoleClient)
		if err != nil {
			return nil, nil, err
		}
	case config.RoleSolo:
		srv, err := add(cfg, network.RoleServer)
		if err != nil {
			return nil, nil, err
		}
		clientCfg := *cfg
		clientCfg.Network.ServerAddress = srv.Transport.LocalAddr().String()
		for range cfg.Engine.MinPlayers {
			if _, err := add(&clientCfg, network.RoleClient); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
	default:
		return nil, nil, fmt.Errorf("%w: network.role %q", config.ErrInvalidConfig, cfg.Network.Role)
	}
	return nodes, cleanup, nil
}
