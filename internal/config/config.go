// Package config holds the process configuration loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/deltasync/internal/core/network"
	"github.com/zeusync/deltasync/internal/core/observability/log"
)

const (
	RoleServer = "server"
	RoleClient = "client"
	RoleSolo   = "solo"

	TransportUDP  = "udp"
	TransportQUIC = "quic"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Log     log.Config    `json:"log" yaml:"log"`
	Network NetworkConfig `json:"network" yaml:"network"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Monitor MonitorConfig `json:"monitor" yaml:"monitor"`
}

type NetworkConfig struct {
	// Role is server, client or solo (a server and a client in one process).
	Role          string `json:"role" yaml:"role"`
	Address       string `json:"address" yaml:"address"`
	ServerAddress string `json:"server_address,omitempty" yaml:"server_address,omitempty"`
	Transport     string `json:"transport" yaml:"transport"`
	IsHost        bool   `json:"is_host,omitempty" yaml:"is_host,omitempty"`

	PollInterval   time.Duration `json:"poll_interval" yaml:"poll_interval"`
	HandshakeRetry time.Duration `json:"handshake_retry" yaml:"handshake_retry"`
	LobbyCapacity  int           `json:"lobby_capacity" yaml:"lobby_capacity"`
}

type EngineConfig struct {
	TickRate      int    `json:"tick_rate" yaml:"tick_rate"`
	InitialWorld  string `json:"initial_world" yaml:"initial_world"`
	GameWorld     string `json:"game_world" yaml:"game_world"`
	GameOverWorld string `json:"game_over_world" yaml:"game_over_world"`
	// AutoStart starts the game once MinPlayers joined the lobby.
	AutoStart  bool          `json:"auto_start" yaml:"auto_start"`
	MinPlayers int           `json:"min_players" yaml:"min_players"`
	LobbyDelay time.Duration `json:"lobby_delay" yaml:"lobby_delay"`
}

type MonitorConfig struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	Address      string        `json:"address" yaml:"address"`
	PushInterval time.Duration `json:"push_interval" yaml:"push_interval"`
	// Token, when set, must be passed as ?token= to the feed.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: log.Config{
			Level:    "info",
			Encoding: "console",
		},
		Network: NetworkConfig{
			Role:           RoleServer,
			Address:        "127.0.0.1:4242",
			ServerAddress:  "127.0.0.1:4242",
			Transport:      TransportUDP,
			PollInterval:   20 * time.Millisecond,
			HandshakeRetry: network.DefaultHandshakeRetry,
			LobbyCapacity:  network.MaxLobbySize,
		},
		Engine: EngineConfig{
			TickRate:      60,
			InitialWorld:  "lobby",
			GameWorld:     "game",
			GameOverWorld: "GameOver",
			AutoStart:     true,
			MinPlayers:    2,
			LobbyDelay:    3 * time.Second,
		},
		Monitor: MonitorConfig{
			Enabled:      false,
			Address:      "127.0.0.1:8080",
			PushInterval: time.Second,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadYAML decodes r on top of DefaultConfig and validates the result.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level: %v", err)
	}

	switch c.Network.Role {
	case RoleServer, RoleSolo:
		if c.Network.Address == "" {
			invalid("network.address is required for role %s", c.Network.Role)
		}
	case RoleClient:
		if c.Network.ServerAddress == "" {
			invalid("network.server_address is required for role client")
		}
	default:
		invalid("network.role %q", c.Network.Role)
	}
	switch c.Network.Transport {
	case TransportUDP, TransportQUIC:
	default:
		invalid("network.transport %q", c.Network.Transport)
	}
	if c.Network.PollInterval <= 0 {
		invalid("network.poll_interval must be positive")
	}
	if c.Network.HandshakeRetry <= 0 {
		invalid("network.handshake_retry must be positive")
	}
	if c.Network.LobbyCapacity < 1 || c.Network.LobbyCapacity > network.MaxLobbySize {
		invalid("network.lobby_capacity must be within 1..%d", network.MaxLobbySize)
	}

	if c.Engine.TickRate <= 0 {
		invalid("engine.tick_rate must be positive")
	}
	if c.Engine.InitialWorld == "" || c.Engine.GameWorld == "" || c.Engine.GameOverWorld == "" {
		invalid("engine worlds must be named")
	}
	if c.Engine.LobbyDelay < 0 {
		invalid("engine.lobby_delay must not be negative")
	}
	if c.Engine.MinPlayers < 2 || c.Engine.MinPlayers > c.Network.LobbyCapacity {
		invalid("engine.min_players must be within 2..lobby_capacity")
	}

	if c.Monitor.Enabled {
		if c.Monitor.Address == "" {
			invalid("monitor.address is required when enabled")
		}
		if c.Monitor.PushInterval <= 0 {
			invalid("monitor.push_interval must be positive")
		}
	}
	return errors.Join(errs...)
}

// TickInterval is the frame period derived from TickRate.
func (e EngineConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(e.TickRate)
}
