package network

import "errors"

var (
	ErrLobbyFull          = errors.New("network: lobby full")
	ErrHandshakeRejected  = errors.New("network: handshake rejected by server")
	ErrNotReady           = errors.New("network: not enough players to start")
	ErrWrongRole          = errors.New("network: operation not available for this role")
	ErrAlreadyRunning     = errors.New("network: session already running")
	ErrNotRunning         = errors.New("network: session not running")
	ErrInvalidRole        = errors.New("network: invalid role")
	ErrMissingServerAddr  = errors.New("network: client requires a server address")
	ErrInvalidLobbyLimits = errors.New("network: lobby capacity out of range")
)
