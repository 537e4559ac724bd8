package server

import "errors"

var (
	ErrUnauthorized          = errors.New("monitor: unauthorized")
	ErrMonitorNotListening   = errors.New("monitor: not listening")
	ErrMonitorAlreadyRunning = errors.New("monitor: already running")
	ErrListenerFailed        = errors.New("monitor: failed to create listener")
)
