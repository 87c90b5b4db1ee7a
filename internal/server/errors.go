package server

import "errors"

var (
	ErrNilConfig         = errors.New("server config cannot be nil")
	ErrMissingListenAddr = errors.New("listen address is required")
	ErrMissingMCPConfig  = errors.New("MCP config is required")
)
