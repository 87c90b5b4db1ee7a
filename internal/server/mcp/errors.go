package mcp

import "errors"

var (
	ErrNilConfig         = errors.New("MCP config cannot be nil")
	ErrMissingServerName = errors.New("server name is required")
	ErrMissingValidator  = errors.New("syntax validator is required")
	ErrMissingScreener   = errors.New("security screener is required")
	ErrMissingExecutor   = errors.New("executor is required")
	ErrMissingRecords    = errors.New("record service is required")
)
