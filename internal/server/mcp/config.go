package mcp

import (
	"errors"
	"log/slog"
	"time"

	"github.com/atlanticdynamic/glidegate/internal/dsl/executor"
	"github.com/atlanticdynamic/glidegate/internal/dsl/screener"
	"github.com/atlanticdynamic/glidegate/internal/dsl/syntax"
	"github.com/atlanticdynamic/glidegate/internal/nlgen"
	"github.com/atlanticdynamic/glidegate/internal/servicenow/records"
)

// Config assembles the collaborators the MCP tools are built from.
type Config struct {
	// ServerName and ServerVersion identify this server to MCP clients.
	ServerName    string
	ServerVersion string

	Logger *slog.Logger

	Validator *syntax.Validator
	Screener  *screener.Screener
	Executor  *executor.Executor
	Records   *records.Service
	Generator *nlgen.Generator

	// DefaultTimeout is used for script execution when the caller does not
	// pass timeout_seconds.
	DefaultTimeout time.Duration

	// TestModeMaxResults bounds test mode results. Zero means the executor
	// default.
	TestModeMaxResults int
}

// Validate checks the config is complete enough to build a server.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}

	var errs []error
	if c.ServerName == "" {
		errs = append(errs, ErrMissingServerName)
	}
	if c.Validator == nil {
		errs = append(errs, ErrMissingValidator)
	}
	if c.Screener == nil {
		errs = append(errs, ErrMissingScreener)
	}
	if c.Executor == nil {
		errs = append(errs, ErrMissingExecutor)
	}
	if c.Records == nil {
		errs = append(errs, ErrMissingRecords)
	}
	return errors.Join(errs...)
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default().WithGroup("mcp")
}
