// Package server assembles the HTTP listener that exposes the MCP endpoint
// and runs it under a supervisor until the context is canceled.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/atlanticdynamic/glidegate/internal/server/mcp"
)

// Config describes one server instance.
type Config struct {
	// ListenAddr is the host:port the HTTP listener binds to.
	ListenAddr string

	// MCPPath is the route the MCP endpoint is mounted on. Defaults to /mcp.
	MCPPath string

	MCP *mcp.Config
}

// Validate checks the server config before any listener is created.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.ListenAddr == "" {
		return ErrMissingListenAddr
	}
	if c.MCP == nil {
		return ErrMissingMCPConfig
	}
	return c.MCP.Validate()
}

func (c *Config) mcpPath() string {
	if c.MCPPath != "" {
		return c.MCPPath
	}
	return "/mcp"
}

// Run starts the server and blocks until ctx is canceled or a runnable
// fails.
func Run(ctx context.Context, logger *slog.Logger, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	logHandler := logger.Handler()

	mcpHandler, err := mcp.Handler(cfg.MCP)
	if err != nil {
		return fmt.Errorf("failed to create MCP handler: %w", err)
	}

	configCallback := func() (*httpserver.Config, error) {
		routes, err := buildRoutes(cfg.mcpPath(), mcpHandler, cfg.MCP.ServerName)
		if err != nil {
			return nil, err
		}
		return httpserver.NewConfig(cfg.ListenAddr, routes)
	}

	httpRunner, err := httpserver.NewRunner(
		httpserver.WithConfigCallback(configCallback),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP listener runner: %w", err)
	}

	super, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(logHandler),
		supervisor.WithRunnables(httpRunner),
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}

	logger.Info("Server starting",
		"listen", cfg.ListenAddr,
		"mcp_path", cfg.mcpPath())
	if err := super.Run(); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}

func buildRoutes(mcpPath string, mcpHandler http.Handler, serverName string) (httpserver.Routes, error) {
	mcpRoute, err := httpserver.NewRouteFromHandlerFunc("mcp", mcpPath, mcpHandler.ServeHTTP)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP route: %w", err)
	}

	healthRoute, err := httpserver.NewRouteFromHandlerFunc("healthz", "/healthz", healthzHandler(serverName))
	if err != nil {
		return nil, fmt.Errorf("failed to create health route: %w", err)
	}

	return httpserver.Routes{*mcpRoute, *healthRoute}, nil
}

func healthzHandler(serverName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"server": serverName,
		})
	}
}
