package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/glidegate/internal/nlgen"
	"github.com/atlanticdynamic/glidegate/internal/server"
	"github.com/atlanticdynamic/glidegate/internal/server/mcp"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Start the MCP server",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Usage:    "Path to TOML configuration file",
			Aliases:  []string{"c"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "listen",
			Usage:   "Override the listen address from the config file",
			Aliases: []string{"l"},
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		p, err := buildPipeline(cmd.String("config"))
		if err != nil {
			return cli.Exit(err, 1)
		}

		listenAddr := p.cfg.Listen
		if addr := cmd.String("listen"); addr != "" {
			listenAddr = addr
		}

		serverCfg := &server.Config{
			ListenAddr: listenAddr,
			MCPPath:    p.cfg.MCPPath,
			MCP: &mcp.Config{
				ServerName:         "glidegate",
				ServerVersion:      cmd.Root().Version,
				Logger:             p.logger.With("component", "mcp"),
				Validator:          p.validator,
				Screener:           p.screener,
				Executor:           p.executor,
				Records:            p.records,
				Generator:          nlgen.New(),
				DefaultTimeout:     p.cfg.Timeout(),
				TestModeMaxResults: p.cfg.TestMode.MaxResults,
			},
		}

		if err := server.Run(ctx, p.logger, serverCfg); err != nil {
			return cli.Exit(fmt.Errorf("server failed: %w", err), 1)
		}
		return nil
	},
}
