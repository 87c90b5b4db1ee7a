package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/glidegate/internal/dsl/executor"
	"github.com/atlanticdynamic/glidegate/internal/fancy"
)

var runCmd = &cli.Command{
	Name:      "run",
	Usage:     "Execute a script against the configured instance",
	ArgsUsage: "[script file, or - for stdin]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Usage:    "Path to TOML configuration file",
			Aliases:  []string{"c"},
			Required: true,
		},
		&cli.BoolFlag{
			Name:    "test-mode",
			Usage:   "Wrap the script so results are truncated and writes are called out",
			Aliases: []string{"t"},
		},
		&cli.IntFlag{
			Name:  "max-results",
			Usage: "Maximum records returned in test mode",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Remote execution timeout (overrides the config value)",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Usage:   "Confirm execution of dangerous operations",
			Aliases: []string{"y"},
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		script, err := readScript(cmd)
		if err != nil {
			return cli.Exit(err, 1)
		}

		p, err := buildPipeline(cmd.String("config"))
		if err != nil {
			return cli.Exit(err, 1)
		}

		verdict := p.screener.Screen(script)
		if !verdict.Safe {
			fmt.Println(fancy.ValidationReport(verdict, p.validator.Validate(script)))
			return cli.Exit("script blocked by security screening", 1)
		}
		if len(verdict.DangerousOperations) > 0 && !cmd.Bool("yes") {
			return cli.Exit(fmt.Sprintf(
				"script contains dangerous operations (%s); pass --yes to execute",
				strings.Join(verdict.DangerousOperations, ", ")), 1)
		}

		opts := executor.Options{
			Timeout:  p.cfg.Timeout(),
			TestMode: cmd.Bool("test-mode"),
		}
		if d := cmd.Duration("timeout"); d > 0 {
			opts.Timeout = d
		}
		if opts.TestMode {
			opts.MaxResults = p.cfg.TestMode.MaxResults
			if n := cmd.Int("max-results"); n > 0 {
				opts.MaxResults = int(n)
			}
		}

		start := time.Now()
		result := p.executor.Execute(ctx, script, opts)
		p.logger.Debug("run finished", "elapsed", time.Since(start))

		fmt.Println(fancy.ExecutionSummary(result))

		if result.Data != nil {
			data, err := json.MarshalIndent(result.Data, "", "  ")
			if err != nil {
				return cli.Exit(fmt.Errorf("failed to render result data: %w", err), 1)
			}
			fmt.Println(string(data))
		}

		if !result.Success {
			return cli.Exit("", 1)
		}
		return nil
	},
}
