package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/glidegate/internal/config"
	"github.com/atlanticdynamic/glidegate/internal/dsl/catalog"
	"github.com/atlanticdynamic/glidegate/internal/dsl/screener"
	"github.com/atlanticdynamic/glidegate/internal/dsl/syntax"
	"github.com/atlanticdynamic/glidegate/internal/fancy"
)

var validateCmd = &cli.Command{
	Name:      "validate",
	Usage:     "Validate a script without executing it",
	ArgsUsage: "[script file, or - for stdin]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to TOML configuration file (for custom security patterns)",
			Aliases: []string{"c"},
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		script, err := readScript(cmd)
		if err != nil {
			return cli.Exit(err, 1)
		}

		cat := catalog.Default()
		var syntaxOpts []syntax.Option
		if configPath := cmd.String("config"); configPath != "" {
			cfg, err := config.NewFromFilePath(configPath)
			if err != nil {
				return cli.Exit(fmt.Errorf("failed to load config: %w", err), 1)
			}
			if cat, err = cfg.Catalog(); err != nil {
				return cli.Exit(err, 1)
			}
			if cfg.Security.MaxScriptLength > 0 {
				syntaxOpts = append(syntaxOpts, syntax.WithMaxScriptLength(cfg.Security.MaxScriptLength))
			}
		}

		verdict := screener.New(cat).Screen(script)
		result := syntax.New(syntaxOpts...).Validate(script)

		fmt.Println(fancy.ValidationReport(verdict, result))

		if !verdict.Safe || !result.Valid {
			return cli.Exit("", 1)
		}
		return nil
	},
}
