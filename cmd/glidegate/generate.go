package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/glidegate/internal/dsl/syntax"
	"github.com/atlanticdynamic/glidegate/internal/fancy"
	"github.com/atlanticdynamic/glidegate/internal/nlgen"
)

var generateCmd = &cli.Command{
	Name:      "generate",
	Usage:     "Translate a plain-English request into a query script",
	ArgsUsage: "<request>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		request := strings.Join(cmd.Args().Slice(), " ")
		if request == "" {
			return cli.Exit("a request is required, e.g. glidegate generate show all incidents", 1)
		}

		script, err := nlgen.New().Generate(request)
		if err != nil {
			return cli.Exit(fmt.Errorf("generation failed: %w", err), 1)
		}

		fmt.Println(fancy.GeneratedScript(script, syntax.New().Validate(script)))
		return nil
	},
}
