package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// Version is set during build using ldflags
var Version = "dev"

func main() {
	app := &cli.Command{
		Name:    "glidegate",
		Version: Version,
		Usage:   "Validate, sanitize, and execute query scripts against a remote instance",
		Commands: []*cli.Command{
			versionCmd,
			serveCmd,
			validateCmd,
			runCmd,
			generateCmd,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
