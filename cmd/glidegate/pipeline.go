package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/glidegate/internal/config"
	"github.com/atlanticdynamic/glidegate/internal/dsl/catalog"
	"github.com/atlanticdynamic/glidegate/internal/dsl/executor"
	"github.com/atlanticdynamic/glidegate/internal/dsl/screener"
	"github.com/atlanticdynamic/glidegate/internal/dsl/syntax"
	"github.com/atlanticdynamic/glidegate/internal/logging"
	"github.com/atlanticdynamic/glidegate/internal/logging/writers"
	"github.com/atlanticdynamic/glidegate/internal/servicenow"
	"github.com/atlanticdynamic/glidegate/internal/servicenow/records"
)

// pipeline bundles everything built from one config file.
type pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	catalog   *catalog.Catalog
	screener  *screener.Screener
	validator *syntax.Validator
	executor  *executor.Executor
	records   *records.Service
}

// buildPipeline loads the config and wires the full component stack.
func buildPipeline(configPath string) (*pipeline, error) {
	cfg, err := config.NewFromFilePath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}

	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	client, err := servicenow.New(servicenow.Config{
		BaseURL:    cfg.Instance.URL,
		Username:   cfg.Instance.Username,
		Password:   cfg.Instance.Password,
		Timeout:    cfg.Timeout(),
		ScriptPath: cfg.Instance.ScriptPath,
		Logger:     logger.With("component", "servicenow"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create instance client: %w", err)
	}

	exec, err := executor.New(client,
		executor.WithCatalog(cat),
		executor.WithLogger(logger.With("component", "executor")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	recordSvc, err := records.NewService(client, logger.With("component", "records"))
	if err != nil {
		return nil, fmt.Errorf("failed to create record service: %w", err)
	}

	var syntaxOpts []syntax.Option
	if cfg.Security.MaxScriptLength > 0 {
		syntaxOpts = append(syntaxOpts, syntax.WithMaxScriptLength(cfg.Security.MaxScriptLength))
	}

	return &pipeline{
		cfg:       cfg,
		logger:    logger,
		catalog:   cat,
		screener:  screener.New(cat),
		validator: syntax.New(syntaxOpts...),
		executor:  exec,
		records:   recordSvc,
	}, nil
}

// buildLogger configures and installs the default logger per the config.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	writer, err := writers.CreateWriter(cfg.LogOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to create log writer: %w", err)
	}

	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON.String() {
		handler = logging.SetupHandlerJSON(cfg.LogLevel, writer)
	} else {
		handler = logging.SetupHandlerText(cfg.LogLevel, writer)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

// readScript returns script text from the first positional argument, or from
// stdin when the argument is missing or "-".
func readScript(cmd *cli.Command) (string, error) {
	path := cmd.Args().Get(0)
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read script from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
