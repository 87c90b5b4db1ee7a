// Package executor orchestrates script execution: it gates scripts through
// the security screener, rewrites them for test mode, delegates to the
// remote interpreter, and normalizes whatever comes back.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atlanticdynamic/glidegate/internal/dsl/catalog"
	"github.com/atlanticdynamic/glidegate/internal/dsl/normalize"
	"github.com/atlanticdynamic/glidegate/internal/dsl/screener"
	"github.com/gofrs/uuid/v5"
)

// DefaultTestModeMaxResults caps array results in test mode when the caller
// does not supply a bound.
const DefaultTestModeMaxResults = 100

// RunRequest is handed to the remote interpreter. Timeout is advisory; the
// remote side is responsible for honoring it.
type RunRequest struct {
	Script  string
	Timeout time.Duration
}

// RunResponse is the remote interpreter's successful reply. Failures are
// reported through the error return of RunScript. ExecutionTime is the
// interpreter's own measurement; zero means the remote side did not report
// one and the pipeline falls back to local wall time.
type RunResponse struct {
	Result        any
	Logs          []string
	ExecutionTime time.Duration
}

// Runner is the remote execution collaborator boundary. This pipeline treats
// it as opaque and never interprets its failures beyond the message.
type Runner interface {
	RunScript(ctx context.Context, req RunRequest) (*RunResponse, error)
}

// Options controls a single execution.
type Options struct {
	// Timeout is passed through to the remote interpreter unchanged.
	Timeout time.Duration

	// TestMode wraps the script so unbounded reads are truncated and write
	// operations are called out in the logs.
	TestMode bool

	// MaxResults bounds array results in test mode. Defaults to
	// DefaultTestModeMaxResults; ignored outside test mode.
	MaxResults int
}

// Result is the caller-facing outcome. Exactly one of Data and Error is
// meaningful depending on Success.
type Result struct {
	Success       bool          `json:"success"`
	Data          any           `json:"data,omitempty"`
	Error         string        `json:"error,omitempty"`
	Logs          []string      `json:"logs,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	Truncated     bool          `json:"truncated,omitempty"`
	RecordCount   int           `json:"record_count,omitempty"`
}

// Executor is stateless across calls; concurrent executions share nothing
// but the immutable catalog.
type Executor struct {
	cat      *catalog.Catalog
	screen   *screener.Screener
	runner   Runner
	logger   *slog.Logger
	writeOps []writeOp
}

type writeOp struct {
	name string
	call *regexp.Regexp
}

// Option configures an Executor during construction.
type Option func(*Executor)

// WithCatalog overrides the default pattern catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(e *Executor) {
		e.cat = cat
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New builds an executor around the given remote runner.
func New(runner Runner, opts ...Option) (*Executor, error) {
	if runner == nil {
		return nil, ErrNilRunner
	}

	e := &Executor{runner: runner}
	for _, opt := range opts {
		opt(e)
	}
	if e.cat == nil {
		e.cat = catalog.Default()
	}
	if e.logger == nil {
		e.logger = slog.Default().WithGroup("executor")
	}
	e.screen = screener.New(e.cat)

	for _, name := range e.cat.WriteOperations() {
		e.writeOps = append(e.writeOps, writeOp{
			name: name,
			call: regexp.MustCompile(`(?i)\.\s*` + regexp.QuoteMeta(name) + `\s*\(`),
		})
	}
	return e, nil
}

// Execute runs the full pipeline. Every failure is terminal for this call
// and returned as data; nothing is retried.
func (e *Executor) Execute(ctx context.Context, script string, opts Options) Result {
	start := time.Now()

	fail := func(msg string) Result {
		return Result{
			Success:       false,
			Error:         msg,
			ExecutionTime: time.Since(start),
		}
	}

	if strings.TrimSpace(script) == "" {
		return fail("script is empty")
	}

	if n := utf8.RuneCountInString(script); n > e.cat.MaxScriptLength {
		return fail(fmt.Sprintf("script length %d exceeds the maximum of %d characters",
			n, e.cat.MaxScriptLength))
	}

	verdict := e.screen.Screen(script)
	if !verdict.Safe {
		return fail(strings.Join(verdict.Violations, "; "))
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultTestModeMaxResults
	}

	toRun := script
	if opts.TestMode {
		wrapped, err := WrapTestMode(script, maxResults)
		if err != nil {
			return fail(err.Error())
		}
		toRun = wrapped
	}

	executionID := uuid.Must(uuid.NewV4()).String()
	logger := e.logger.With("execution_id", executionID)
	logger.Debug("dispatching script",
		"test_mode", opts.TestMode,
		"dangerous_operations", verdict.DangerousOperations,
	)

	resp, err := e.runner.RunScript(ctx, RunRequest{Script: toRun, Timeout: opts.Timeout})
	if err != nil {
		logger.Warn("remote execution failed", "error", err)
		return fail(err.Error())
	}

	n := normalize.Normalize(resp.Result, opts.TestMode)

	logs := append([]string{}, resp.Logs...)
	logs = append(logs, n.Logs...)

	// Write warnings go to the front of the log, ahead of anything the
	// normalizer or the remote side produced.
	if opts.TestMode {
		if writes := e.detectWriteOperations(script); len(writes) > 0 {
			warning := fmt.Sprintf(
				"Test mode: script contains write operations (%s) that will persist changes",
				strings.Join(writes, ", "))
			logs = append([]string{warning}, logs...)
		}
	}

	// Prefer the interpreter's own timing when it reports one; local wall
	// time includes transport overhead.
	elapsed := time.Since(start)
	if resp.ExecutionTime > 0 {
		elapsed = resp.ExecutionTime
	}

	result := Result{
		Success:       true,
		Data:          n.Data,
		Logs:          logs,
		ExecutionTime: elapsed,
		Truncated:     n.Truncated,
	}
	if n.CountKnown {
		result.RecordCount = n.RecordCount
	}

	logger.Debug("execution complete",
		"truncated", result.Truncated,
		"record_count", result.RecordCount,
		"duration", result.ExecutionTime,
	)
	return result
}

// detectWriteOperations scans the pre-rewrite script for write-style calls
// using the shared operation table.
func (e *Executor) detectWriteOperations(script string) []string {
	var found []string
	for _, op := range e.writeOps {
		if op.call.MatchString(script) {
			found = append(found, op.name)
		}
	}
	return found
}
