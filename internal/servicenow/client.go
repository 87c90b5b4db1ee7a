// Package servicenow is the remote transport layer: a REST client for the
// record store's Table API and its script execution endpoint. The rest of
// the pipeline treats this package as an opaque collaborator.
package servicenow

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofrs/uuid/v5"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Glidegate-Request-ID"

// DefaultScriptPath is the scripted REST endpoint that interprets submitted
// scripts on the instance.
const DefaultScriptPath = "/api/x_glidegate/v1/script/run"

const defaultTimeout = 30 * time.Second

// identifierRe validates table names before they are placed in a URL path.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config carries everything needed to reach an instance.
type Config struct {
	// BaseURL is the instance root, e.g. https://example.service-now.com
	BaseURL string

	// Username and Password authenticate every request (basic auth).
	Username string
	Password string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration

	// ScriptPath overrides the script execution endpoint path.
	ScriptPath string

	// Logger is the structured logger for transport diagnostics.
	Logger *slog.Logger
}

// Client is safe for concurrent use.
type Client struct {
	http       *resty.Client
	scriptPath string
	logger     *slog.Logger
}

// New validates the config and builds a client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBaseURL, cfg.BaseURL)
	}

	if cfg.Username == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	scriptPath := cfg.ScriptPath
	if scriptPath == "" {
		scriptPath = DefaultScriptPath
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().WithGroup("servicenow")
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.Username, cfg.Password).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:       httpClient,
		scriptPath: scriptPath,
		logger:     logger,
	}, nil
}

// newRequest attaches a fresh correlation ID so instance-side logs can be
// matched back to this process.
func (c *Client) newRequest() *resty.Request {
	return c.http.R().
		SetHeader(RequestIDHeader, uuid.Must(uuid.NewV4()).String())
}

// validTable rejects table names that cannot be placed in a URL path.
func validTable(table string) error {
	if !identifierRe.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}
