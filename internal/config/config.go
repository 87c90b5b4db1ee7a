// Package config loads and validates the TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/atlanticdynamic/glidegate/internal/dsl/catalog"
	"github.com/atlanticdynamic/glidegate/internal/interpolation"
)

// Version is the current config schema version.
const Version = "v1"

// Environment variables consulted when the file omits credentials. Keeping
// the password out of the file is the expected setup.
const (
	EnvUsername = "GLIDEGATE_USERNAME"
	EnvPassword = "GLIDEGATE_PASSWORD"
)

// Defaults applied by New for fields the file leaves unset.
const (
	DefaultListenAddr     = ":8080"
	DefaultTimeoutSeconds = 30
)

// Config is the root of the TOML document.
type Config struct {
	Version string `toml:"version"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogOutput string `toml:"log_output"`

	Listen  string `toml:"listen"`
	MCPPath string `toml:"mcp_path"`

	Instance Instance `toml:"instance"`
	Security Security `toml:"security"`
	TestMode TestMode `toml:"test_mode"`
}

// Instance points at the remote record store. String fields support
// ${VAR} environment references.
type Instance struct {
	URL            string `toml:"url"             env_interpolation:"yes"`
	Username       string `toml:"username"        env_interpolation:"yes"`
	Password       string `toml:"password"        env_interpolation:"yes"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ScriptPath     string `toml:"script_path"     env_interpolation:"yes"`
}

// Security tunes the pattern catalog. Extras are merged on top of the
// built-in defaults, never replacing them.
type Security struct {
	MaxScriptLength          int      `toml:"max_script_length"`
	ExtraBlacklist           []string `toml:"extra_blacklist"`
	ExtraDangerousOperations []string `toml:"extra_dangerous_operations"`
}

// TestMode tunes test mode execution.
type TestMode struct {
	MaxResults int `toml:"max_results"`
}

// New parses TOML bytes into a validated Config with defaults and
// environment fallbacks applied.
func New(data []byte) (*Config, error) {
	cfg := &Config{
		Listen: DefaultListenAddr,
		Instance: Instance{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTOML, err)
	}

	if err := interpolation.InterpolateStruct(&cfg.Instance); err != nil {
		return nil, fmt.Errorf("failed to interpolate instance config: %w", err)
	}

	if cfg.Instance.Username == "" {
		cfg.Instance.Username = os.Getenv(EnvUsername)
	}
	if cfg.Instance.Password == "" {
		cfg.Instance.Password = os.Getenv(EnvPassword)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFromFilePath loads and validates a config file from disk.
func NewFromFilePath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return New(data)
}

// Validate checks the whole document and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Version != "" && c.Version != Version {
		errs = append(errs, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedVersion, c.Version, Version))
	}

	if c.LogLevel != "" {
		if _, err := LogLevelFromString(c.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	if c.LogFormat != "" {
		if _, err := LogFormatFromString(c.LogFormat); err != nil {
			errs = append(errs, err)
		}
	}

	errs = append(errs, c.Instance.validate()...)
	errs = append(errs, c.Security.validate()...)

	if c.TestMode.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("%w: test_mode.max_results must not be negative", ErrInvalidValue))
	}

	return errors.Join(errs...)
}

func (i *Instance) validate() []error {
	var errs []error

	if i.URL == "" {
		errs = append(errs, ErrMissingInstanceURL)
	} else if u, err := url.Parse(i.URL); err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidInstanceURL, i.URL))
	}

	if i.Username == "" || i.Password == "" {
		errs = append(errs, ErrMissingCredentials)
	}
	if i.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("%w: instance.timeout_seconds must be positive", ErrInvalidValue))
	}
	return errs
}

func (s *Security) validate() []error {
	var errs []error

	if s.MaxScriptLength < 0 {
		errs = append(errs, fmt.Errorf("%w: security.max_script_length must not be negative", ErrInvalidValue))
	}
	for _, pat := range s.ExtraBlacklist {
		if _, err := catalog.CompilePattern(pat); err != nil {
			errs = append(errs, fmt.Errorf("security.extra_blacklist: %w", err))
		}
	}
	return errs
}

// Timeout returns the instance timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Instance.TimeoutSeconds) * time.Second
}

// Catalog builds the pattern catalog with this config's security extras
// merged onto the defaults.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	var opts []catalog.Option
	if c.Security.MaxScriptLength > 0 {
		opts = append(opts, catalog.WithMaxScriptLength(c.Security.MaxScriptLength))
	}

	if len(c.Security.ExtraBlacklist) > 0 {
		patterns, err := catalog.CompilePatterns(c.Security.ExtraBlacklist)
		if err != nil {
			return nil, fmt.Errorf("security.extra_blacklist: %w", err)
		}
		opts = append(opts, catalog.WithExtraBlacklist(patterns))
	}

	if len(c.Security.ExtraDangerousOperations) > 0 {
		opts = append(opts, catalog.WithExtraDangerousOperations(c.Security.ExtraDangerousOperations))
	}
	return catalog.New(opts...), nil
}
