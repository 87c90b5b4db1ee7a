package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTOML = `
version = "v1"
log_level = "debug"
log_format = "json"
listen = ":9090"

[instance]
url = "https://dev.example.com"
username = "agent"
password = "secret"
timeout_seconds = 10

[security]
max_script_length = 5000
extra_blacklist = ['gs\.eventQueue\s*\(']
extra_dangerous_operations = ["purge"]

[test_mode]
max_results = 25
`

func TestNew(t *testing.T) {
	cfg, err := New([]byte(validTOML))
	require.NoError(t, err)

	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "https://dev.example.com", cfg.Instance.URL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 25, cfg.TestMode.MaxResults)
}

func TestNewDefaults(t *testing.T) {
	cfg, err := New([]byte(`
[instance]
url = "https://dev.example.com"
username = "agent"
password = "secret"
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.Listen)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Instance.TimeoutSeconds)
}

func TestNewCredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvUsername, "env-agent")
	t.Setenv(EnvPassword, "env-secret")

	cfg, err := New([]byte(`
[instance]
url = "https://dev.example.com"
`))
	require.NoError(t, err)
	assert.Equal(t, "env-agent", cfg.Instance.Username)
	assert.Equal(t, "env-secret", cfg.Instance.Password)
}

func TestNewEnvInterpolation(t *testing.T) {
	t.Setenv("GLIDEGATE_TEST_HOST", "dev.example.com")
	t.Setenv("GLIDEGATE_TEST_PASS", "interpolated")

	cfg, err := New([]byte(`
[instance]
url = "https://${GLIDEGATE_TEST_HOST}"
username = "agent"
password = "${GLIDEGATE_TEST_PASS}"
`))
	require.NoError(t, err)
	assert.Equal(t, "https://dev.example.com", cfg.Instance.URL)
	assert.Equal(t, "interpolated", cfg.Instance.Password)
}

func TestNewInvalidTOML(t *testing.T) {
	_, err := New([]byte(`listen = [`))
	assert.ErrorIs(t, err, ErrInvalidTOML)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "unsupported version",
			mutate:  func(c *Config) { c.Version = "v2" },
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "missing instance url",
			mutate:  func(c *Config) { c.Instance.URL = "" },
			wantErr: ErrMissingInstanceURL,
		},
		{
			name:    "relative instance url",
			mutate:  func(c *Config) { c.Instance.URL = "dev.example.com" },
			wantErr: ErrInvalidInstanceURL,
		},
		{
			name:    "missing password",
			mutate:  func(c *Config) { c.Instance.Password = "" },
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Instance.TimeoutSeconds = 0 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrUnknownLogLevel,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: ErrUnknownLogFormat,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := New([]byte(validTOML))
			require.NoError(t, err)

			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.wantErr)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg, err := New([]byte(validTOML))
	require.NoError(t, err)

	cfg.Instance.URL = ""
	cfg.Instance.Password = ""
	cfg.LogLevel = "verbose"

	verr := cfg.Validate()
	assert.ErrorIs(t, verr, ErrMissingInstanceURL)
	assert.ErrorIs(t, verr, ErrMissingCredentials)
	assert.ErrorIs(t, verr, ErrUnknownLogLevel)
}

func TestValidateBadBlacklistPattern(t *testing.T) {
	_, err := New([]byte(`
[instance]
url = "https://dev.example.com"
username = "agent"
password = "secret"

[security]
extra_blacklist = ['(unclosed']
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra_blacklist")
}

func TestCatalog(t *testing.T) {
	cfg, err := New([]byte(validTOML))
	require.NoError(t, err)

	cat, err := cfg.Catalog()
	require.NoError(t, err)

	assert.Equal(t, 5000, cat.MaxScriptLength)
	assert.Contains(t, cat.DangerousOperations(), "purge")
	assert.Contains(t, cat.DangerousOperations(), "deleteMultiple")

	found := false
	for _, p := range cat.Blacklist {
		if p.Source == `gs\.eventQueue\s*\(` {
			found = true
		}
	}
	assert.True(t, found, "extra blacklist pattern should be merged")
}

func TestNewFromFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glidegate.toml")
	require.NoError(t, os.WriteFile(path, []byte(validTOML), 0o644))

	cfg, err := NewFromFilePath(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)

	_, err = NewFromFilePath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
