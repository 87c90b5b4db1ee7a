package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/glidegate/internal/server/mcp"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)

	assert.ErrorIs(t, (&Config{}).Validate(), ErrMissingListenAddr)
	assert.ErrorIs(t, (&Config{ListenAddr: ":8080"}).Validate(), ErrMissingMCPConfig)

	// An incomplete MCP config fails through the nested Validate.
	err := (&Config{ListenAddr: ":8080", MCP: &mcp.Config{}}).Validate()
	assert.ErrorIs(t, err, mcp.ErrMissingServerName)
}

func TestMCPPathDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/mcp", (&Config{}).mcpPath())
	assert.Equal(t, "/custom", (&Config{MCPPath: "/custom"}).mcpPath())
}

func TestBuildRoutes(t *testing.T) {
	t.Parallel()

	stub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	routes, err := buildRoutes("/mcp", stub, "glidegate")
	require.NoError(t, err)
	assert.Len(t, routes, 2)
}

func TestHealthzHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	healthzHandler("glidegate")(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "glidegate", body["server"])
}
