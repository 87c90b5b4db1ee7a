package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/glidegate/internal/dsl/catalog"
	"github.com/atlanticdynamic/glidegate/internal/dsl/executor"
	"github.com/atlanticdynamic/glidegate/internal/dsl/screener"
	"github.com/atlanticdynamic/glidegate/internal/dsl/syntax"
	"github.com/atlanticdynamic/glidegate/internal/nlgen"
	"github.com/atlanticdynamic/glidegate/internal/servicenow"
	"github.com/atlanticdynamic/glidegate/internal/servicenow/records"
)

type stubRunner struct {
	lastScript string
	result     any
}

func (s *stubRunner) RunScript(_ context.Context, req executor.RunRequest) (*executor.RunResponse, error) {
	s.lastScript = req.Script
	return &executor.RunResponse{Result: s.result}, nil
}

// newTestConfig wires a full toolset against an httptest instance and a stub
// script runner.
func newTestConfig(t *testing.T, instance http.Handler) (*Config, *stubRunner) {
	t.Helper()

	srv := httptest.NewServer(instance)
	t.Cleanup(srv.Close)

	client, err := servicenow.New(servicenow.Config{
		BaseURL:  srv.URL,
		Username: "agent",
		Password: "secret",
	})
	require.NoError(t, err)

	svc, err := records.NewService(client, nil)
	require.NoError(t, err)

	runner := &stubRunner{result: []any{map[string]any{"number": "INC0001"}}}
	exec, err := executor.New(runner)
	require.NoError(t, err)

	cfg := &Config{
		ServerName:     "glidegate-test",
		ServerVersion:  "0.0.0",
		Validator:      syntax.New(),
		Screener:       screener.New(catalog.Default()),
		Executor:       exec,
		Records:        svc,
		Generator:      nlgen.New(),
		DefaultTimeout: 5 * time.Second,
	}
	return cfg, runner
}

func callRequest(args map[string]any) *mcpsdk.CallToolRequest {
	data, err := json.Marshal(args)
	if err != nil {
		panic(err)
	}
	return &mcpsdk.CallToolRequest{
		Params: &mcpsdk.CallToolParamsRaw{Arguments: data},
	}
}

func resultText(t *testing.T, res *mcpsdk.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)

	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingServerName)
	assert.ErrorIs(t, err, ErrMissingValidator)
	assert.ErrorIs(t, err, ErrMissingScreener)
	assert.ErrorIs(t, err, ErrMissingExecutor)
	assert.ErrorIs(t, err, ErrMissingRecords)
}

func TestArguments(t *testing.T) {
	t.Parallel()

	t.Run("nil request", func(t *testing.T) {
		args, err := arguments(nil)
		require.NoError(t, err)
		assert.Empty(t, args)
	})

	t.Run("map passes through", func(t *testing.T) {
		in := map[string]any{"script": "gq('incident').count()"}
		args, err := arguments(callRequest(in))
		require.NoError(t, err)
		assert.Equal(t, in, args)
	})

	t.Run("raw JSON is decoded", func(t *testing.T) {
		args, err := arguments(&mcpsdk.CallToolRequest{
			Params: &mcpsdk.CallToolParamsRaw{
				Arguments: json.RawMessage(`{"table":"incident","limit":5}`),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "incident", args["table"])
		assert.Equal(t, float64(5), args["limit"])
	})

	t.Run("invalid JSON is an error", func(t *testing.T) {
		_, err := arguments(&mcpsdk.CallToolRequest{
			Params: &mcpsdk.CallToolParamsRaw{
				Arguments: json.RawMessage(`{"broken":`),
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal arguments")
	})
}

func TestToolSchemas(t *testing.T) {
	t.Parallel()

	cfg, _ := newTestConfig(t, http.NotFoundHandler())
	ts := &toolset{cfg: cfg, logger: cfg.logger()}

	for _, reg := range ts.tools() {
		require.NotNil(t, reg.tool.InputSchema, "tool %s has no input schema", reg.tool.Name)
		schema, ok := reg.tool.InputSchema.(*jsonschema.Schema)
		require.True(t, ok, "tool %s input schema is not a *jsonschema.Schema", reg.tool.Name)
		assert.Equal(t, "object", schema.Type, "tool %s", reg.tool.Name)
		assert.NotEmpty(t, schema.Properties, "tool %s", reg.tool.Name)
	}
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	cfg, _ := newTestConfig(t, http.NotFoundHandler())

	server, err := NewServer(cfg)
	require.NoError(t, err)
	assert.NotNil(t, server)

	handler, err := Handler(cfg)
	require.NoError(t, err)
	assert.NotNil(t, handler)

	_, err = NewServer(&Config{ServerName: "broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid MCP config")
}

func TestValidateScriptTool(t *testing.T) {
	t.Parallel()

	cfg, _ := newTestConfig(t, http.NotFoundHandler())
	ts := &toolset{cfg: cfg, logger: cfg.logger()}
	ctx := context.Background()

	t.Run("missing script argument", func(t *testing.T) {
		res, err := ts.validateScript(ctx, callRequest(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "script parameter required")
	})

	t.Run("clean script", func(t *testing.T) {
		res, err := ts.validateScript(ctx, callRequest(map[string]any{
			"script": "gq('incident').where('active', '=', true).select()",
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)

		var report map[string]any
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
		assert.Equal(t, true, report["valid"])
	})

	t.Run("blacklisted script reports violations", func(t *testing.T) {
		res, err := ts.validateScript(ctx, callRequest(map[string]any{
			"script": "eval('gq')",
		}))
		require.NoError(t, err)

		var report map[string]any
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
		assert.Equal(t, false, report["valid"])
	})
}

func TestExecuteScriptTool(t *testing.T) {
	t.Parallel()

	cfg, runner := newTestConfig(t, http.NotFoundHandler())
	ts := &toolset{cfg: cfg, logger: cfg.logger()}
	ctx := context.Background()

	t.Run("blocked by screening", func(t *testing.T) {
		res, err := ts.executeScript(ctx, callRequest(map[string]any{
			"script": "eval('x')",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "security screening")
		assert.Empty(t, runner.lastScript)
	})

	t.Run("dangerous operation requires confirmation", func(t *testing.T) {
		res, err := ts.executeScript(ctx, callRequest(map[string]any{
			"script": "gq('incident').where('active', '=', false).deleteMultiple()",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "confirm_dangerous=true")
		assert.Empty(t, runner.lastScript)
	})

	t.Run("dangerous operation runs when confirmed", func(t *testing.T) {
		res, err := ts.executeScript(ctx, callRequest(map[string]any{
			"script":            "gq('incident').where('active', '=', false).deleteMultiple()",
			"confirm_dangerous": true,
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, runner.lastScript, "deleteMultiple")
	})

	t.Run("test mode wraps the script", func(t *testing.T) {
		res, err := ts.executeScript(ctx, callRequest(map[string]any{
			"script":    "gq('incident').select()",
			"test_mode": true,
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, runner.lastScript, "__testModeEnvelope")
	})

	t.Run("arguments arrive as raw JSON", func(t *testing.T) {
		res, err := ts.executeScript(ctx, &mcpsdk.CallToolRequest{
			Params: &mcpsdk.CallToolParamsRaw{
				Arguments: json.RawMessage(`{"script":"gq('incident').count()"}`),
			},
		})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, runner.lastScript, "count()")
	})
}

func TestQueryRecordsTool(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/now/table/incident", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active=true", r.URL.Query().Get("sysparm_query"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"number": "INC0001", "short_description": "Printer down"},
			},
		})
	})

	cfg, _ := newTestConfig(t, mux)
	ts := &toolset{cfg: cfg, logger: cfg.logger()}

	res, err := ts.queryRecords(context.Background(), callRequest(map[string]any{
		"table": "incidents",
		"query": "active=true",
		"limit": float64(10),
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	assert.Equal(t, float64(1), body["count"])
}

func TestRecordMutationTools(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/now/table/incident", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"sys_id": "abc123", "number": "INC0002"},
		})
	})
	mux.HandleFunc("/api/now/table/incident/abc123", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{"sys_id": "abc123", "state": "2"},
			})
		}
	})

	cfg, _ := newTestConfig(t, mux)
	ts := &toolset{cfg: cfg, logger: cfg.logger()}
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		res, err := ts.createRecord(ctx, callRequest(map[string]any{
			"table": "incident",
			"data":  map[string]any{"short_description": "Printer down"},
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, resultText(t, res), "INC0002")
	})

	t.Run("create without data", func(t *testing.T) {
		res, err := ts.createRecord(ctx, callRequest(map[string]any{
			"table": "incident",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("update", func(t *testing.T) {
		res, err := ts.updateRecord(ctx, callRequest(map[string]any{
			"table":  "incident",
			"sys_id": "abc123",
			"data":   map[string]any{"state": "2"},
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
	})

	t.Run("delete", func(t *testing.T) {
		res, err := ts.deleteRecord(ctx, callRequest(map[string]any{
			"table":  "incident",
			"sys_id": "abc123",
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Contains(t, resultText(t, res), `"deleted": true`)
	})

	t.Run("missing sys_id", func(t *testing.T) {
		res, err := ts.deleteRecord(ctx, callRequest(map[string]any{
			"table": "incident",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "sys_id parameter required")
	})
}

func TestGenerateScriptTool(t *testing.T) {
	t.Parallel()

	cfg, _ := newTestConfig(t, http.NotFoundHandler())
	ts := &toolset{cfg: cfg, logger: cfg.logger()}
	ctx := context.Background()

	res, err := ts.generateScript(ctx, callRequest(map[string]any{
		"request": "show all incidents where active is true",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	assert.Equal(t, "gq('incident').where('active', '=', 'true').select()", body["script"])

	res, err = ts.generateScript(ctx, callRequest(map[string]any{
		"request": "please reboot the server",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
