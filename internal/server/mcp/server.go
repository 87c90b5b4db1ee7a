// Package mcp exposes the script pipeline and record services as MCP tools
// over the SDK's streamable HTTP transport.
package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the full tool set registered.
func NewServer(cfg *Config) (*mcpsdk.Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid MCP config: %w", err)
	}

	impl := &mcpsdk.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}
	server := mcpsdk.NewServer(impl, nil)

	ts := &toolset{cfg: cfg, logger: cfg.logger()}
	for _, reg := range ts.tools() {
		server.AddTool(reg.tool, reg.handler)
	}
	return server, nil
}

// Handler wraps the server in the SDK's streamable HTTP handler, suitable
// for mounting on an HTTP route.
func Handler(cfg *Config) (http.Handler, error) {
	server, err := NewServer(cfg)
	if err != nil {
		return nil, err
	}
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return server
	}, nil), nil
}

type registration struct {
	tool    *mcpsdk.Tool
	handler mcpsdk.ToolHandler
}

// objectSchema builds the input schema for a tool taking named parameters.
func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// arguments recovers the argument map from a tool call. The SDK delivers
// arguments as raw JSON over the wire but in-process callers hand a map in
// directly, so both shapes are accepted.
func arguments(req *mcpsdk.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil || req.Params.Arguments == nil {
		return map[string]any{}, nil
	}

	switch v := any(req.Params.Arguments).(type) {
	case map[string]any:
		return v, nil
	case json.RawMessage:
		return unmarshalArguments(v)
	case []byte:
		return unmarshalArguments(v)
	case string:
		return unmarshalArguments([]byte(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal arguments to JSON: %w", err)
		}
		return unmarshalArguments(data)
	}
}

func unmarshalArguments(data []byte) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments from JSON: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// jsonResult renders v as indented JSON text content.
func jsonResult(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// errorResult reports a tool-level failure to the client. Protocol errors
// use the error return instead.
func errorResult(format string, args ...any) (*mcpsdk.CallToolResult, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}, nil
}

func stringArg(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// intArg tolerates JSON numbers arriving as float64.
func intArg(args map[string]any, key string) (int, bool) {
	switch n := args[key].(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func mapArg(args map[string]any, key string) (map[string]any, bool) {
	m, ok := args[key].(map[string]any)
	return m, ok
}

// stringsArg accepts either a JSON array of strings or a comma-separated
// string.
func stringsArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
