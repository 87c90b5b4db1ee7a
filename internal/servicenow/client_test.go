package servicenow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atlanticdynamic/glidegate/internal/dsl/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL:  server.URL,
		Username: "admin",
		Password: "secret",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Run("missing base URL", func(t *testing.T) {
		_, err := New(Config{Username: "a", Password: "b"})
		assert.ErrorIs(t, err, ErrMissingBaseURL)
	})

	t.Run("relative base URL", func(t *testing.T) {
		_, err := New(Config{BaseURL: "instance.example.com", Username: "a", Password: "b"})
		assert.ErrorIs(t, err, ErrInvalidBaseURL)
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := New(Config{BaseURL: "https://instance.example.com"})
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("valid config", func(t *testing.T) {
		c, err := New(Config{BaseURL: "https://instance.example.com", Username: "a", Password: "b"})
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestRunScript(t *testing.T) {
	t.Run("successful execution", func(t *testing.T) {
		var captured map[string]any
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, DefaultScriptPath, r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "admin", user)
			assert.Equal(t, "secret", pass)
			assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			writeJSON(w, http.StatusOK, map[string]any{
				"result": map[string]any{
					"success":           true,
					"result":            []any{map[string]any{"number": "INC0001"}},
					"logs":              []string{"executed"},
					"execution_time_ms": 12,
				},
			})
		}))

		resp, err := client.RunScript(context.Background(), executor.RunRequest{
			Script:  "gq('incident').count()",
			Timeout: 2 * time.Second,
		})
		require.NoError(t, err)

		assert.Equal(t, "gq('incident').count()", captured["script"])
		assert.Equal(t, float64(2000), captured["timeout_ms"])

		assert.Equal(t, []string{"executed"}, resp.Logs)
		assert.Equal(t, 12*time.Millisecond, resp.ExecutionTime)

		arr, ok := resp.Result.([]any)
		require.True(t, ok)
		assert.Len(t, arr, 1)
	})

	t.Run("remote failure message passed through", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"result": map[string]any{
					"success": false,
					"error":   map[string]any{"message": "TypeError: gq is not defined"},
				},
			})
		}))

		_, err := client.RunScript(context.Background(), executor.RunRequest{Script: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrScriptExecution)
		assert.Contains(t, err.Error(), "TypeError")
	})

	t.Run("http error status", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := client.RunScript(context.Background(), executor.RunRequest{Script: "x"})
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})
}

func TestListRecords(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/incident", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "active=true", q.Get("sysparm_query"))
		assert.Equal(t, "number,short_description", q.Get("sysparm_fields"))
		assert.Equal(t, "5", q.Get("sysparm_limit"))
		assert.Equal(t, "all", q.Get("sysparm_display_value"))

		writeJSON(w, http.StatusOK, map[string]any{
			"result": []any{
				map[string]any{"number": "INC0001"},
				map[string]any{"number": "INC0002"},
			},
		})
	}))

	rows, err := client.ListRecords(context.Background(), ListOptions{
		Table:        "incident",
		Query:        "active=true",
		Fields:       []string{"number", "short_description"},
		Limit:        5,
		DisplayValue: true,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestListRecords_InvalidTable(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	}))

	_, err := client.ListRecords(context.Background(), ListOptions{Table: "incident; DROP"})
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestGetRecord_NotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetRecord(context.Background(), "incident", "missing", nil)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCreateUpdateDeleteRecord(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/api/now/table/incident", r.URL.Path)
			writeJSON(w, http.StatusCreated, map[string]any{
				"result": map[string]any{"sys_id": "abc", "number": "INC0003"},
			})
		case http.MethodPatch:
			assert.Equal(t, "/api/now/table/incident/abc", r.URL.Path)
			writeJSON(w, http.StatusOK, map[string]any{
				"result": map[string]any{"sys_id": "abc", "state": "2"},
			})
		case http.MethodDelete:
			assert.Equal(t, "/api/now/table/incident/abc", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	created, err := client.CreateRecord(context.Background(), "incident",
		map[string]any{"short_description": "test"})
	require.NoError(t, err)
	assert.Equal(t, "abc", created["sys_id"])

	updated, err := client.UpdateRecord(context.Background(), "incident", "abc",
		map[string]any{"state": "2"})
	require.NoError(t, err)
	assert.Equal(t, "2", updated["state"])

	require.NoError(t, client.DeleteRecord(context.Background(), "incident", "abc"))
}
