package servicenow

import (
	"context"
	"fmt"
	"time"

	"github.com/atlanticdynamic/glidegate/internal/dsl/executor"
)

// Interface guard: the client is the executor's remote collaborator.
var _ executor.Runner = (*Client)(nil)

// scriptRunEnvelope is the scripted REST API's response wrapper.
type scriptRunEnvelope struct {
	Result scriptRunResult `json:"result"`
}

type scriptRunResult struct {
	Success         bool            `json:"success"`
	Result          any             `json:"result"`
	Error           *scriptRunError `json:"error"`
	Logs            []string        `json:"logs"`
	ExecutionTimeMS int64           `json:"execution_time_ms"`
}

type scriptRunError struct {
	Message string `json:"message"`
}

// RunScript submits a script to the instance's interpreter endpoint. The
// request timeout is advisory: it is forwarded to the instance and also
// bounds the local context, but expiry surfaces as an ordinary failure.
func (c *Client) RunScript(ctx context.Context, req executor.RunRequest) (*executor.RunResponse, error) {
	body := map[string]any{"script": req.Script}
	if req.Timeout > 0 {
		body["timeout_ms"] = req.Timeout.Milliseconds()

		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var envelope scriptRunEnvelope
	resp, err := c.newRequest().
		SetContext(ctx).
		SetBody(body).
		SetResult(&envelope).
		Post(c.scriptPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	if !envelope.Result.Success {
		msg := "unknown error"
		if envelope.Result.Error != nil && envelope.Result.Error.Message != "" {
			msg = envelope.Result.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrScriptExecution, msg)
	}

	c.logger.Debug("script executed",
		"execution_time_ms", envelope.Result.ExecutionTimeMS,
		"log_lines", len(envelope.Result.Logs),
	)

	return &executor.RunResponse{
		Result:        envelope.Result.Result,
		Logs:          envelope.Result.Logs,
		ExecutionTime: time.Duration(envelope.Result.ExecutionTimeMS) * time.Millisecond,
	}, nil
}
