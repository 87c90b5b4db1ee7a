package mcp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/atlanticdynamic/glidegate/internal/dsl/executor"
	"github.com/atlanticdynamic/glidegate/internal/servicenow/records"
)

type toolset struct {
	cfg    *Config
	logger *slog.Logger
}

func (ts *toolset) tools() []registration {
	scriptProp := &jsonschema.Schema{
		Type:        "string",
		Description: "Fluent query script text.",
	}
	tableProp := &jsonschema.Schema{
		Type:        "string",
		Description: "Table name, e.g. incident.",
	}
	sysIDProp := &jsonschema.Schema{
		Type:        "string",
		Description: "sys_id of the record.",
	}
	dataProp := &jsonschema.Schema{
		Type:        "object",
		Description: "Field values keyed by field name.",
	}

	regs := []registration{
		{
			tool: &mcpsdk.Tool{
				Name:        "validate_script",
				Description: "Run security screening and syntax validation on a query script without executing it.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"script": scriptProp,
				}, "script"),
			},
			handler: ts.validateScript,
		},
		{
			tool: &mcpsdk.Tool{
				Name:        "execute_script",
				Description: "Execute a query script against the remote instance. Dangerous operations require confirm_dangerous=true.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"script":            scriptProp,
					"confirm_dangerous": {Type: "boolean", Description: "Acknowledge dangerous operations and execute anyway."},
					"test_mode":         {Type: "boolean", Description: "Wrap the script so array results are truncated."},
					"max_results":       {Type: "integer", Description: "Test-mode truncation bound."},
					"timeout_seconds":   {Type: "integer", Description: "Remote execution timeout in seconds."},
				}, "script"),
			},
			handler: ts.executeScript,
		},
		{
			tool: &mcpsdk.Tool{
				Name:        "query_records",
				Description: "Query records from a table with an optional encoded query, field list, and limit.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"table":  tableProp,
					"query":  {Type: "string", Description: "Encoded query string."},
					"fields": {Description: "Field names as an array or a comma-separated string."},
					"limit":  {Type: "integer", Description: "Maximum records to return."},
				}, "table"),
			},
			handler: ts.queryRecords,
		},
		{
			tool: &mcpsdk.Tool{
				Name:        "get_record",
				Description: "Fetch a single record by sys_id.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"table":  tableProp,
					"sys_id": sysIDProp,
				}, "table", "sys_id"),
			},
			handler: ts.getRecord,
		},
		{
			tool: &mcpsdk.Tool{
				Name:        "create_record",
				Description: "Create a record in a table from a field map.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"table": tableProp,
					"data":  dataProp,
				}, "table", "data"),
			},
			handler: ts.createRecord,
		},
		{
			tool: &mcpsdk.Tool{
				Name:        "update_record",
				Description: "Update fields on an existing record identified by sys_id.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"table":  tableProp,
					"sys_id": sysIDProp,
					"data":   dataProp,
				}, "table", "sys_id", "data"),
			},
			handler: ts.updateRecord,
		},
		{
			tool: &mcpsdk.Tool{
				Name:        "delete_record",
				Description: "Delete a record by sys_id.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"table":  tableProp,
					"sys_id": sysIDProp,
				}, "table", "sys_id"),
			},
			handler: ts.deleteRecord,
		},
	}

	// The generator is optional; servers without it simply omit the tool.
	if ts.cfg.Generator != nil {
		regs = append(regs, registration{
			tool: &mcpsdk.Tool{
				Name:        "generate_script",
				Description: "Translate a plain-English request into a query script and validate the result.",
				InputSchema: objectSchema(map[string]*jsonschema.Schema{
					"request": {Type: "string", Description: "Plain-English description of the query."},
				}, "request"),
			},
			handler: ts.generateScript,
		})
	}
	return regs
}

func (ts *toolset) validateScript(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := arguments(req)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	script, ok := stringArg(args, "script")
	if !ok || script == "" {
		return errorResult("Error: script parameter required")
	}

	verdict := ts.cfg.Screener.Screen(script)
	syntaxResult := ts.cfg.Validator.Validate(script)

	ts.logger.DebugContext(ctx, "validated script",
		"safe", verdict.Safe,
		"valid", syntaxResult.Valid,
		"errors", len(syntaxResult.Errors),
		"warnings", len(syntaxResult.Warnings))

	return jsonResult(map[string]any{
		"valid":    verdict.Safe && syntaxResult.Valid,
		"security": verdict,
		"syntax":   syntaxResult,
	})
}

func (ts *toolset) executeScript(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := arguments(req)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	script, ok := stringArg(args, "script")
	if !ok || script == "" {
		return errorResult("Error: script parameter required")
	}

	verdict := ts.cfg.Screener.Screen(script)
	if !verdict.Safe {
		return errorResult("Script blocked by security screening: %s",
			strings.Join(verdict.Violations, "; "))
	}
	if len(verdict.DangerousOperations) > 0 && !boolArg(args, "confirm_dangerous") {
		return errorResult(
			"Script contains dangerous operations (%s). Re-run with confirm_dangerous=true to execute it.",
			strings.Join(verdict.DangerousOperations, ", "))
	}

	opts := executor.Options{
		TestMode: boolArg(args, "test_mode"),
		Timeout:  ts.cfg.DefaultTimeout,
	}
	if secs, ok := intArg(args, "timeout_seconds"); ok && secs > 0 {
		opts.Timeout = time.Duration(secs) * time.Second
	}
	if opts.TestMode {
		opts.MaxResults = ts.cfg.TestModeMaxResults
		if n, ok := intArg(args, "max_results"); ok && n > 0 {
			opts.MaxResults = n
		}
	}

	result := ts.cfg.Executor.Execute(ctx, script, opts)
	ts.logger.InfoContext(ctx, "executed script",
		"success", result.Success,
		"test_mode", opts.TestMode,
		"records", result.RecordCount)

	res, err := jsonResult(result)
	if err != nil {
		return nil, err
	}
	res.IsError = !result.Success
	return res, nil
}

func (ts *toolset) queryRecords(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := arguments(req)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	table, ok := stringArg(args, "table")
	if !ok || table == "" {
		return errorResult("Error: table parameter required")
	}

	opts := records.QueryOptions{
		Table:  table,
		Fields: stringsArg(args, "fields"),
	}
	opts.Query, _ = stringArg(args, "query")
	if limit, ok := intArg(args, "limit"); ok {
		opts.Limit = limit
	}

	rows, err := ts.cfg.Records.Query(ctx, opts)
	if err != nil {
		return errorResult("Query failed: %v", err)
	}
	return jsonResult(map[string]any{
		"records": rows,
		"count":   len(rows),
	})
}

func (ts *toolset) getRecord(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := arguments(req)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	table, sysID, errRes := recordIdentity(args)
	if errRes != nil {
		return errRes, nil
	}

	record, err := ts.cfg.Records.Get(ctx, table, sysID)
	if err != nil {
		return errorResult("Get failed: %v", err)
	}
	return jsonResult(record)
}

func (ts *toolset) createRecord(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := arguments(req)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	table, ok := stringArg(args, "table")
	if !ok || table == "" {
		return errorResult("Error: table parameter required")
	}
	data, ok := mapArg(args, "data")
	if !ok {
		return errorResult("Error: data parameter must be an object of field values")
	}

	record, err := ts.cfg.Records.Create(ctx, table, data)
	if err != nil {
		return errorResult("Create failed: %v", err)
	}
	ts.logger.InfoContext(ctx, "created record", "table", table)
	return jsonResult(record)
}

func (ts *toolset) updateRecord(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := arguments(req)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	table, sysID, errRes := recordIdentity(args)
	if errRes != nil {
		return errRes, nil
	}
	data, ok := mapArg(args, "data")
	if !ok {
		return errorResult("Error: data parameter must be an object of field values")
	}

	record, err := ts.cfg.Records.Update(ctx, table, sysID, data)
	if err != nil {
		return errorResult("Update failed: %v", err)
	}
	ts.logger.InfoContext(ctx, "updated record", "table", table, "sys_id", sysID)
	return jsonResult(record)
}

func (ts *toolset) deleteRecord(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := arguments(req)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	table, sysID, errRes := recordIdentity(args)
	if errRes != nil {
		return errRes, nil
	}

	if err := ts.cfg.Records.Delete(ctx, table, sysID); err != nil {
		return errorResult("Delete failed: %v", err)
	}
	ts.logger.InfoContext(ctx, "deleted record", "table", table, "sys_id", sysID)
	return jsonResult(map[string]any{
		"deleted": true,
		"table":   table,
		"sys_id":  sysID,
	})
}

func (ts *toolset) generateScript(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args, err := arguments(req)
	if err != nil {
		return errorResult("Error: %v", err)
	}
	request, ok := stringArg(args, "request")
	if !ok || request == "" {
		return errorResult("Error: request parameter required")
	}

	script, err := ts.cfg.Generator.Generate(request)
	if err != nil {
		return errorResult("Could not generate script: %v", err)
	}

	syntaxResult := ts.cfg.Validator.Validate(script)
	return jsonResult(map[string]any{
		"script": script,
		"syntax": syntaxResult,
	})
}

// recordIdentity extracts the table/sys_id pair shared by the single-record
// tools. A non-nil result is a ready-to-return argument error.
func recordIdentity(args map[string]any) (table, sysID string, errRes *mcpsdk.CallToolResult) {
	table, ok := stringArg(args, "table")
	if !ok || table == "" {
		res, _ := errorResult("Error: table parameter required")
		return "", "", res
	}
	sysID, ok = stringArg(args, "sys_id")
	if !ok || sysID == "" {
		res, _ := errorResult("Error: sys_id parameter required")
		return "", "", res
	}
	return table, sysID, nil
}
