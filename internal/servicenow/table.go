package servicenow

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const tableAPIPrefix = "/api/now/table/"

// ListOptions shapes a filtered Table API query.
type ListOptions struct {
	Table        string
	Query        string   // encoded query string, e.g. "active=true^priority=1"
	Fields       []string // sysparm_fields selection; empty means all fields
	Limit        int
	DisplayValue bool // request display values alongside raw values
}

type listEnvelope struct {
	Result []map[string]any `json:"result"`
}

type recordEnvelope struct {
	Result map[string]any `json:"result"`
}

// ListRecords runs a filtered query against a table.
func (c *Client) ListRecords(ctx context.Context, opts ListOptions) ([]map[string]any, error) {
	if err := validTable(opts.Table); err != nil {
		return nil, err
	}

	params := map[string]string{}
	if opts.Query != "" {
		params["sysparm_query"] = opts.Query
	}
	if len(opts.Fields) > 0 {
		params["sysparm_fields"] = strings.Join(opts.Fields, ",")
	}
	if opts.Limit > 0 {
		params["sysparm_limit"] = strconv.Itoa(opts.Limit)
	}
	if opts.DisplayValue {
		params["sysparm_display_value"] = "all"
	}

	var envelope listEnvelope
	resp, err := c.newRequest().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&envelope).
		Get(tableAPIPrefix + opts.Table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}
	return envelope.Result, nil
}

// GetRecord fetches one record by sys_id.
func (c *Client) GetRecord(ctx context.Context, table, sysID string, fields []string) (map[string]any, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	params := map[string]string{}
	if len(fields) > 0 {
		params["sysparm_fields"] = strings.Join(fields, ",")
	}

	var envelope recordEnvelope
	resp, err := c.newRequest().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&envelope).
		Get(tableAPIPrefix + table + "/" + sysID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, table, sysID)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}
	return envelope.Result, nil
}

// CreateRecord inserts a record and returns the created row.
func (c *Client) CreateRecord(ctx context.Context, table string, data map[string]any) (map[string]any, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	var envelope recordEnvelope
	resp, err := c.newRequest().
		SetContext(ctx).
		SetBody(data).
		SetResult(&envelope).
		Post(tableAPIPrefix + table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}
	return envelope.Result, nil
}

// UpdateRecord patches fields on an existing record and returns the updated
// row.
func (c *Client) UpdateRecord(ctx context.Context, table, sysID string, data map[string]any) (map[string]any, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	var envelope recordEnvelope
	resp, err := c.newRequest().
		SetContext(ctx).
		SetBody(data).
		SetResult(&envelope).
		Patch(tableAPIPrefix + table + "/" + sysID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, table, sysID)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}
	return envelope.Result, nil
}

// DeleteRecord removes a record by sys_id.
func (c *Client) DeleteRecord(ctx context.Context, table, sysID string) error {
	if err := validTable(table); err != nil {
		return err
	}

	resp, err := c.newRequest().
		SetContext(ctx).
		Delete(tableAPIPrefix + table + "/" + sysID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, table, sysID)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}
	return nil
}
