package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atlanticdynamic/glidegate/internal/servicenow"
)

// Service exposes filtered query and CRUD operations per entity, applying
// table defaults and field shaping on top of the raw transport.
type Service struct {
	client *servicenow.Client
	logger *slog.Logger
}

// NewService builds a record service over the transport client.
func NewService(client *servicenow.Client, logger *slog.Logger) (*Service, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if logger == nil {
		logger = slog.Default().WithGroup("records")
	}
	return &Service{client: client, logger: logger}, nil
}

// QueryOptions shapes one filtered query.
type QueryOptions struct {
	Table        string
	Query        string
	Fields       []string
	Limit        int
	DisplayValue bool
}

const defaultQueryLimit = 50

// Query runs a filtered query, filling in the table's default field list
// when the caller selected none.
func (s *Service) Query(ctx context.Context, opts QueryOptions) ([]map[string]any, error) {
	table, fields, err := resolve(opts.Table, opts.Fields)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	rows, err := s.client.ListRecords(ctx, servicenow.ListOptions{
		Table:        table,
		Query:        opts.Query,
		Fields:       fields,
		Limit:        limit,
		DisplayValue: opts.DisplayValue,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("query complete", "table", table, "rows", len(rows))
	return ShapeList(rows, opts.DisplayValue), nil
}

// Get fetches one record by sys_id with the table's default fields.
func (s *Service) Get(ctx context.Context, tableName, sysID string) (map[string]any, error) {
	table, fields, err := resolve(tableName, nil)
	if err != nil {
		return nil, err
	}

	row, err := s.client.GetRecord(ctx, table, sysID, fields)
	if err != nil {
		return nil, err
	}
	return Shape(row, false), nil
}

// Create inserts a record.
func (s *Service) Create(ctx context.Context, tableName string, data map[string]any) (map[string]any, error) {
	table, _, err := resolve(tableName, nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyRecord
	}

	row, err := s.client.CreateRecord(ctx, table, data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("record created", "table", table, "sys_id", row["sys_id"])
	return Shape(row, false), nil
}

// Update patches fields on an existing record.
func (s *Service) Update(ctx context.Context, tableName, sysID string, data map[string]any) (map[string]any, error) {
	table, _, err := resolve(tableName, nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyRecord
	}

	row, err := s.client.UpdateRecord(ctx, table, sysID, data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("record updated", "table", table, "sys_id", sysID)
	return Shape(row, false), nil
}

// Delete removes a record by sys_id.
func (s *Service) Delete(ctx context.Context, tableName, sysID string) error {
	table, _, err := resolve(tableName, nil)
	if err != nil {
		return err
	}

	if err := s.client.DeleteRecord(ctx, table, sysID); err != nil {
		return err
	}

	s.logger.Info("record deleted", "table", table, "sys_id", sysID)
	return nil
}

// resolve maps a caller-facing table name to its canonical form and default
// field list. Unregistered names pass through untouched so new tables work
// without a registry change.
func resolve(name string, fields []string) (string, []string, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil, fmt.Errorf("%w: table name is required", ErrUnknownTable)
	}

	if t, ok := Lookup(name); ok {
		if len(fields) == 0 {
			fields = t.DefaultFields
		}
		return t.Name, fields, nil
	}
	return name, fields, nil
}
