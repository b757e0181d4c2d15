package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/datalink/pkg/grid"
)

// ErrMissingName is returned by table operations called without a
// "name" entry on the request record.
var ErrMissingName = errors.New("missing table name")

// DataService exposes the server's table store over the command
// dispatcher as the built-in "Data" service.
type DataService struct {
	srv *Server
}

// NewDataService creates the built-in data service for srv.
func NewDataService(srv *Server) *DataService {
	return &DataService{srv: srv}
}

// List returns the available table names as a one-column table.
func (s *DataService) List(_ context.Context, _ *grid.Record) (*grid.Record, error) {
	names, err := s.srv.store.Names()
	if err != nil {
		return nil, err
	}

	tbl, err := grid.NewTableFromColumns("name")
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if err := tbl.AddRow(map[string]any{"name": n}); err != nil {
			return nil, err
		}
	}

	reply := grid.NewRecord()
	if err := reply.PutTable("tables", tbl); err != nil {
		return nil, err
	}
	return reply, nil
}

// Get returns the rows of the table named on the request record.
func (s *DataService) Get(_ context.Context, req *grid.Record) (*grid.Record, error) {
	name, err := req.GetString("name")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrMissingName
	}

	tbl, err := s.srv.store.Table(name)
	if err != nil {
		return nil, err
	}

	reply := grid.NewRecord()
	if err := reply.PutString("name", name); err != nil {
		return nil, err
	}
	if err := reply.PutTable("rows", tbl); err != nil {
		return nil, err
	}
	return reply, nil
}

// Describe returns column metadata for the named table.
func (s *DataService) Describe(req *grid.Record) (*grid.Record, error) {
	name, err := req.GetString("name")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrMissingName
	}

	tbl, err := s.srv.store.Table(name)
	if err != nil {
		return nil, err
	}

	meta, err := grid.NewTableFromColumns("column", "kind")
	if err != nil {
		return nil, err
	}
	for _, col := range tbl.Columns() {
		kind, err := tbl.ColumnKind(col)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		row := map[string]any{"column": col, "kind": kind.String()}
		if err := meta.AddRow(row); err != nil {
			return nil, err
		}
	}

	reply := grid.NewRecord()
	if err := reply.PutString("name", name); err != nil {
		return nil, err
	}
	if err := reply.PutTable("columns", meta); err != nil {
		return nil, err
	}
	return reply, nil
}

// Reload drops every loaded table and pings the side channel so
// clients discard their caches.
func (s *DataService) Reload(_ *grid.Record) error {
	s.srv.store.Invalidate()
	s.srv.notifier.Broadcast()
	return nil
}
