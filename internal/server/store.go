package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/leapstack-labs/datalink/pkg/grid"
)

// Store serves named tables backed by JSON row files in a directory:
// <dir>/<name>.json holds the wire-format row array for table <name>.
// Files are parsed lazily and kept until Invalidate.
type Store struct {
	dir string

	mu     sync.Mutex
	tables map[string]*grid.Table
}

// NewStore creates a store over dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, tables: make(map[string]*grid.Table)}
}

// validName keeps lookups inside the data directory.
func validName(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}

// Table returns an independent copy of the named table, loading it from
// disk on first use.
func (s *Store) Table(name string) (*grid.Table, error) {
	if !validName(name) {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if tbl, ok := s.tables[name]; ok {
		return tbl.Clone(), nil
	}

	path := filepath.Join(s.dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	tbl := grid.NewTable()
	if err := json.Unmarshal(data, tbl); err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	s.tables[name] = tbl
	return tbl.Clone(), nil
}

// Names lists the tables available on disk.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".json"); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Invalidate drops every parsed table so the next lookup re-reads disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]*grid.Table)
}
