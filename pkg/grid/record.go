package grid

import (
	"fmt"
	"sort"
)

// entry is the closed variant a Record stores under a key: a scalar held as
// its string form, an owned Table, or null (both fields nil).
type entry struct {
	str   *string
	table *Table
}

// Record is a flat string-keyed container holding string-convertible
// scalars and/or Tables. It is the unit exchanged with the transport layer:
// typically a command name plus zero or more named tables.
//
// Like Table, a Record is value-like. Tables are cloned on insert and on
// read, so the stored instance is never reachable from outside.
type Record struct {
	entries map[string]entry
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{entries: make(map[string]entry)}
}

// NewRecordOf creates a record holding a single key/value pair.
func NewRecordOf(key string, value any) (*Record, error) {
	r := NewRecord()
	if err := r.Put(key, value); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRecordFromMap creates a record from an object of pairs. Values follow
// the Put dispatch rules.
func NewRecordFromMap(pairs map[string]any) (*Record, error) {
	r := NewRecord()
	for key, value := range pairs {
		if err := r.Put(key, value); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func validKey(key string) error {
	if key == "" {
		return ErrKeyNotString
	}
	return nil
}

// Put stores value under key, dispatching on the value's kind: a *Table is
// stored as an owned clone, a string-convertible scalar is stored as its
// string form, nil stores null. Any other value is rejected; in particular
// a plain map does not declare itself as a Table and fails.
func (r *Record) Put(key string, value any) error {
	if err := validKey(key); err != nil {
		return err
	}
	switch v := value.(type) {
	case nil:
		r.entries[key] = entry{}
		return nil
	case *Table:
		return r.PutTable(key, v)
	case *Record:
		return fmt.Errorf("%w: a Record cannot hold another Record", ErrValueKind)
	default:
		s, ok := scalarString(value)
		if !ok {
			return fmt.Errorf("%w: %T is not a string-convertible scalar or Table", ErrValueKind, value)
		}
		r.entries[key] = entry{str: &s}
		return nil
	}
}

// PutString stores a string-convertible scalar (or nil for null) under key.
// Non-scalar values are rejected.
func (r *Record) PutString(key string, value any) error {
	if err := validKey(key); err != nil {
		return err
	}
	if value == nil {
		r.entries[key] = entry{}
		return nil
	}
	s, ok := scalarString(value)
	if !ok {
		return fmt.Errorf("%w: %T is not a string-convertible scalar", ErrValueKind, value)
	}
	r.entries[key] = entry{str: &s}
	return nil
}

// PutTable stores a clone of t (or null for nil) under key.
func (r *Record) PutTable(key string, t *Table) error {
	if err := validKey(key); err != nil {
		return err
	}
	if t == nil {
		r.entries[key] = entry{}
		return nil
	}
	r.entries[key] = entry{table: t.Clone()}
	return nil
}

// Get returns an independent copy of the value stored under key: the scalar
// string, a Table clone, or nil for null and missing keys.
func (r *Record) Get(key string) any {
	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	switch {
	case e.table != nil:
		return e.table.Clone()
	case e.str != nil:
		return *e.str
	default:
		return nil
	}
}

// GetString returns the scalar stored under key. Null and missing keys
// yield the empty string; a Table-valued entry is an error.
func (r *Record) GetString(key string) (string, error) {
	e, ok := r.entries[key]
	if !ok || (e.str == nil && e.table == nil) {
		return "", nil
	}
	if e.table != nil {
		return "", fmt.Errorf("%w: %q holds a Table", ErrValueKind, key)
	}
	return *e.str, nil
}

// GetTable returns a clone of the Table stored under key. Null and missing
// keys yield nil; a scalar entry is an error.
func (r *Record) GetTable(key string) (*Table, error) {
	e, ok := r.entries[key]
	if !ok || (e.str == nil && e.table == nil) {
		return nil, nil
	}
	if e.str != nil {
		return nil, fmt.Errorf("%w: %q holds a scalar", ErrValueKind, key)
	}
	return e.table.Clone(), nil
}

// ContainsKey reports whether key is present (including null entries).
func (r *Record) ContainsKey(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// IsEmpty reports whether the record holds no entries.
func (r *Record) IsEmpty() bool { return len(r.entries) == 0 }

// Remove deletes key and reports whether it was present.
func (r *Record) Remove(key string) bool {
	_, ok := r.entries[key]
	delete(r.entries, key)
	return ok
}

// Len returns the number of entries.
func (r *Record) Len() int { return len(r.entries) }

// Keys returns the entry keys in lexicographic order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns an independent copy of every entry value, ordered by key.
func (r *Record) Values() []any {
	keys := r.Keys()
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = r.Get(k)
	}
	return out
}

// Clone returns a fully independent copy built by re-inserting the current
// entries.
func (r *Record) Clone() *Record {
	out := NewRecord()
	for key, e := range r.entries {
		switch {
		case e.table != nil:
			out.entries[key] = entry{table: e.table.Clone()}
		case e.str != nil:
			s := *e.str
			out.entries[key] = entry{str: &s}
		default:
			out.entries[key] = entry{}
		}
	}
	return out
}

// CloneValue implements deepcopy.Cloner.
func (r *Record) CloneValue() any {
	return r.Clone()
}
