package grid

import (
	"fmt"
	"math/big"
	"slices"
	"sort"

	"github.com/leapstack-labs/datalink/pkg/deepcopy"
)

// Table is an ordered tabular container with a typed column registry.
//
// Columns are declared explicitly (AddColumn, DeclareColumn) or inferred
// from the first inserted row. Each column locks onto the kind of the first
// non-null value stored under it; inserting a value of another kind fails.
// Every row always carries exactly the declared column set, with null for
// anything the caller did not supply.
type Table struct {
	columns []string
	kinds   map[string]Kind
	rows    []map[string]any
	convert deepcopy.Convert
}

// NewTable creates an empty table with no columns.
func NewTable() *Table {
	return &Table{kinds: make(map[string]Kind)}
}

// NewTableFromColumns creates a table with the given columns and no rows.
func NewTableFromColumns(names ...string) (*Table, error) {
	t := NewTable()
	if err := t.AddColumns(names); err != nil {
		return nil, err
	}
	return t, nil
}

// NewTableFromRows creates a table by replaying rows. Columns are declared
// from the first row's keys in lexicographic order.
func NewTableFromRows(rows []map[string]any) (*Table, error) {
	t := NewTable()
	for _, row := range rows {
		if err := t.AddRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NewTableFromTable creates an independent copy of src. Equivalent to
// src.Clone().
func NewTableFromTable(src *Table) *Table {
	return src.Clone()
}

// WithConvert installs the conversion strategy applied to opaque values
// during cell copies. The hook must be idempotent and side-effect free;
// it may run any number of times per copy. Returns the table for chaining.
func (t *Table) WithConvert(fn deepcopy.Convert) *Table {
	t.convert = fn
	return t
}

// defaultConvert keeps big integers value-like across copies. Anything
// else opaque passes through untouched.
func defaultConvert(v any) any {
	if b, ok := v.(*big.Int); ok {
		return new(big.Int).Set(b)
	}
	return v
}

func (t *Table) cloneCell(v any) any {
	fn := t.convert
	if fn == nil {
		fn = defaultConvert
	}
	return deepcopy.CloneWith(v, fn)
}

func (t *Table) cloneRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = t.cloneCell(v)
	}
	return out
}

// Columns returns a copy of the column registry in declaration order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// ColumnCount returns the number of declared columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.rows) }

// HasColumn reports whether name is declared.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.columns, name)
}

// ColumnKind returns the kind the column has locked onto, or KindUnknown if
// only null has been seen.
func (t *Table) ColumnKind(name string) (Kind, error) {
	if !t.HasColumn(name) {
		return KindUnknown, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.kinds[name], nil
}

func validColumnName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidColumnName)
	}
	return nil
}

// AddColumn declares a new column and backfills null into every existing
// row. Fails on an empty name or a duplicate.
func (t *Table) AddColumn(name string) error {
	if err := validColumnName(name); err != nil {
		return err
	}
	if t.HasColumn(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	t.columns = append(t.columns, name)
	t.kinds[name] = KindUnknown
	for _, row := range t.rows {
		row[name] = nil
	}
	return nil
}

// AddColumns declares every name in order. Validation runs over the whole
// list before any column is added, so a failure leaves the table untouched.
func (t *Table) AddColumns(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if err := validColumnName(name); err != nil {
			return err
		}
		if _, dup := seen[name]; dup || t.HasColumn(name) {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
	}
	for _, name := range names {
		// Cannot fail after the pre-validation above.
		_ = t.AddColumn(name)
	}
	return nil
}

// DeclareColumn declares a column with an explicit kind, turning the
// scan-based inference into an up-front schema guarantee. The first value
// stored under the column must match kind.
func (t *Table) DeclareColumn(name string, kind Kind) error {
	if err := t.AddColumn(name); err != nil {
		return err
	}
	t.kinds[name] = kind
	return nil
}

// RemoveColumn deletes the column and its cell in every row.
func (t *Table) RemoveColumn(name string) error {
	idx := slices.Index(t.columns, name)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	t.columns = slices.Delete(t.columns, idx, idx+1)
	delete(t.kinds, name)
	for _, row := range t.rows {
		delete(row, name)
	}
	return nil
}

// RemoveColumns deletes every named column. All names are validated before
// anything is removed.
func (t *Table) RemoveColumns(names []string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
	}
	for _, name := range names {
		_ = t.RemoveColumn(name)
	}
	return nil
}

// buildRow validates and normalizes an incoming row against the registry,
// declaring columns from the row's keys (lexicographic order) when the
// registry is still empty. Keys outside the registry are dropped; missing
// keys become null. Nothing is mutated until the whole row checks out.
func (t *Table) buildRow(row map[string]any) (map[string]any, map[string]Kind, []string, error) {
	var newCols []string
	if len(t.columns) == 0 {
		if len(row) == 0 {
			return nil, nil, nil, fmt.Errorf("%w: cannot infer columns from an empty row", ErrNoColumns)
		}
		newCols = make([]string, 0, len(row))
		for k := range row {
			if err := validColumnName(k); err != nil {
				return nil, nil, nil, err
			}
			newCols = append(newCols, k)
		}
		sort.Strings(newCols)
	}

	cols := t.columns
	if newCols != nil {
		cols = newCols
	}

	built := make(map[string]any, len(cols))
	kinds := make(map[string]Kind)
	for _, col := range cols {
		raw, ok := row[col]
		if !ok {
			built[col] = nil
			continue
		}
		stored, kind, err := normalizeValue(raw)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("column %q: %w", col, err)
		}
		if stored == nil {
			built[col] = nil
			continue
		}
		established := t.kinds[col]
		if established != KindUnknown && established != kind {
			return nil, nil, nil, fmt.Errorf("%w: column %q holds %s, got %s",
				ErrTypeMismatch, col, established, kind)
		}
		built[col] = t.cloneCell(stored)
		if established == KindUnknown {
			kinds[col] = kind
		}
	}
	return built, kinds, newCols, nil
}

func (t *Table) commitRowMeta(kinds map[string]Kind, newCols []string) {
	if newCols != nil {
		t.columns = newCols
		for _, c := range newCols {
			if _, ok := t.kinds[c]; !ok {
				t.kinds[c] = KindUnknown
			}
		}
	}
	for col, kind := range kinds {
		t.kinds[col] = kind
	}
}

// AddRow appends a row. A nil row appends an all-null row and requires the
// columns to be declared already. A non-nil row may declare the columns
// from its keys when the registry is empty.
func (t *Table) AddRow(row map[string]any) error {
	if row == nil {
		if len(t.columns) == 0 {
			return ErrNoColumns
		}
		blank := make(map[string]any, len(t.columns))
		for _, col := range t.columns {
			blank[col] = nil
		}
		t.rows = append(t.rows, blank)
		return nil
	}
	built, kinds, newCols, err := t.buildRow(row)
	if err != nil {
		return err
	}
	t.commitRowMeta(kinds, newCols)
	t.rows = append(t.rows, built)
	return nil
}

// InsertRow inserts a row before index. A nil row inserts an all-null row.
// The index must lie in [0, RowCount).
func (t *Table) InsertRow(index int, row map[string]any) error {
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(t.rows))
	}
	if row == nil {
		if len(t.columns) == 0 {
			return ErrNoColumns
		}
		blank := make(map[string]any, len(t.columns))
		for _, col := range t.columns {
			blank[col] = nil
		}
		t.rows = slices.Insert(t.rows, index, blank)
		return nil
	}
	built, kinds, newCols, err := t.buildRow(row)
	if err != nil {
		return err
	}
	t.commitRowMeta(kinds, newCols)
	t.rows = slices.Insert(t.rows, index, built)
	return nil
}

// AddRows appends every row in order, stopping at the first failure. Rows
// already appended before a failure stay applied; each individual AddRow is
// still atomic.
func (t *Table) AddRows(rows []map[string]any) error {
	for i, row := range rows {
		if err := t.AddRow(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// RemoveRow deletes the row at index and returns an independent copy of it.
func (t *Table) RemoveRow(index int) (map[string]any, error) {
	if index < 0 || index >= len(t.rows) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(t.rows))
	}
	removed := t.cloneRow(t.rows[index])
	t.rows = slices.Delete(t.rows, index, index+1)
	return removed, nil
}

// SetValue stores value in the cell at (rowIndex, column). The value must
// match the kind the column has locked onto; the first non-null value locks
// the kind.
func (t *Table) SetValue(rowIndex int, column string, value any) error {
	if !t.HasColumn(column) {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	if rowIndex < 0 || rowIndex >= len(t.rows) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, rowIndex, len(t.rows))
	}
	stored, kind, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("column %q: %w", column, err)
	}
	if stored == nil {
		t.rows[rowIndex][column] = nil
		return nil
	}
	established := t.kinds[column]
	if established != KindUnknown && established != kind {
		return fmt.Errorf("%w: column %q holds %s, got %s", ErrTypeMismatch, column, established, kind)
	}
	t.rows[rowIndex][column] = t.cloneCell(stored)
	if established == KindUnknown {
		t.kinds[column] = kind
	}
	return nil
}

// GetValue returns an independent copy of the cell at (rowIndex, column).
func (t *Table) GetValue(rowIndex int, column string) (any, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	if rowIndex < 0 || rowIndex >= len(t.rows) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, rowIndex, len(t.rows))
	}
	return t.cloneCell(t.rows[rowIndex][column]), nil
}

// GetRow returns an independent copy of the row at index.
func (t *Table) GetRow(index int) (map[string]any, error) {
	if index < 0 || index >= len(t.rows) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(t.rows))
	}
	return t.cloneRow(t.rows[index]), nil
}

// GetRows returns an independent copy of every row in order.
func (t *Table) GetRows() []map[string]any {
	out := make([]map[string]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = t.cloneRow(row)
	}
	return out
}

// GetColumnValues returns an independent copy of every cell in the column,
// in row order.
func (t *Table) GetColumnValues(column string) ([]any, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = t.cloneCell(row[column])
	}
	return out, nil
}

// GetObject returns a snapshot of the table as a plain structure with
// "columns" and "rows" keys, both deep-copied.
func (t *Table) GetObject() map[string]any {
	cols := make([]any, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c
	}
	rows := make([]any, len(t.rows))
	for i, row := range t.rows {
		rows[i] = any(t.cloneRow(row))
	}
	return map[string]any{"columns": cols, "rows": rows}
}

// Clear resets the table to the empty state without invalidating the
// reference.
func (t *Table) Clear() *Table {
	t.columns = nil
	t.kinds = make(map[string]Kind)
	t.rows = nil
	return t
}

// Clone returns a fully independent copy built by replaying the current
// columns and rows.
func (t *Table) Clone() *Table {
	out := NewTable()
	out.convert = t.convert
	out.columns = slices.Clone(t.columns)
	for col, kind := range t.kinds {
		out.kinds[col] = kind
	}
	out.rows = make([]map[string]any, len(t.rows))
	for i, row := range t.rows {
		out.rows[i] = t.cloneRow(row)
	}
	return out
}

// CloneValue implements deepcopy.Cloner so a structural clone of a larger
// value copies embedded tables through Clone.
func (t *Table) CloneValue() any {
	return t.Clone()
}

// Equal reports whether two tables hold the same columns (in order) and the
// same row contents.
func (t *Table) Equal(other *Table) bool {
	if other == nil {
		return false
	}
	if !slices.Equal(t.columns, other.columns) {
		return false
	}
	if len(t.rows) != len(other.rows) {
		return false
	}
	for i, row := range t.rows {
		for _, col := range t.columns {
			if !valuesEqual(row[col], other.rows[i][col]) {
				return false
			}
		}
	}
	return true
}
