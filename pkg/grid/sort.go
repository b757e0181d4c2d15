package grid

import (
	"fmt"
	"math/big"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// sortKey is the pre-validated comparison key for one row. Keys are built
// for every row before any reordering happens, so a sort either fully
// applies or rejects without touching row order.
type sortKey struct {
	null bool
	num  float64
	i    *big.Int
	str  string
	b    bool
	kind Kind
}

func (t *Table) buildSortKeys(column string, integerOrder bool) ([]sortKey, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	keys := make([]sortKey, len(t.rows))
	for i, row := range t.rows {
		cell := row[column]
		if cell == nil {
			keys[i] = sortKey{null: true}
			continue
		}
		switch v := cell.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("%w: column %q row %d holds %T", ErrUnsortableValue, column, i, v)
		}
		if integerOrder {
			n, err := integerKey(cell)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", column, i, err)
			}
			keys[i] = sortKey{i: n, kind: KindBigInt}
			continue
		}
		switch v := cell.(type) {
		case float64:
			keys[i] = sortKey{num: v, kind: KindNumber}
		case string:
			keys[i] = sortKey{str: v, kind: KindString}
		case bool:
			keys[i] = sortKey{b: v, kind: KindBool}
		case *big.Int:
			keys[i] = sortKey{i: v, kind: KindBigInt}
		default:
			return nil, fmt.Errorf("%w: column %q row %d holds %T", ErrUnsortableValue, column, i, cell)
		}
	}
	return keys, nil
}

// integerKey parses a cell as an integer for integer-order sorting.
func integerKey(cell any) (*big.Int, error) {
	switch v := cell.(type) {
	case float64:
		return big.NewInt(int64(v)), nil
	case *big.Int:
		return v, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q does not parse as an integer", ErrUnsortableValue, v)
		}
		return big.NewInt(n), nil
	default:
		return nil, fmt.Errorf("%w: %T under integer order", ErrUnsortableValue, cell)
	}
}

// compareKeys orders two non-null keys of the same kind.
func compareKeys(a, b sortKey) int {
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(a.str, b.str)
	case KindBool:
		switch {
		case !a.b && b.b:
			return -1
		case a.b && !b.b:
			return 1
		}
		return 0
	case KindBigInt:
		return a.i.Cmp(b.i)
	}
	return 0
}

func (t *Table) sortRows(column string, integerOrder, descending bool) error {
	keys, err := t.buildSortKeys(column, integerOrder)
	if err != nil {
		return err
	}
	order := make([]int, len(t.rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		a, b := keys[order[x]], keys[order[y]]
		// Null sorts last ascending, first descending.
		if a.null || b.null {
			if a.null == b.null {
				return false
			}
			if descending {
				return a.null
			}
			return b.null
		}
		if descending {
			return compareKeys(a, b) > 0
		}
		return compareKeys(a, b) < 0
	})
	sorted := make([]map[string]any, len(t.rows))
	for i, idx := range order {
		sorted[i] = t.rows[idx]
	}
	t.rows = sorted
	return nil
}

// SortRowsAscending stably sorts rows by column, nulls last. With
// integerOrder, every non-null value must parse as an integer; a parse
// failure rejects the whole sort. Object- or array-typed cells are never
// sortable.
func (t *Table) SortRowsAscending(column string, integerOrder bool) error {
	return t.sortRows(column, integerOrder, false)
}

// SortRowsDescending stably sorts rows by column in reverse order, nulls
// first. Same value rules as SortRowsAscending.
func (t *Table) SortRowsDescending(column string, integerOrder bool) error {
	return t.sortRows(column, integerOrder, true)
}

// SortColumnsAscending reorders the column registry lexicographically.
// Row data is keyed by name and is not touched.
func (t *Table) SortColumnsAscending() *Table {
	sort.Strings(t.columns)
	return t
}

// SortColumnsDescending reorders the column registry in reverse
// lexicographic order.
func (t *Table) SortColumnsDescending() *Table {
	sort.Sort(sort.Reverse(sort.StringSlice(t.columns)))
	return t
}

// SortColumnsReverse reverses the current column order.
func (t *Table) SortColumnsReverse() *Table {
	slices.Reverse(t.columns)
	return t
}

// SetColumnOrder replaces the column order with the given permutation of
// the current registry.
func (t *Table) SetColumnOrder(names []string) error {
	if len(names) != len(t.columns) {
		return fmt.Errorf("%w: order lists %d of %d columns", ErrInvalidArgument, len(names), len(t.columns))
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !t.HasColumn(name) {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
	}
	t.columns = slices.Clone(names)
	return nil
}
