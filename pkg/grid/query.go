package grid

import "fmt"

// Condition is an equality match over declared columns: a row matches when
// every key's value equals the row's value for that column.
type Condition map[string]any

// Predicate decides whether a row belongs to a filter result. The predicate
// receives an independent copy of each row; mutating it has no effect on
// the table.
type Predicate func(row map[string]any) bool

// normalizeCondition validates every referenced column and normalizes the
// compared values to their stored representation, so a caller-side int
// matches a stored number.
func (t *Table) normalizeCondition(cond Condition) (map[string]any, error) {
	if len(cond) == 0 {
		return nil, fmt.Errorf("%w: empty search condition", ErrInvalidArgument)
	}
	normalized := make(map[string]any, len(cond))
	for col, raw := range cond {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, col)
		}
		stored, _, err := normalizeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("condition column %q: %w", col, err)
		}
		normalized[col] = stored
	}
	return normalized, nil
}

func (t *Table) matchIndexes(cond Condition, negate bool) ([]int, error) {
	normalized, err := t.normalizeCondition(cond)
	if err != nil {
		return nil, err
	}
	var out []int
	for i, row := range t.rows {
		matched := true
		for col, want := range normalized {
			if !valuesEqual(row[col], want) {
				matched = false
				break
			}
		}
		if matched != negate {
			out = append(out, i)
		}
	}
	return out, nil
}

// SearchRowIndexes returns the indexes of rows matching cond, in row order.
// With negate set, the non-matching indexes are returned instead.
func (t *Table) SearchRowIndexes(cond Condition, negate bool) ([]int, error) {
	return t.matchIndexes(cond, negate)
}

// SearchRows returns independent copies of the rows matching cond.
func (t *Table) SearchRows(cond Condition, negate bool) ([]map[string]any, error) {
	indexes, err := t.matchIndexes(cond, negate)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(indexes))
	for i, idx := range indexes {
		out[i] = t.cloneRow(t.rows[idx])
	}
	return out, nil
}

// SearchRowsAsTable returns a new table holding copies of the matching
// rows under the same column registry.
func (t *Table) SearchRowsAsTable(cond Condition, negate bool) (*Table, error) {
	indexes, err := t.matchIndexes(cond, negate)
	if err != nil {
		return nil, err
	}
	return t.tableFromIndexes(indexes), nil
}

// SearchAndModify keeps only the matching rows (the non-matching rows when
// negate is set), in place.
func (t *Table) SearchAndModify(cond Condition, negate bool) error {
	indexes, err := t.matchIndexes(cond, negate)
	if err != nil {
		return err
	}
	t.keepIndexes(indexes)
	return nil
}

// FilterRowIndexes returns the indexes of rows accepted by pred.
func (t *Table) FilterRowIndexes(pred Predicate) ([]int, error) {
	if pred == nil {
		return nil, fmt.Errorf("%w: nil predicate", ErrInvalidArgument)
	}
	var out []int
	for i, row := range t.rows {
		if pred(t.cloneRow(row)) {
			out = append(out, i)
		}
	}
	return out, nil
}

// FilterRows returns independent copies of the rows accepted by pred.
func (t *Table) FilterRows(pred Predicate) ([]map[string]any, error) {
	indexes, err := t.FilterRowIndexes(pred)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(indexes))
	for i, idx := range indexes {
		out[i] = t.cloneRow(t.rows[idx])
	}
	return out, nil
}

// FilterRowsAsTable returns a new table holding copies of the accepted
// rows under the same column registry.
func (t *Table) FilterRowsAsTable(pred Predicate) (*Table, error) {
	indexes, err := t.FilterRowIndexes(pred)
	if err != nil {
		return nil, err
	}
	return t.tableFromIndexes(indexes), nil
}

// FilterAndModify keeps only the rows accepted by pred, in place.
func (t *Table) FilterAndModify(pred Predicate) error {
	indexes, err := t.FilterRowIndexes(pred)
	if err != nil {
		return err
	}
	t.keepIndexes(indexes)
	return nil
}

// tableFromIndexes builds a new table with this table's columns and kinds
// and copies of the rows at the given indexes.
func (t *Table) tableFromIndexes(indexes []int) *Table {
	out := NewTable()
	out.convert = t.convert
	out.columns = append([]string(nil), t.columns...)
	for col, kind := range t.kinds {
		out.kinds[col] = kind
	}
	out.rows = make([]map[string]any, len(indexes))
	for i, idx := range indexes {
		out.rows[i] = t.cloneRow(t.rows[idx])
	}
	return out
}

// keepIndexes reduces the row store to the rows at the given indexes.
// Indexes are assumed sorted ascending, as produced by the match loops.
func (t *Table) keepIndexes(indexes []int) {
	kept := make([]map[string]any, len(indexes))
	for i, idx := range indexes {
		kept[i] = t.rows[idx]
	}
	t.rows = kept
}
