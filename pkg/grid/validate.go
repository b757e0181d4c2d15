package grid

import "fmt"

// Validator inspects a single cell value and reports whether it is
// acceptable. The value passed in is an independent copy.
type Validator func(value any) bool

// IsNotNullColumn reports whether no row holds null in the column.
func (t *Table) IsNotNullColumn(column string) (bool, error) {
	row, err := t.FindFirstRowNullColumn(column)
	if err != nil {
		return false, err
	}
	return row == nil, nil
}

// FindFirstRowNullColumn returns a copy of the first row (in index order)
// holding null in the column, or nil when every row has a value.
func (t *Table) FindFirstRowNullColumn(column string) (map[string]any, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	for _, row := range t.rows {
		if row[column] == nil {
			return t.cloneRow(row), nil
		}
	}
	return nil, nil
}

// IsNotDuplColumn reports whether every non-null value in the column is
// distinct.
func (t *Table) IsNotDuplColumn(column string) (bool, error) {
	row, err := t.FindFirstRowDuplColumn(column)
	if err != nil {
		return false, err
	}
	return row == nil, nil
}

// FindFirstRowDuplColumn returns a copy of the first row (in index order)
// whose column value repeats an earlier row's value, or nil when there is
// no duplicate. Null never counts as a duplicate.
func (t *Table) FindFirstRowDuplColumn(column string) (map[string]any, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	for i, row := range t.rows {
		v := row[column]
		if v == nil {
			continue
		}
		for j := 0; j < i; j++ {
			if valuesEqual(t.rows[j][column], v) {
				return t.cloneRow(row), nil
			}
		}
	}
	return nil, nil
}

// IsValidValue reports whether every value in the column passes validator.
func (t *Table) IsValidValue(column string, validator Validator) (bool, error) {
	row, err := t.FindFirstRowInvalidValue(column, validator)
	if err != nil {
		return false, err
	}
	return row == nil, nil
}

// FindFirstRowInvalidValue returns a copy of the first row (in index order)
// whose column value fails validator, or nil when every row passes.
func (t *Table) FindFirstRowInvalidValue(column string, validator Validator) (map[string]any, error) {
	if validator == nil {
		return nil, fmt.Errorf("%w: nil validator", ErrInvalidArgument)
	}
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	for _, row := range t.rows {
		if !validator(t.cloneCell(row[column])) {
			return t.cloneRow(row), nil
		}
	}
	return nil, nil
}
