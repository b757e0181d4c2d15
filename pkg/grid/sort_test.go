package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnValues(t *testing.T, tbl *Table, col string) []any {
	t.Helper()
	vals, err := tbl.GetColumnValues(col)
	require.NoError(t, err)
	return vals
}

func TestSortRowsAscending_NullsLast(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"v": 2}, {"v": nil}, {"v": 1},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.SortRowsAscending("v", false))
	assert.Equal(t, []any{1.0, 2.0, nil}, columnValues(t, tbl, "v"))
}

func TestSortRowsDescending_NullsFirst(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"v": 2}, {"v": nil}, {"v": 1},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.SortRowsDescending("v", false))
	assert.Equal(t, []any{nil, 2.0, 1.0}, columnValues(t, tbl, "v"))
}

func TestSortRows_Stable(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"k": 1, "tag": "first"},
		{"k": 1, "tag": "second"},
		{"k": 0, "tag": "third"},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.SortRowsAscending("k", false))
	assert.Equal(t, []any{"third", "first", "second"}, columnValues(t, tbl, "tag"))
}

func TestSortRows_Strings(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"s": "b"}, {"s": "a"}, {"s": "c"},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.SortRowsAscending("s", false))
	assert.Equal(t, []any{"a", "b", "c"}, columnValues(t, tbl, "s"))
}

func TestSortRows_IntegerOrder(t *testing.T) {
	// Lexicographically "10" < "9"; integer order fixes that.
	tbl, err := NewTableFromRows([]map[string]any{
		{"s": "10"}, {"s": "9"},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.SortRowsAscending("s", true))
	assert.Equal(t, []any{"9", "10"}, columnValues(t, tbl, "s"))
}

func TestSortRows_IntegerOrderParseFailure(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"s": "10"}, {"s": "not a number"},
	})
	require.NoError(t, err)

	err = tbl.SortRowsAscending("s", true)
	require.ErrorIs(t, err, ErrUnsortableValue)
	// The failed sort must not reorder anything.
	assert.Equal(t, []any{"10", "not a number"}, columnValues(t, tbl, "s"))
}

func TestSortRows_ObjectCellsUnsortable(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"o": map[string]any{"k": 1}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, tbl.SortRowsAscending("o", false), ErrUnsortableValue)
}

func TestSortRows_UnknownColumn(t *testing.T) {
	tbl := NewTable()
	assert.ErrorIs(t, tbl.SortRowsAscending("v", false), ErrColumnNotFound)
}

func TestSortColumns(t *testing.T) {
	tbl, err := NewTableFromColumns("b", "a", "c")
	require.NoError(t, err)
	require.NoError(t, tbl.AddRow(map[string]any{"a": 1, "b": 2, "c": 3}))

	tbl.SortColumnsAscending()
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())

	tbl.SortColumnsDescending()
	assert.Equal(t, []string{"c", "b", "a"}, tbl.Columns())

	tbl.SortColumnsReverse()
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())

	// Row data is keyed, not positional; values stay put.
	v, err := tbl.GetValue(0, "b")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestSetColumnOrder(t *testing.T) {
	tbl, err := NewTableFromColumns("a", "b", "c")
	require.NoError(t, err)

	require.NoError(t, tbl.SetColumnOrder([]string{"c", "a", "b"}))
	assert.Equal(t, []string{"c", "a", "b"}, tbl.Columns())

	assert.ErrorIs(t, tbl.SetColumnOrder([]string{"c", "a"}), ErrInvalidArgument)
	assert.ErrorIs(t, tbl.SetColumnOrder([]string{"c", "a", "x"}), ErrColumnNotFound)
	assert.ErrorIs(t, tbl.SetColumnOrder([]string{"c", "a", "a"}), ErrDuplicateColumn)
}
