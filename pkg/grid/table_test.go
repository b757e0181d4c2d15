package grid

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AddColumn(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.AddColumn("name"))
	require.NoError(t, tbl.AddColumn("age"))
	assert.Equal(t, []string{"name", "age"}, tbl.Columns())

	err := tbl.AddColumn("name")
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	err = tbl.AddColumn("")
	assert.ErrorIs(t, err, ErrInvalidColumnName)
}

func TestTable_AddColumn_BackfillsNull(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddRow(map[string]any{"a": 1}))
	require.NoError(t, tbl.AddColumn("b"))

	row, err := tbl.GetRow(0)
	require.NoError(t, err)
	assert.Contains(t, row, "b")
	assert.Nil(t, row["b"])
}

func TestTable_AddColumns_AtomicOnFailure(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddColumn("a"))

	err := tbl.AddColumns([]string{"b", "c", "a"})
	require.ErrorIs(t, err, ErrDuplicateColumn)
	assert.Equal(t, []string{"a"}, tbl.Columns(), "failed bulk add must not apply partially")
}

func TestTable_AddRow_DeclaresColumnsFromFirstRow(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddRow(map[string]any{"name": "a", "age": 1}))

	// Column order is inferred lexicographically from the first row.
	assert.Equal(t, []string{"age", "name"}, tbl.Columns())
	assert.Equal(t, 1, tbl.RowCount())
}

func TestTable_AddRow_FillsMissingKeysWithNull(t *testing.T) {
	tbl, err := NewTableFromColumns("a", "b")
	require.NoError(t, err)

	require.NoError(t, tbl.AddRow(map[string]any{"a": 1}))
	v, err := tbl.GetValue(0, "b")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTable_AddRow_NilRow(t *testing.T) {
	tbl := NewTable()
	err := tbl.AddRow(nil)
	assert.ErrorIs(t, err, ErrNoColumns, "all-null row needs declared columns")

	require.NoError(t, tbl.AddColumn("a"))
	require.NoError(t, tbl.AddRow(nil))
	v, err := tbl.GetValue(0, "a")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTable_AddRow_IgnoresUndeclaredKeys(t *testing.T) {
	tbl, err := NewTableFromColumns("a")
	require.NoError(t, err)

	require.NoError(t, tbl.AddRow(map[string]any{"a": 1, "extra": true}))
	row, err := tbl.GetRow(0)
	require.NoError(t, err)
	assert.NotContains(t, row, "extra")
}

func TestTable_InsertRow(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"v": 1}, {"v": 3},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.InsertRow(1, map[string]any{"v": 2}))
	vals, err := tbl.GetColumnValues("v")
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, vals)

	assert.ErrorIs(t, tbl.InsertRow(-1, map[string]any{"v": 0}), ErrIndexOutOfRange)
	assert.ErrorIs(t, tbl.InsertRow(3, map[string]any{"v": 0}), ErrIndexOutOfRange)
}

func TestTable_TypeHomogeneity(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.AddRow(map[string]any{"v": "text"}))

	err := tbl.AddRow(map[string]any{"v": 42})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, 1, tbl.RowCount(), "rejected row must not be applied")

	// Null never trips the check.
	require.NoError(t, tbl.AddRow(map[string]any{"v": nil}))

	// The locked kind still applies after nulls.
	err = tbl.SetValue(1, "v", true)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	require.NoError(t, tbl.SetValue(1, "v", "ok"))
}

func TestTable_KindLocksOnFirstNonNull(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{{"v": nil}})
	require.NoError(t, err)

	kind, err := tbl.ColumnKind("v")
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, kind)

	require.NoError(t, tbl.SetValue(0, "v", 3))
	kind, _ = tbl.ColumnKind("v")
	assert.Equal(t, KindNumber, kind)
}

func TestTable_DeclareColumn(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.DeclareColumn("n", KindNumber))

	require.NoError(t, tbl.AddRow(map[string]any{"n": 1}))
	err := tbl.AddRow(map[string]any{"n": "nope"})
	assert.ErrorIs(t, err, ErrTypeMismatch, "declared kind binds before any value is seen")
}

func TestTable_NestedContainerRejected(t *testing.T) {
	tbl := NewTable()
	inner := NewTable()

	err := tbl.AddRow(map[string]any{"t": inner})
	assert.ErrorIs(t, err, ErrNestedContainer)

	err = tbl.AddRow(map[string]any{"r": NewRecord()})
	assert.ErrorIs(t, err, ErrNestedContainer)
}

func TestTable_RemoveRow_ReturnsCopy(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"v": 1}, {"v": 2},
	})
	require.NoError(t, err)

	removed, err := tbl.RemoveRow(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, removed["v"])
	assert.Equal(t, 1, tbl.RowCount())

	_, err = tbl.RemoveRow(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestTable_RemoveColumn(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{{"a": 1, "b": 2}})
	require.NoError(t, err)

	require.NoError(t, tbl.RemoveColumn("a"))
	assert.Equal(t, []string{"b"}, tbl.Columns())
	row, _ := tbl.GetRow(0)
	assert.NotContains(t, row, "a")

	assert.ErrorIs(t, tbl.RemoveColumn("a"), ErrColumnNotFound)
}

func TestTable_DeepCopyOnRead(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{
		{"a": "original", "tags": []any{"x"}},
	})
	require.NoError(t, err)

	row, err := tbl.GetRow(0)
	require.NoError(t, err)
	row["a"] = "mutated"
	row["tags"].([]any)[0] = "mutated"

	v, err := tbl.GetValue(0, "a")
	require.NoError(t, err)
	assert.Equal(t, "original", v)

	tags, err := tbl.GetValue(0, "tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, tags)
}

func TestTable_DeepCopyOnWrite(t *testing.T) {
	src := map[string]any{"meta": map[string]any{"k": "v"}}
	tbl, err := NewTableFromRows([]map[string]any{src})
	require.NoError(t, err)

	// Mutating the caller's map after insert must not reach the table.
	src["meta"].(map[string]any)["k"] = "mutated"
	got, err := tbl.GetValue(0, "meta")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, got)
}

func TestTable_Clone_Independent(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{{"v": 1}})
	require.NoError(t, err)

	clone := tbl.Clone()
	assert.True(t, tbl.Equal(clone))

	require.NoError(t, clone.SetValue(0, "v", 2))
	v, _ := tbl.GetValue(0, "v")
	assert.Equal(t, 1.0, v, "mutating the clone must not affect the source")

	require.NoError(t, tbl.SetValue(0, "v", 3))
	v, _ = clone.GetValue(0, "v")
	assert.Equal(t, 2.0, v, "mutating the source must not affect the clone")
}

func TestTable_Clear(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{{"v": 1}})
	require.NoError(t, err)

	tbl.Clear()
	assert.Equal(t, 0, tbl.RowCount())
	assert.Equal(t, 0, tbl.ColumnCount())

	// The reference stays usable.
	require.NoError(t, tbl.AddRow(map[string]any{"w": true}))
	assert.Equal(t, 1, tbl.RowCount())
}

func TestTable_BigIntCells(t *testing.T) {
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	tbl, err := NewTableFromRows([]map[string]any{{"id": huge}})
	require.NoError(t, err)

	kind, _ := tbl.ColumnKind("id")
	assert.Equal(t, KindBigInt, kind)

	got, err := tbl.GetValue(0, "id")
	require.NoError(t, err)
	gotBig := got.(*big.Int)
	assert.Zero(t, gotBig.Cmp(huge))

	// The returned value is a copy of the stored one.
	gotBig.SetInt64(0)
	again, _ := tbl.GetValue(0, "id")
	assert.Zero(t, again.(*big.Int).Cmp(huge))
}

func TestTable_GetObject(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{{"v": 1}})
	require.NoError(t, err)

	obj := tbl.GetObject()
	assert.Equal(t, []any{"v"}, obj["columns"])
	rows := obj["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].(map[string]any)["v"])
}

func TestTable_SetValue_Errors(t *testing.T) {
	tbl, err := NewTableFromRows([]map[string]any{{"v": 1}})
	require.NoError(t, err)

	assert.ErrorIs(t, tbl.SetValue(0, "missing", 1), ErrColumnNotFound)
	assert.ErrorIs(t, tbl.SetValue(9, "v", 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, tbl.SetValue(0, "v", make(chan int)), ErrNotStorable)
}
