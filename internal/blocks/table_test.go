package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShape(t *testing.T, tbl *Table, rows, cols int) {
	t.Helper()
	require.NoError(t, tbl.Validate())
	assert.Equal(t, rows, tbl.Rows)
	assert.Equal(t, cols, tbl.Cols)
	require.Len(t, tbl.Data, rows)
	for _, row := range tbl.Data {
		assert.Len(t, row, cols)
	}
}

func TestTableGrowShrinkKeepsShape(t *testing.T) {
	tbl := New(KindTable).(*Table)
	requireShape(t, tbl, 2, 2)

	tbl.AddRow()
	requireShape(t, tbl, 3, 2)

	tbl.AddColumn()
	requireShape(t, tbl, 3, 3)

	assert.True(t, tbl.RemoveRow())
	requireShape(t, tbl, 2, 3)

	assert.True(t, tbl.RemoveColumn())
	requireShape(t, tbl, 2, 2)
}

func TestTableNeverShrinksBelowOne(t *testing.T) {
	tbl := NewTable("t", 1, 1)
	assert.False(t, tbl.RemoveRow())
	assert.False(t, tbl.RemoveColumn())
	requireShape(t, tbl, 1, 1)
}

func TestTableRemoveThenAddDoesNotResurrectCells(t *testing.T) {
	tbl := NewTable("t", 2, 2)
	require.NoError(t, tbl.SetCell(1, 1, "old"))
	require.NoError(t, tbl.SetCell(0, 1, "keep"))
	tbl.RemoveColumn()
	tbl.AddColumn()
	assert.Equal(t, "", tbl.Data[0][1])

	tbl.RemoveRow()
	tbl.AddRow()
	assert.Equal(t, []string{"", ""}, tbl.Data[1])
}

func TestTableSetCellBounds(t *testing.T) {
	tbl := NewTable("t", 2, 2)
	assert.Error(t, tbl.SetCell(2, 0, "x"))
	assert.Error(t, tbl.SetCell(0, -1, "x"))
	require.NoError(t, tbl.SetCell(1, 0, "x"))
	assert.Equal(t, "x", tbl.Data[1][0])
}

func TestTableValidateAndNormalize(t *testing.T) {
	tbl := &Table{ID: "t", Rows: 3, Cols: 2, Data: [][]string{{"a"}, {"b", "c", "d"}}}
	assert.Error(t, tbl.Validate())

	tbl.Normalize()
	requireShape(t, tbl, 3, 2)
	assert.Equal(t, [][]string{{"a", ""}, {"b", "c"}, {"", ""}}, tbl.Data)

	zero := &Table{ID: "z"}
	zero.Normalize()
	requireShape(t, zero, 1, 1)
}
