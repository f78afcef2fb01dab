package blocks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/apperr"
)

func TestApplyTableOps(t *testing.T) {
	tbl := NewTable("t", 1, 1)
	for _, op := range []Op{{Op: OpAddRow}, {Op: OpAddColumn}, {Op: OpSetCell, Row: 1, Col: 1, Text: "x"}} {
		require.NoError(t, Apply(tbl, op))
	}
	requireShape(t, tbl, 2, 2)
	assert.Equal(t, "x", tbl.Data[1][1])

	require.NoError(t, Apply(tbl, Op{Op: OpRemoveRow}))
	require.NoError(t, Apply(tbl, Op{Op: OpRemoveColumn}))
	requireShape(t, tbl, 1, 1)

	err := Apply(tbl, Op{Op: OpRemoveRow})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	err = Apply(tbl, Op{Op: OpSetCell, Row: 4})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	err = Apply(tbl, Op{Op: OpToggleItem})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestApplyChecklistOps(t *testing.T) {
	c := &Checklist{ID: "c"}
	require.NoError(t, Apply(c, Op{Op: OpAddItem, Text: "milk"}))
	require.NoError(t, Apply(c, Op{Op: OpAddItem, Text: "eggs"}))
	require.Len(t, c.Items, 2)
	first := c.Items[0].ID

	require.NoError(t, Apply(c, Op{Op: OpToggleItem, ItemID: first}))
	assert.True(t, c.Items[0].Checked)
	require.NoError(t, Apply(c, Op{Op: OpSetItem, ItemID: first, Text: "oat milk"}))
	assert.Equal(t, ChecklistItem{ID: first, Text: "oat milk"}, c.Items[0])

	require.NoError(t, Apply(c, Op{Op: OpMoveItem, From: 0, To: 1}))
	assert.Equal(t, first, c.Items[1].ID)
	require.NoError(t, Apply(c, Op{Op: OpRemoveItem, ItemID: first}))
	assert.Len(t, c.Items, 1)

	err := Apply(c, Op{Op: OpToggleItem, ItemID: "ghost"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	err = Apply(c, Op{Op: OpAddRow})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestApplyListOps(t *testing.T) {
	l := &List{ID: "l"}
	require.NoError(t, Apply(l, Op{Op: OpAddItem, Text: "a"}))
	require.NoError(t, Apply(l, Op{Op: OpAddItem, Text: "b"}))
	require.NoError(t, Apply(l, Op{Op: OpSetItem, Index: 0, Text: "z"}))
	require.NoError(t, Apply(l, Op{Op: OpMoveItem, From: 1, To: 0}))
	assert.Equal(t, []string{"b", "z"}, l.Items)
	require.NoError(t, Apply(l, Op{Op: OpRemoveItem, Index: 1}))
	assert.Equal(t, []string{"b"}, l.Items)

	err := Apply(l, Op{Op: OpRemoveItem, Index: 3})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	err = Apply(&Text{ID: "t"}, Op{Op: OpAddItem})
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}
