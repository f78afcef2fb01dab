package blocks

import (
	"fmt"

	"github.com/starford/folio/internal/apperr"
)

// OpName names an in-place edit of a structured block.
type OpName string

const (
	OpAddRow       OpName = "add-row"
	OpAddColumn    OpName = "add-column"
	OpRemoveRow    OpName = "remove-row"
	OpRemoveColumn OpName = "remove-column"
	OpSetCell      OpName = "set-cell"
	OpAddItem      OpName = "add-item"
	OpSetItem      OpName = "set-item"
	OpToggleItem   OpName = "toggle-item"
	OpRemoveItem   OpName = "remove-item"
	OpMoveItem     OpName = "move-item"
)

// Ops lists every operation Apply understands.
func Ops() []OpName {
	return []OpName{
		OpAddRow, OpAddColumn, OpRemoveRow, OpRemoveColumn, OpSetCell,
		OpAddItem, OpSetItem, OpToggleItem, OpRemoveItem, OpMoveItem,
	}
}

// Op is one edit applied to a table, checklist or list. Checklist items are
// addressed by ItemID, list items by Index.
type Op struct {
	Op      OpName `json:"op"`
	Row     int    `json:"row,omitempty"`
	Col     int    `json:"col,omitempty"`
	Index   int    `json:"index,omitempty"`
	From    int    `json:"from,omitempty"`
	To      int    `json:"to,omitempty"`
	ItemID  string `json:"itemId,omitempty"`
	Text    string `json:"text,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

// Apply runs op against b. Unsupported combinations and edits that change
// nothing fail with apperr.ErrInvalid; a missing checklist item fails with
// apperr.ErrNotFound.
func Apply(b Block, op Op) error {
	var err error
	switch v := b.(type) {
	case *Table:
		err = applyTable(v, op)
	case *Checklist:
		err = applyChecklist(v, op)
	case *List:
		err = applyList(v, op)
	default:
		err = unsupported(b)
	}
	if err != nil {
		return fmt.Errorf("blocks: %s on %s: %w", op.Op, b.BlockID(), err)
	}
	return nil
}

func applyTable(t *Table, op Op) error {
	switch op.Op {
	case OpAddRow:
		t.AddRow()
	case OpAddColumn:
		t.AddColumn()
	case OpRemoveRow:
		return refused(t.RemoveRow(), "table keeps at least one row")
	case OpRemoveColumn:
		return refused(t.RemoveColumn(), "table keeps at least one column")
	case OpSetCell:
		return t.SetCell(op.Row, op.Col, op.Text)
	default:
		return unsupported(t)
	}
	return nil
}

func applyChecklist(c *Checklist, op Op) error {
	switch op.Op {
	case OpAddItem:
		c.AddItem(op.Text)
	case OpSetItem:
		return missingItem(c.SetItem(op.ItemID, op.Text, op.Checked), op.ItemID)
	case OpToggleItem:
		return missingItem(c.Toggle(op.ItemID), op.ItemID)
	case OpRemoveItem:
		return missingItem(c.RemoveItem(op.ItemID), op.ItemID)
	case OpMoveItem:
		return refused(c.MoveItem(op.From, op.To), fmt.Sprintf("cannot move item %d to %d", op.From, op.To))
	default:
		return unsupported(c)
	}
	return nil
}

func applyList(l *List, op Op) error {
	switch op.Op {
	case OpAddItem:
		l.Append(op.Text)
	case OpSetItem:
		return l.Set(op.Index, op.Text)
	case OpRemoveItem:
		return refused(l.Remove(op.Index), fmt.Sprintf("no item at %d", op.Index))
	case OpMoveItem:
		return refused(l.Move(op.From, op.To), fmt.Sprintf("cannot move item %d to %d", op.From, op.To))
	default:
		return unsupported(l)
	}
	return nil
}

func refused(ok bool, why string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%s: %w", why, apperr.ErrInvalid)
}

func missingItem(ok bool, id string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
}

func unsupported(b Block) error {
	return fmt.Errorf("not supported by %s blocks: %w", b.Kind(), apperr.ErrInvalid)
}
