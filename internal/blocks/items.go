package blocks

import (
	"fmt"

	"github.com/starford/folio/internal/apperr"
)

// AddItem appends an unchecked item and returns it.
func (c *Checklist) AddItem(text string) ChecklistItem {
	item := ChecklistItem{ID: NewID(), Text: text}
	c.Items = append(c.Items, item)
	return item
}

// SetItem replaces the text and checked state of the item with the given id.
func (c *Checklist) SetItem(id, text string, checked bool) bool {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Text = text
			c.Items[i].Checked = checked
			return true
		}
	}
	return false
}

// Toggle flips the checked state of the item with the given id.
func (c *Checklist) Toggle(id string) bool {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Checked = !c.Items[i].Checked
			return true
		}
	}
	return false
}

// RemoveItem deletes the item with the given id.
func (c *Checklist) RemoveItem(id string) bool {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// MoveItem moves the item at from to to, shifting the items in between.
func (c *Checklist) MoveItem(from, to int) bool {
	return Move(c.Items, from, to)
}

// Append adds an item to the end of the list.
func (l *List) Append(v string) {
	l.Items = append(l.Items, v)
}

// Set replaces the item at i.
func (l *List) Set(i int, v string) error {
	if i < 0 || i >= len(l.Items) {
		return fmt.Errorf("blocks: list index %d out of range [0,%d): %w", i, len(l.Items), apperr.ErrInvalid)
	}
	l.Items[i] = v
	return nil
}

// Remove deletes the item at i.
func (l *List) Remove(i int) bool {
	if i < 0 || i >= len(l.Items) {
		return false
	}
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
	return true
}

// Move moves the item at from to to, shifting the items in between.
func (l *List) Move(from, to int) bool {
	return Move(l.Items, from, to)
}

// Move relocates s[from] to index to in place, shifting the elements between
// them by one. It reports false and leaves s untouched when either index is
// out of range or the indices are equal.
func Move[T any](s []T, from, to int) bool {
	if from == to || from < 0 || to < 0 || from >= len(s) || to >= len(s) {
		return false
	}
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
	return true
}
