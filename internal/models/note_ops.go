package models

import (
	"fmt"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blocks"
)

// AddTag appends a trimmed tag if it is non-empty and not already present.
// It reports whether the tag list changed.
func (n *Note) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range n.Tags {
		if t == tag {
			return false
		}
	}
	n.Tags = append(n.Tags, tag)
	return true
}

// RemoveTag drops every occurrence of tag. It reports whether anything was removed.
func (n *Note) RemoveTag(tag string) bool {
	kept := n.Tags[:0]
	for _, t := range n.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	removed := len(kept) != len(n.Tags)
	n.Tags = kept
	return removed
}

// HasTag reports whether the note carries tag exactly.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ReorderBlocks moves the block at from so that it ends up at to.
// Out-of-range or equal indices leave the sequence unchanged.
func (n *Note) ReorderBlocks(from, to int) bool {
	return blocks.Move(n.Nodes, from, to)
}

// BlockIndex returns the position of the block with id, or -1.
func (n *Note) BlockIndex(id string) int {
	return n.Nodes.Index(id)
}

// Block returns the block with id, or nil.
func (n *Note) Block(id string) blocks.Block {
	if i := n.Nodes.Index(id); i >= 0 {
		return n.Nodes[i]
	}
	return nil
}

// AppendBlock adds b at the end of the note.
func (n *Note) AppendBlock(b blocks.Block) {
	n.Nodes = append(n.Nodes, b)
}

// InsertBlock places b at index i, clamped to the sequence bounds.
func (n *Note) InsertBlock(i int, b blocks.Block) {
	if i < 0 {
		i = 0
	}
	if i > len(n.Nodes) {
		i = len(n.Nodes)
	}
	n.Nodes = append(n.Nodes, nil)
	copy(n.Nodes[i+1:], n.Nodes[i:])
	n.Nodes[i] = b
}

// ReplaceBlock swaps the block with b.BlockID() for b. The kind must match.
func (n *Note) ReplaceBlock(b blocks.Block) error {
	i := n.Nodes.Index(b.BlockID())
	if i < 0 {
		return fmt.Errorf("block %s: %w", b.BlockID(), apperr.ErrNotFound)
	}
	if n.Nodes[i].Kind() != b.Kind() {
		return fmt.Errorf("block %s is %s, not %s: %w", b.BlockID(), n.Nodes[i].Kind(), b.Kind(), apperr.ErrInvalid)
	}
	n.Nodes[i] = b
	return nil
}

// RemoveBlock deletes the block with id. It reports whether it existed.
func (n *Note) RemoveBlock(id string) bool {
	i := n.Nodes.Index(id)
	if i < 0 {
		return false
	}
	n.Nodes = append(n.Nodes[:i], n.Nodes[i+1:]...)
	return true
}

// DuplicateBlock inserts a deep copy of the block with id right after it and
// returns the copy.
func (n *Note) DuplicateBlock(id string) (blocks.Block, error) {
	i := n.Nodes.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("block %s: %w", id, apperr.ErrNotFound)
	}
	dup := blocks.Clone(n.Nodes[i])
	n.InsertBlock(i+1, dup)
	return dup, nil
}
