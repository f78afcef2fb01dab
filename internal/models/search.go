package models

import (
	"strings"

	"github.com/starford/folio/internal/blocks"
)

// SearchOptions narrows Search results.
type SearchOptions struct {
	Query    string
	FolderID string
	Tag      string
	// Body extends matching into block text.
	Body  bool
	Limit int
}

// Search returns notes whose title or tags contain the query,
// case-insensitively, preserving stored order (newest first).
// An empty query matches every note.
func Search(notes []Note, opts SearchOptions) []Note {
	q := strings.ToLower(strings.TrimSpace(opts.Query))
	var out []Note
	for _, n := range notes {
		if opts.FolderID != "" && n.FolderID != opts.FolderID {
			continue
		}
		if opts.Tag != "" && !n.HasTag(opts.Tag) {
			continue
		}
		if q != "" && !matches(&n, q, opts.Body) {
			continue
		}
		out = append(out, n)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}

func matches(n *Note, q string, body bool) bool {
	if strings.Contains(strings.ToLower(n.Title), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	if body {
		for _, b := range n.Nodes {
			if strings.Contains(strings.ToLower(blocks.PlainText(b)), q) {
				return true
			}
		}
	}
	return false
}

// Snippet returns the first non-empty line of the note's plain text,
// truncated to max runes.
func Snippet(n *Note, max int) string {
	for _, b := range n.Nodes {
		text := strings.TrimSpace(blocks.PlainText(b))
		if text == "" {
			continue
		}
		line, _, _ := strings.Cut(text, "\n")
		r := []rune(line)
		if max > 0 && len(r) > max {
			return string(r[:max]) + "…"
		}
		return line
	}
	return ""
}
