package blocks

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	breakTagRe = regexp.MustCompile(`(?i)<(br|/p|/div|/li|/h[1-6])\s*/?>`)
	anyTagRe   = regexp.MustCompile(`<[^>]*>`)
)

// PlainText renders a block as plain text for search results and tool output.
func PlainText(b Block) string {
	switch v := b.(type) {
	case *Text:
		return StripMarkup(v.Content)
	case *Checklist:
		lines := make([]string, len(v.Items))
		for i, item := range v.Items {
			mark := " "
			if item.Checked {
				mark = "x"
			}
			lines[i] = fmt.Sprintf("[%s] %s", mark, item.Text)
		}
		return strings.Join(lines, "\n")
	case *Table:
		lines := make([]string, len(v.Data))
		for i, row := range v.Data {
			lines[i] = strings.Join(row, "\t")
		}
		return strings.Join(lines, "\n")
	case *List:
		lines := make([]string, len(v.Items))
		for i, item := range v.Items {
			if v.Ordered {
				lines[i] = fmt.Sprintf("%d. %s", i+1, item)
			} else {
				lines[i] = "- " + item
			}
		}
		return strings.Join(lines, "\n")
	case *File:
		if v.FileName == "" {
			return "[file]"
		}
		return fmt.Sprintf("[file: %s, %s]", v.FileName, v.FileType)
	case *Image:
		if v.Alt == "" {
			return "[image]"
		}
		return "[image: " + v.Alt + "]"
	case *Audio:
		if v.Duration != nil {
			return fmt.Sprintf("[audio: %.0fs]", *v.Duration)
		}
		return "[audio]"
	case *Canvas:
		return "[drawing]"
	}
	return ""
}

// StripMarkup turns editor HTML into plain text, keeping line breaks.
func StripMarkup(s string) string {
	s = breakTagRe.ReplaceAllString(s, "\n")
	s = anyTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
