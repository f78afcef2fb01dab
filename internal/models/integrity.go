package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/folio/internal/blocks"
)

// IssueKind classifies a structural problem in an AppData aggregate.
type IssueKind string

const (
	IssueMissingRoot    IssueKind = "missing-root"
	IssueDuplicateID    IssueKind = "duplicate-id"
	IssueDanglingParent IssueKind = "dangling-parent"
	IssueParentCycle    IssueKind = "parent-cycle"
	IssueDanglingFolder IssueKind = "dangling-folder"
	IssueInvalidBlock   IssueKind = "invalid-block"
	// IssueUndecodable marks a stored blob that could not be decoded at all.
	IssueUndecodable    IssueKind = "undecodable"
)

// Issue is one integrity finding.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Entity string    `json:"entity"`
	ID     string    `json:"id"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s %s: %s", i.Kind, i.Entity, i.ID, i.Detail)
}

// FormatIssues joins issues into a single line for error messages.
func FormatIssues(issues []Issue) string {
	parts := make([]string, len(issues))
	for i, is := range issues {
		parts[i] = is.String()
	}
	return strings.Join(parts, "; ")
}

// Check reports every integrity issue in d without modifying it.
func Check(d *AppData) []Issue {
	return repair(d.Clone(), time.Now())
}

// Repair fixes d in place and returns the issues it resolved. After Repair,
// Check(d) is empty.
func Repair(d *AppData, now time.Time) []Issue {
	d.Normalize()
	return repair(d, now)
}

func repair(d *AppData, now time.Time) []Issue {
	var issues []Issue
	add := func(kind IssueKind, entity, id, format string, args ...any) {
		issues = append(issues, Issue{Kind: kind, Entity: entity, ID: id, Detail: fmt.Sprintf(format, args...)})
	}

	// Folders: drop duplicates, keeping the first occurrence.
	seen := make(map[string]struct{}, len(d.Folders))
	folders := d.Folders[:0]
	for _, f := range d.Folders {
		if _, dup := seen[f.ID]; dup {
			add(IssueDuplicateID, "folder", f.ID, "duplicate folder %q dropped", f.Name)
			continue
		}
		seen[f.ID] = struct{}{}
		folders = append(folders, f)
	}
	d.Folders = folders

	if root := d.FindFolder(RootFolderID); root == nil {
		add(IssueMissingRoot, "folder", RootFolderID, "root folder re-created")
		d.Folders = append([]Folder{RootFolder(now)}, d.Folders...)
		seen[RootFolderID] = struct{}{}
	} else if root.ParentID != nil {
		add(IssueParentCycle, "folder", RootFolderID, "root folder had parent %s", *root.ParentID)
		root.ParentID = nil
	}

	for i := range d.Folders {
		f := &d.Folders[i]
		if f.ParentID == nil {
			continue
		}
		if _, ok := seen[*f.ParentID]; !ok {
			add(IssueDanglingParent, "folder", f.ID, "parent %s does not exist", *f.ParentID)
			f.ParentID = nil
		}
	}

	// Sequentially clear the parent of any folder that cannot reach a root;
	// each fix may make later folders reachable again.
	for i := range d.Folders {
		f := &d.Folders[i]
		if f.ParentID == nil {
			continue
		}
		if _, err := BreadcrumbPath(f.ID, d.Folders); err != nil {
			add(IssueParentCycle, "folder", f.ID, "parent %s closes a cycle", *f.ParentID)
			f.ParentID = nil
		}
	}

	noteIDs := make(map[string]struct{}, len(d.Notes))
	for i := range d.Notes {
		n := &d.Notes[i]
		if _, dup := noteIDs[n.ID]; dup || n.ID == "" {
			old := n.ID
			n.ID = NewID()
			add(IssueDuplicateID, "note", old, "note re-identified as %s", n.ID)
		}
		noteIDs[n.ID] = struct{}{}

		if _, ok := seen[n.FolderID]; !ok {
			add(IssueDanglingFolder, "note", n.ID, "folder %q does not exist", n.FolderID)
			n.FolderID = RootFolderID
		}

		issues = append(issues, repairBlocks(n)...)
	}

	return issues
}

func repairBlocks(n *Note) []Issue {
	var issues []Issue
	ids := make(map[string]struct{}, len(n.Nodes))
	for _, b := range n.Nodes {
		if _, dup := ids[b.BlockID()]; dup || b.BlockID() == "" {
			old := b.BlockID()
			blocks.SetID(b, blocks.NewID())
			issues = append(issues, Issue{
				Kind: IssueDuplicateID, Entity: "block", ID: old,
				Detail: fmt.Sprintf("block in note %s re-identified as %s", n.ID, b.BlockID()),
			})
		}
		ids[b.BlockID()] = struct{}{}

		if t, ok := b.(*blocks.Table); ok {
			if err := t.Validate(); err != nil {
				issues = append(issues, Issue{
					Kind: IssueInvalidBlock, Entity: "block", ID: t.ID,
					Detail: err.Error(),
				})
				t.Normalize()
			}
		}
	}
	return issues
}
