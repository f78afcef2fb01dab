package models

import (
	"fmt"
	"sort"

	"github.com/starford/folio/internal/apperr"
)

// BreadcrumbPath returns the chain of folders from the root down to folderID.
// The walk is bounded by the number of folders, so a parent cycle is
// reported as ErrIntegrity instead of looping.
func BreadcrumbPath(folderID string, folders []Folder) ([]Folder, error) {
	byID := make(map[string]*Folder, len(folders))
	for i := range folders {
		byID[folders[i].ID] = &folders[i]
	}

	var path []Folder
	id := folderID
	for steps := 0; ; steps++ {
		if steps > len(folders) {
			return nil, fmt.Errorf("folder %s: parent cycle: %w", folderID, apperr.ErrIntegrity)
		}
		f, ok := byID[id]
		if !ok {
			if steps == 0 {
				return nil, fmt.Errorf("folder %s: %w", folderID, apperr.ErrNotFound)
			}
			return nil, fmt.Errorf("folder %s: dangling parent %s: %w", folderID, id, apperr.ErrIntegrity)
		}
		path = append(path, *f)
		if f.ParentID == nil {
			break
		}
		id = *f.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Descendants returns folderID together with every folder transitively
// parented under it. The result is a fixed point, so cycles terminate.
func Descendants(folderID string, folders []Folder) map[string]struct{} {
	set := map[string]struct{}{folderID: {}}
	for changed := true; changed; {
		changed = false
		for i := range folders {
			f := &folders[i]
			if f.ParentID == nil {
				continue
			}
			if _, in := set[f.ID]; in {
				continue
			}
			if _, in := set[*f.ParentID]; in {
				set[f.ID] = struct{}{}
				changed = true
			}
		}
	}
	return set
}

// Subfolders returns the direct children of parentID ("" for roots) in
// stored order.
func Subfolders(parentID string, folders []Folder) []Folder {
	var out []Folder
	for _, f := range folders {
		if f.Parent() == parentID {
			out = append(out, f)
		}
	}
	return out
}

// NotesIn returns the notes filed directly in folderID in stored order.
func NotesIn(folderID string, notes []Note) []Note {
	var out []Note
	for _, n := range notes {
		if n.FolderID == folderID {
			out = append(out, n)
		}
	}
	return out
}

// TreeNode is one folder in a rendered folder tree.
type TreeNode struct {
	Folder    Folder      `json:"folder"`
	NoteCount int         `json:"noteCount"`
	Children  []*TreeNode `json:"children,omitempty"`
}

// FolderTree builds the forest of folders with per-folder note counts.
// Folders whose parent is missing or unreachable are attached as roots so
// nothing is hidden. Children are ordered by name.
func FolderTree(d *AppData) []*TreeNode {
	counts := make(map[string]int, len(d.Folders))
	for _, n := range d.Notes {
		counts[n.FolderID]++
	}

	nodes := make(map[string]*TreeNode, len(d.Folders))
	for _, f := range d.Folders {
		nodes[f.ID] = &TreeNode{Folder: f, NoteCount: counts[f.ID]}
	}

	var roots []*TreeNode
	for _, f := range d.Folders {
		node := nodes[f.ID]
		parent, ok := nodes[f.Parent()]
		if f.ParentID == nil || !ok || !reachesRoot(f.ID, d.Folders) {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	var sortNodes func([]*TreeNode)
	sortNodes = func(ns []*TreeNode) {
		sort.SliceStable(ns, func(i, j int) bool {
			// The reserved root always leads.
			if ns[i].Folder.ID == RootFolderID || ns[j].Folder.ID == RootFolderID {
				return ns[i].Folder.ID == RootFolderID
			}
			return ns[i].Folder.Name < ns[j].Folder.Name
		})
		for _, n := range ns {
			sortNodes(n.Children)
		}
	}
	sortNodes(roots)
	return roots
}

func reachesRoot(id string, folders []Folder) bool {
	_, err := BreadcrumbPath(id, folders)
	return err == nil
}
