// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes folio notes and folders for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blocks"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/notestore"
)

const blockFormatURI = "folio://block-format"

// Server wraps the MCP server with folio tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store
}

// New creates a new MCP server with all folio tools registered.
func New(store *notestore.Store, version string) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List the folder tree with the number of notes in each folder."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("folder_path",
		mcp.WithDescription("Breadcrumb path from the top level down to a folder."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Folder id")),
	), s.folderPath)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, newest first. Optionally filter by folder or tag."),
		mcp.WithString("folder", mcp.Description("Folder id (empty for all folders)")),
		mcp.WithString("tag", mcp.Description("Only notes carrying this tag")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note with all of its blocks as JSON."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. The note starts with one text block holding the optional text. "+
			"Read the block contract first via get_block_contract or the "+blockFormatURI+" resource."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("folder", mcp.Description("Folder id (defaults to the root folder)")),
		mcp.WithString("text", mcp.Description("Initial HTML content of the first text block")),
		mcp.WithArray("tags", mcp.WithStringItems(), mcp.Description("Tags to attach")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("append_block",
		mcp.WithDescription("Append a block to a note. For text the content is HTML; for checklists "+
			"and lists every line of content becomes one item."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("type", mcp.Required(), mcp.Enum(kindNames()...), mcp.Description("Block type")),
		mcp.WithString("content", mcp.Description("Block content")),
	), s.appendBlock)

	s.mcp.AddTool(mcp.NewTool("edit_block",
		mcp.WithDescription("Edit a table, checklist or list block in place. Tables take row/col ops, "+
			"checklists address items by item id, lists by index."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("block", mcp.Required(), mcp.Description("Block id")),
		mcp.WithString("op", mcp.Required(), mcp.Enum(opNames()...), mcp.Description("Edit to apply")),
		mcp.WithNumber("row", mcp.Description("Table row for set-cell")),
		mcp.WithNumber("col", mcp.Description("Table column for set-cell")),
		mcp.WithNumber("index", mcp.Description("List item index")),
		mcp.WithNumber("from", mcp.Description("Source index for move-item")),
		mcp.WithNumber("to", mcp.Description("Target index for move-item")),
		mcp.WithString("item", mcp.Description("Checklist item id")),
		mcp.WithString("text", mcp.Description("Cell or item text")),
		mcp.WithBoolean("checked", mcp.Description("Checked state for set-item on checklists")),
	), s.editBlock)

	s.mcp.AddTool(mcp.NewTool("tag_note",
		mcp.WithDescription("Add a tag to a note, or remove it when remove is true."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag")),
		mcp.WithBoolean("remove", mcp.Description("Remove instead of add")),
	), s.tagNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive search over note titles and tags, and optionally block text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithBoolean("body", mcp.Description("Also match the plain text of blocks")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create a folder, optionally under a parent folder."),
		mcp.WithString("name", mcp.Description("Folder name")),
		mcp.WithString("parent", mcp.Description("Parent folder id (empty for top level)")),
	), s.createFolder)

	s.mcp.AddTool(mcp.NewTool("delete_folder",
		mcp.WithDescription("Delete a folder and all folders beneath it. Notes inside move to the root folder."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Folder id")),
	), s.deleteFolder)

	s.mcp.AddTool(mcp.NewTool("attach_asset",
		mcp.WithDescription("Fetch a file from an http(s) URL or a base64 data URL and append it to a note "+
			"as an image, audio or file block depending on its content."),
		mcp.WithString("note", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data: URL")),
		mcp.WithString("filename", mcp.Description("File name to record (derived from the URL when empty)")),
	), s.attachAsset)

	s.mcp.AddTool(mcp.NewTool("get_block_contract",
		mcp.WithDescription("Returns the JSON block format contract. "+
			"Call this before writing blocks to ensure correct structure."),
	), s.getBlockContract)

	s.mcp.AddResource(
		mcp.NewResource(blockFormatURI, "Block Format Contract",
			mcp.WithResourceDescription("JSON shape of every note block type."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBlockFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func kindNames() []string {
	kinds := blocks.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func opNames() []string {
	ops := blocks.Ops()
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = string(op)
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError turns a store error into a tool-level error result.
func toolError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error()), nil
	case errors.Is(err, apperr.ErrQuotaExceeded):
		return mcp.NewToolResultError("storage quota exceeded, change not saved"), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

type noteSummary struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	FolderID  string           `json:"folderId"`
	Tags      []string         `json:"tags"`
	UpdatedAt models.Timestamp `json:"updatedAt"`
}

func summaries(notes []models.Note) []noteSummary {
	out := make([]noteSummary, len(notes))
	for i, n := range notes {
		out[i] = noteSummary{ID: n.ID, Title: n.Title, FolderID: n.FolderID, Tags: n.Tags, UpdatedAt: n.UpdatedAt}
	}
	return out
}

func (s *Server) listFolders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(models.FolderTree(snap.Data))
}

func (s *Server) folderPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return toolError(err)
	}
	path, err := models.BreadcrumbPath(id, snap.Data.Folders)
	if err != nil {
		return toolError(err)
	}
	names := make([]string, len(path))
	for i, f := range path {
		names[i] = f.Name
	}
	return mcp.NewToolResultText(strings.Join(names, " / ")), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return toolError(err)
	}
	notes := models.Search(snap.Data.Notes, models.SearchOptions{
		FolderID: req.GetString("folder", ""),
		Tag:      req.GetString("tag", ""),
	})
	return jsonResult(summaries(notes))
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(note)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := req.GetString("folder", "")
	if folder == "" {
		folder = models.RootFolderID
	}
	note := models.NewNote(folder, time.Now())
	if title := strings.TrimSpace(req.GetString("title", "")); title != "" {
		note.Title = title
	}
	if len(note.Nodes) > 0 {
		fillBlock(note.Nodes[0], req.GetString("text", ""))
	}
	for _, tag := range req.GetStringSlice("tags", nil) {
		note.AddTag(tag)
	}
	if err := s.store.AddNote(ctx, note); err != nil {
		return toolError(err)
	}
	return jsonResult(note)
}

// fillBlock writes textual content into a freshly created block.
func fillBlock(b blocks.Block, content string) {
	if content == "" {
		return
	}
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	switch v := b.(type) {
	case *blocks.Text:
		v.Content = content
	case *blocks.Checklist:
		v.Items = v.Items[:0]
		for _, line := range lines {
			v.AddItem(line)
		}
	case *blocks.List:
		v.Items = lines
	}
}

func (s *Server) appendBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := blocks.NewChecked(blocks.Kind(kind))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fillBlock(b, req.GetString("content", ""))

	if _, err := s.store.MutateNote(ctx, noteID, func(n *models.Note) error {
		n.AppendBlock(b)
		return nil
	}); err != nil {
		return toolError(err)
	}
	raw, err := blocks.Marshal(b)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) editBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	blockID, err := req.RequireString("block")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("op")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	op := blocks.Op{
		Op:      blocks.OpName(name),
		Row:     req.GetInt("row", 0),
		Col:     req.GetInt("col", 0),
		Index:   req.GetInt("index", 0),
		From:    req.GetInt("from", 0),
		To:      req.GetInt("to", 0),
		ItemID:  req.GetString("item", ""),
		Text:    req.GetString("text", ""),
		Checked: req.GetBool("checked", false),
	}

	var edited blocks.Block
	if _, err := s.store.MutateNote(ctx, noteID, func(n *models.Note) error {
		b := n.Block(blockID)
		if b == nil {
			return fmt.Errorf("block %s: %w", blockID, apperr.ErrNotFound)
		}
		edited = b
		return blocks.Apply(b, op)
	}); err != nil {
		return toolError(err)
	}
	raw, err := blocks.Marshal(edited)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) tagNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	remove := req.GetBool("remove", false)

	note, err := s.store.MutateNote(ctx, noteID, func(n *models.Note) error {
		if remove {
			if !n.RemoveTag(tag) {
				return fmt.Errorf("tag %q: %w", tag, apperr.ErrNotFound)
			}
			return nil
		}
		if !n.AddTag(tag) && !n.HasTag(strings.TrimSpace(tag)) {
			return fmt.Errorf("empty tag: %w", apperr.ErrInvalid)
		}
		return nil
	})
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(strings.Join(note.Tags, ", ")), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return toolError(err)
	}
	results := models.Search(snap.Data.Notes, models.SearchOptions{
		Query: query,
		Body:  req.GetBool("body", false),
		Limit: 20,
	})
	return jsonResult(summaries(results))
}

func (s *Server) createFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := s.store.CreateFolder(ctx, req.GetString("name", ""), req.GetString("parent", ""))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(folder)
}

func (s *Server) deleteFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := notestore.GuardDeleteFolder(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.store.DeleteFolder(ctx, id)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(res)
}

func (s *Server) getBlockContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BlockFormatContract), nil
}

func (s *Server) readBlockFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      blockFormatURI,
			MIMEType: "text/markdown",
			Text:     BlockFormatContract,
		},
	}, nil
}
