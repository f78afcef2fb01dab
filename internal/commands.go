package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/models"
)

// ServeMCP serves the MCP tools over stdio until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := app.logger()

	store, provider, err := openStore(app.config, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	logger.Info("Starting MCP server", slog.String("storage_driver", app.config.Storage.Driver))
	return mcpserver.New(store, app.version).ServeStdio()
}

// Check prints every integrity issue of the stored data to out. With repair
// set the issues are fixed and the result saved. It fails when issues remain.
func Check(ctx context.Context, out io.Writer, repair bool, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	store, provider, err := openStore(app.config, app.logger())
	if err != nil {
		return err
	}
	defer provider.Close()

	var issues []models.Issue
	if repair {
		issues, err = store.Repair(ctx)
	} else {
		issues, err = store.Check(ctx)
	}
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		_, _ = fmt.Fprintln(out, "no issues found")
		return nil
	}
	for _, is := range issues {
		_, _ = fmt.Fprintln(out, is.String())
	}
	if repair {
		_, _ = fmt.Fprintf(out, "repaired %d issue(s)\n", len(issues))
		return nil
	}
	return fmt.Errorf("%d integrity issue(s) found", len(issues))
}

// Tree prints the folder tree with note counts.
func Tree(ctx context.Context, out io.Writer, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	store, provider, err := openStore(app.config, app.logger())
	if err != nil {
		return err
	}
	defer provider.Close()

	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	writeTree(out, models.FolderTree(snap.Data), 0)
	return nil
}

func writeTree(out io.Writer, nodes []*models.TreeNode, depth int) {
	for _, n := range nodes {
		_, _ = fmt.Fprintf(out, "%s%s (%d)\n", strings.Repeat("  ", depth), n.Folder.Name, n.NoteCount)
		writeTree(out, n.Children, depth+1)
	}
}
