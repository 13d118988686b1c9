package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/workbench/internal/apperr"
	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/workspace"
)

// Export formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

// exportWorkers bounds concurrent document rendering.
const exportWorkers = 4

// RenderBackup returns the indented workspace backup.
func RenderBackup(store *workspace.Store) ([]byte, error) {
	out, err := json.MarshalIndent(store.Backup(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode backup: %w", err)
	}
	return append(out, '\n'), nil
}

// RenderDoc renders one document as Markdown or HTML.
func RenderDoc(d models.Doc, format string) ([]byte, error) {
	title := models.DisplayTitle(d.Title)
	switch format {
	case FormatMarkdown:
		return []byte(content.ExportMarkdown(title, d.Content)), nil
	case FormatHTML:
		out, err := content.ExportHTML(title, d.Content)
		if err != nil {
			return nil, fmt.Errorf("export: render %s: %w", d.ID, err)
		}
		return []byte(out), nil
	default:
		return nil, fmt.Errorf("export: unknown document format %q: %w", format, apperr.ErrInvalidInput)
	}
}

var unsafeFilename = regexp.MustCompile(`[^\p{L}\p{N}._ -]+`)

// DocFilename names an exported document after its title. The id prefix
// keeps documents with equal titles apart.
func DocFilename(d models.Doc, format string) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(models.DisplayTitle(d.Title), "-"), " -")
	if name == "" {
		name = "Untitled"
	}
	short := d.ID
	if len(short) > 8 {
		short = short[len(short)-8:]
	}
	return fmt.Sprintf("%s-%s.%s", name, short, format)
}

// ExportDocs writes every document to dir in format and returns the written
// paths in document order.
func ExportDocs(ctx context.Context, store *workspace.Store, format, dir string) ([]string, error) {
	if format != FormatMarkdown && format != FormatHTML {
		return nil, fmt.Errorf("export: unknown document format %q: %w", format, apperr.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}

	docs := store.Docs()
	paths := make([]string, len(docs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(exportWorkers)
	for i, d := range docs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			body, err := RenderDoc(d, format)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, DocFilename(d, format))
			if err := os.WriteFile(path, body, 0o644); err != nil {
				return fmt.Errorf("export: write %s: %w", path, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
