// Package inbox imports Markdown files dropped into a directory as notes or
// documents, then removes them.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/parser"
)

// settleDelay lets editors finish writing before a file is imported.
const settleDelay = 200 * time.Millisecond

// Kind of entity an inbox file became.
const (
	KindNote = "note"
	KindDoc  = "doc"
)

// Target receives imported entities.
type Target interface {
	CreateNote(in models.NoteInput) (models.Note, error)
	CreateDoc(in models.DocInput) (models.Doc, error)
}

// Result describes one imported file.
type Result struct {
	File string
	Kind string
	ID   string
}

// Callback is called after each successful import.
type Callback func(Result)

// Import turns one Markdown file into a note (frontmatter "kind: note") or a
// document (anything else). name supplies the title when the file has none.
func Import(t Target, name string, data []byte) (Result, error) {
	r, err := parser.Parse(data)
	if err != nil {
		return Result{}, fmt.Errorf("inbox: parse %s: %w", name, err)
	}
	title := r.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}

	if r.Frontmatter != nil && strings.EqualFold(r.Frontmatter.Kind, KindNote) {
		in := models.NoteInput{
			Title:  title,
			Body:   strings.TrimRight(r.Body, "\n"),
			Color:  models.NoteColor(strings.ToLower(r.Frontmatter.Color)),
			Pinned: r.Frontmatter.Pinned,
			Tags:   r.Tags,
		}
		if in.Validate() != nil {
			in.Color = ""
		}
		n, err := t.CreateNote(in)
		if err != nil {
			return Result{}, fmt.Errorf("inbox: create note from %s: %w", name, err)
		}
		return Result{File: name, Kind: KindNote, ID: n.ID}, nil
	}

	d, err := t.CreateDoc(models.DocInput{
		Title:   title,
		Content: content.FromMarkdown([]byte(r.Body)),
	})
	if err != nil {
		return Result{}, fmt.Errorf("inbox: create doc from %s: %w", name, err)
	}
	return Result{File: name, Kind: KindDoc, ID: d.ID}, nil
}

// ImportFile imports path and deletes it on success.
func ImportFile(t Target, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("inbox: read %s: %w", path, err)
	}
	res, err := Import(t, filepath.Base(path), data)
	if err != nil {
		return Result{}, err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return res, fmt.Errorf("inbox: remove %s: %w", path, err)
	}
	return res, nil
}

// Watch imports the .md files already in dir, then watches dir (and any
// subdirectory) until ctx is cancelled. cb, if non-nil, runs after each
// import.
func Watch(ctx context.Context, t Target, dir string, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: new watcher: %w", err)
	}
	defer w.Close()

	if err := addDirsRecursive(w, dir); err != nil {
		return fmt.Errorf("inbox: watch %s: %w", dir, err)
	}
	logger.Info("inbox: started", slog.String("dir", dir))

	pending := make(map[string]struct{})
	importOne := func(path string) {
		res, err := ImportFile(t, path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return
			}
			logger.Warn("inbox: import failed", slog.String("path", path), slog.String("error", err.Error()))
			return
		}
		logger.Info("inbox: imported", slog.String("file", res.File), slog.String("kind", res.Kind), slog.String("id", res.ID))
		if cb != nil {
			cb(res)
		}
	}

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && isMarkdown(path) {
			pending[path] = struct{}{}
		}
		return nil
	})

	settle := time.NewTimer(settleDelay)
	defer settle.Stop()
	if len(pending) == 0 {
		settle.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("inbox: stopped")
			return nil

		case <-settle.C:
			for path := range pending {
				importOne(path)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("inbox: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}
			if !isMarkdown(ev.Name) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = struct{}{}
				settle.Reset(settleDelay)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func isMarkdown(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.ToLower(base), ".md") && !strings.HasPrefix(base, ".")
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
