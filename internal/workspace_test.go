package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/storage"
	"github.com/starford/workbench/internal/testutil"
	"github.com/starford/workbench/internal/workspace"
)

func TestOpenStorage_File(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	p, err := OpenStorage(context.Background(), StorageConfig{Driver: DriverFile, Path: dir})
	if err != nil {
		t.Fatalf("OpenStorage: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*storage.FS); !ok {
		t.Errorf("provider = %T, want *storage.FS", p)
	}
}

func TestOpenStorage_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "workbench.db")
	p, err := OpenStorage(context.Background(), StorageConfig{Driver: DriverSQLite, Path: path})
	if err != nil {
		t.Fatalf("OpenStorage: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*storage.SQLite); !ok {
		t.Errorf("provider = %T, want *storage.SQLite", p)
	}
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	if _, err := OpenStorage(context.Background(), StorageConfig{Driver: "tape"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenWorkspace_PersistsAcrossOpens(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()
	cfg.Metadata.Enabled = false
	ctx := context.Background()

	ws, err := OpenWorkspace(ctx, cfg, nil, quietLogger())
	if err != nil {
		t.Fatalf("OpenWorkspace: %v", err)
	}
	if _, err := ws.Store.CreateTask(models.TaskInput{Title: "persist me"}); err != nil {
		t.Fatal(err)
	}
	if err := ws.Close(); err != nil {
		t.Fatal(err)
	}

	ws, err = OpenWorkspace(ctx, cfg, nil, quietLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer ws.Close()
	tasks := ws.Store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "persist me" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestReadyHandler(t *testing.T) {
	mem := storage.NewMemory()
	cfg := NewDefaultConfig()
	ws, err := OpenWorkspace(context.Background(), cfg, mem, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()
	h := readyHandler(ws.Store)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("ready = %d, want 200", w.Code)
	}

	mem.SetFailSave(errors.New("disk full"))
	_, _ = ws.Store.CreateNote(models.NoteInput{Title: "x"})
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready after failed write = %d, want 503", w.Code)
	}

	mem.SetFailSave(nil)
	_, _ = ws.Store.CreateNote(models.NoteInput{Title: "y"})
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("ready after recovery = %d, want 200", w.Code)
	}
}

func TestOpenWorkspace_SQLiteProvider(t *testing.T) {
	p := testutil.SQLite(t)
	cfg := NewDefaultConfig()
	cfg.Metadata.Enabled = false

	ws, err := OpenWorkspace(context.Background(), cfg, p, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Store.CreatePrompt(models.PromptInput{Title: "greet", Template: "Hi {{name}}"}); err != nil {
		t.Fatal(err)
	}
	ws.Links.Close()

	reopened := workspace.New(p, workspace.WithNamespace(cfg.Storage.Namespace), workspace.WithLogger(quietLogger()))
	reopened.Load(context.Background())
	prompts := reopened.Prompts()
	if len(prompts) != 1 || prompts[0].Variables[0] != "name" {
		t.Errorf("prompts = %+v", prompts)
	}
}
