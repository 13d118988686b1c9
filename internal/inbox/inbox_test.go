package inbox

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/testutil"
	"github.com/starford/workbench/internal/workspace"
)

func testStore(t *testing.T) *workspace.Store {
	t.Helper()
	s, _ := testutil.Store(t)
	return s
}

func TestImport_Note(t *testing.T) {
	s := testStore(t)
	data := []byte("---\nkind: note\ncolor: Purple\npinned: true\ntags: [idea]\n---\n# Shower thought\nWhat if #later\n")

	res, err := Import(s, "thought.md", data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Kind != KindNote {
		t.Fatalf("kind = %s, want note", res.Kind)
	}
	n, ok := s.Note(res.ID)
	if !ok {
		t.Fatal("note not created")
	}
	if n.Title != "Shower thought" || n.Body != "What if #later" {
		t.Errorf("note = %+v", n)
	}
	if n.Color != models.ColorPurple || !n.Pinned {
		t.Errorf("color/pinned = %s/%v", n.Color, n.Pinned)
	}
	if len(n.Tags) != 2 || n.Tags[0] != "idea" || n.Tags[1] != "later" {
		t.Errorf("tags = %v", n.Tags)
	}
}

func TestImport_NoteWithUnknownColor(t *testing.T) {
	s := testStore(t)
	res, err := Import(s, "n.md", []byte("---\nkind: note\ncolor: orange\n---\nbody"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	n, _ := s.Note(res.ID)
	if n.Color != models.ColorNeutral {
		t.Errorf("color = %s, want neutral", n.Color)
	}
	if n.Title != "n" {
		t.Errorf("title = %q, want file name", n.Title)
	}
}

func TestImport_Doc(t *testing.T) {
	s := testStore(t)
	res, err := Import(s, "meeting-notes.md", []byte("Agenda\n\n- one\n- two\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Kind != KindDoc {
		t.Fatalf("kind = %s, want doc", res.Kind)
	}
	d, _ := s.Doc(res.ID)
	if d.Title != "meeting-notes" {
		t.Errorf("title = %q", d.Title)
	}
	if got := content.Markdown(d.Content); got != "Agenda\n\n- one\n- two\n\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWatch_ImportsExistingAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	s := testStore(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	existing := filepath.Join(dir, "existing.md")
	_ = os.WriteFile(existing, []byte("# Existing\nbody"), 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var results []Result
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, s, dir, logger, func(r Result) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
	}()

	testutil.Eventually(t, 5*time.Second, func() bool {
		return len(s.Docs()) == 1
	}, "existing file not imported")

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, "new.md"), []byte("---\nkind: note\n---\nquick"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("nope"), 0o644)

	testutil.Eventually(t, 5*time.Second, func() bool {
		return len(s.Notes()) == 1
	}, "new file not imported")

	testutil.Eventually(t, 2*time.Second, func() bool {
		_, errA := os.Stat(existing)
		_, errB := os.Stat(filepath.Join(dir, "new.md"))
		return os.IsNotExist(errA) && os.IsNotExist(errB)
	}, "imported files not removed")

	if _, err := os.Stat(filepath.Join(dir, "ignored.txt")); err != nil {
		t.Errorf("non-markdown file should stay: %v", err)
	}

	mu.Lock()
	if len(results) != 2 {
		t.Errorf("callbacks = %d, want 2", len(results))
	}
	mu.Unlock()

	cancel()
	<-done
}

func TestWatch_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	s := testStore(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, s, dir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "sub")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("deep"), 0o644)

	testutil.Eventually(t, 5*time.Second, func() bool {
		return len(s.Docs()) == 1
	}, "file in new subdirectory not imported")
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch_LogsEachImportOnce(t *testing.T) {
	dir := t.TempDir()
	s := testStore(t)
	var logs lockedBuffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	_ = os.WriteFile(filepath.Join(dir, "one.md"), []byte("# One\nbody"), 0o644)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, s, dir, logger, nil)
	}()

	testutil.Eventually(t, 5*time.Second, func() bool {
		return len(s.Docs()) == 1
	}, "file not imported")
	cancel()
	<-done

	if n := strings.Count(logs.String(), `"msg":"inbox: imported"`); n != 1 {
		t.Errorf("import logged %d times, want 1:\n%s", n, logs.String())
	}
}
