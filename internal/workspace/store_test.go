package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/workbench/internal/apperr"
	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/storage"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *storage.Memory, *fakeClock) {
	t.Helper()
	mem := storage.NewMemory()
	clock := newClock()
	s := New(mem, WithClock(clock.Now), WithLogger(quietLogger()))
	return s, mem, clock
}

func TestCreate_AssignsIDsAndPrepends(t *testing.T) {
	s, _, clock := newTestStore(t)

	first, err := s.CreateNote(models.NoteInput{Title: "first"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, err := s.CreateNote(models.NoteInput{Title: ""})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
	assert.Equal(t, models.ColorNeutral, first.Color)
	assert.Equal(t, []string{}, first.Tags)

	notes := s.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, "", notes[0].Title, "empty titles are stored as is")
}

func TestCreate_Defaults(t *testing.T) {
	s, _, _ := newTestStore(t)

	task, err := s.CreateTask(models.TaskInput{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, task.Priority)

	p, err := s.CreatePrompt(models.PromptInput{Title: "p", Template: "Hi {{who}}"})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, p.Category)
	assert.Equal(t, []string{"who"}, p.Variables)
	assert.Zero(t, p.UsageCount)

	d, err := s.CreateDoc(models.DocInput{Title: "d"})
	require.NoError(t, err)
	assert.Equal(t, content.TypeDoc, d.Content.Type)

	_, err = s.CreateNote(models.NoteInput{Color: "orange"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Len(t, s.Notes(), 0, "invalid input leaves no partial state")
}

func TestCreateLink_ClassifiesVideoOnce(t *testing.T) {
	s, _, _ := newTestStore(t)

	l, err := s.CreateLink(models.LinkInput{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.True(t, l.IsVideo)
	assert.Equal(t, models.VideoYouTube, l.VideoType)
	assert.Equal(t, "dQw4w9WgXcQ", l.VideoID)

	other := "https://example.com"
	require.True(t, s.UpdateLink(l.ID, models.LinkPatch{URL: &other}))
	got, _ := s.Link(l.ID)
	assert.True(t, got.IsVideo)

	_, err = s.CreateLink(models.LinkInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdate_MergesAndRefreshesUpdatedAt(t *testing.T) {
	s, _, clock := newTestStore(t)
	n, _ := s.CreateNote(models.NoteInput{Title: "a", Body: "body", Tags: []string{"x"}})

	clock.Advance(time.Minute)
	title := "b"
	ok, err := s.UpdateNote(n.ID, models.NotePatch{Title: &title})
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := s.Note(n.ID)
	assert.Equal(t, "b", got.Title)
	assert.Equal(t, "body", got.Body)
	assert.Equal(t, []string{"x"}, got.Tags)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(n.UpdatedAt))
}

func TestUpdate_UpdatedAtNeverGoesBackwards(t *testing.T) {
	s, _, clock := newTestStore(t)
	task, _ := s.CreateTask(models.TaskInput{Title: "t"})

	clock.Advance(-time.Hour)
	require.True(t, s.ToggleTaskComplete(task.ID))
	got, _ := s.Task(task.ID)
	assert.False(t, got.UpdatedAt.Before(task.UpdatedAt))
}

func TestUnknownIDIsNoOp(t *testing.T) {
	s, mem, _ := newTestStore(t)
	_, _ = s.CreateNote(models.NoteInput{Title: "keep"})
	saves := mem.Saves()

	title := "x"
	ok, err := s.UpdateNote("missing", models.NotePatch{Title: &title})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.DeleteNote("missing"))
	assert.False(t, s.TogglePinNote("missing"))
	assert.False(t, s.ArchiveLink("missing"))
	assert.False(t, s.DeleteDoc("missing"))
	assert.False(t, s.IncrementPromptUsage("missing"))

	assert.Len(t, s.Notes(), 1)
	assert.Equal(t, saves, mem.Saves(), "no-ops do not persist")
}

func TestDelete(t *testing.T) {
	s, _, _ := newTestStore(t)
	a, _ := s.CreateTask(models.TaskInput{Title: "a"})
	b, _ := s.CreateTask(models.TaskInput{Title: "b"})

	require.True(t, s.DeleteTask(a.ID))
	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, b.ID, tasks[0].ID)
	_, ok := s.Task(a.ID)
	assert.False(t, ok)
}

func TestToggleAndArchiveIdempotence(t *testing.T) {
	s, _, _ := newTestStore(t)
	n, _ := s.CreateNote(models.NoteInput{Title: "n"})

	s.TogglePinNote(n.ID)
	s.TogglePinNote(n.ID)
	got, _ := s.Note(n.ID)
	assert.False(t, got.Pinned)

	s.ArchiveNote(n.ID)
	s.ArchiveNote(n.ID)
	got, _ = s.Note(n.ID)
	assert.True(t, got.Archived)
	assert.Empty(t, s.ActiveNotes(false))
	assert.Len(t, s.ArchivedNotes(), 1)

	s.RestoreNote(n.ID)
	got, _ = s.Note(n.ID)
	assert.False(t, got.Archived)

	l, _ := s.CreateLink(models.LinkInput{URL: "https://a.example"})
	s.ArchiveLink(l.ID)
	assert.Empty(t, s.ActiveLinks())
	s.RestoreLink(l.ID)
	assert.Len(t, s.ActiveLinks(), 1)
	assert.Empty(t, s.ArchivedLinks())
}

func TestPrompt_TemplateUpdateRecomputesVariables(t *testing.T) {
	s, _, _ := newTestStore(t)
	p, _ := s.CreatePrompt(models.PromptInput{Title: "p", Template: "{{a}}"})

	tmpl := "Hello {{name}}, your {{item}} is ready. {{name}}!"
	ok, err := s.UpdatePrompt(p.ID, models.PromptPatch{Template: &tmpl})
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := s.Prompt(p.ID)
	assert.Equal(t, []string{"name", "item"}, got.Variables)
}

func TestFillPrompt(t *testing.T) {
	s, _, _ := newTestStore(t)
	p, _ := s.CreatePrompt(models.PromptInput{Title: "p", Template: "Dear {{name}}, re {{topic}}"})

	out, err := s.FillPrompt(p.ID, map[string]string{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Dear Ada, re {{topic}}", out)

	got, _ := s.Prompt(p.ID)
	assert.Equal(t, 1, got.UsageCount)

	_, err = s.FillPrompt("missing", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUIState(t *testing.T) {
	s, mem, _ := newTestStore(t)
	ui := s.UI()
	assert.Equal(t, UIState{CurrentView: models.ViewToday, SidebarOpen: true, Theme: models.ThemeLight}, ui)

	s.ToggleSidebar()
	s.SetCommandPaletteOpen(true)
	require.NoError(t, s.SetCurrentView(models.ViewDocs))
	require.NoError(t, s.SetTheme(models.ThemeDark))
	assert.ErrorIs(t, s.SetTheme("neon"), apperr.ErrInvalidInput)

	ui = s.UI()
	assert.False(t, ui.SidebarOpen)
	assert.True(t, ui.CommandPaletteOpen)
	assert.Equal(t, models.ViewDocs, ui.CurrentView)
	assert.Equal(t, models.ThemeDark, ui.Theme)

	saves := mem.Saves()
	s.SetCommandPaletteOpen(false)
	s.SetSidebarOpen(true)
	assert.Equal(t, saves, mem.Saves(), "transient flags are not part of the durable state")
}

func TestPersistence_RoundTrip(t *testing.T) {
	s, mem, clock := newTestStore(t)
	due := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	_, _ = s.CreateNote(models.NoteInput{Title: "n", Body: "b", Color: models.ColorPink, Tags: []string{"t"}})
	_, _ = s.CreateTask(models.TaskInput{Title: "t", DueDate: &due, Priority: models.PriorityHigh, Project: "p"})
	_, _ = s.CreateLink(models.LinkInput{URL: "https://vimeo.com/76979871", Title: "v"})
	_, _ = s.CreateDoc(models.DocInput{Title: "d", Content: content.Doc(content.Heading(1, "Title"), content.Para("Body text"))})
	_, _ = s.CreatePrompt(models.PromptInput{Title: "p", Template: "{{x}}", Category: models.CategoryCoding})
	require.NoError(t, s.SetTheme(models.ThemeSystem))
	require.NoError(t, s.SetCurrentView(models.ViewPrompts))

	restored := New(mem, WithClock(clock.Now), WithLogger(quietLogger()))
	restored.Load(context.Background())

	if diff := cmp.Diff(s.Snapshot(), restored.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("snapshot mismatch after reload (-want +got):\n%s", diff)
	}
	assert.True(t, restored.UI().SidebarOpen)
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	mem := storage.NewMemory()
	s := New(mem, WithLogger(quietLogger()))
	s.Load(context.Background())
	assert.Empty(t, s.Notes())

	require.NoError(t, mem.Save(context.Background(), DefaultNamespace, []byte("{not json")))
	s.Load(context.Background())
	assert.Equal(t, models.ThemeLight, s.UI().Theme)
	assert.NotNil(t, s.Snapshot().Docs)
}

func TestPersistFailure_KeepsMemoryState(t *testing.T) {
	s, mem, _ := newTestStore(t)
	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	boom := errors.New("quota exceeded")
	mem.SetFailSave(boom)
	n, err := s.CreateNote(models.NoteInput{Title: "kept"})
	require.NoError(t, err)
	assert.ErrorIs(t, s.LastPersistError(), boom)

	_, ok := s.Note(n.ID)
	assert.True(t, ok)
	assert.Contains(t, events, Event{Collection: CollectionStorage, Kind: KindError})

	d, _ := s.CreateDoc(models.DocInput{Title: "d"})
	assert.ErrorIs(t, s.CommitDoc(d.ID, "d2", content.Doc(content.Para("x"))), boom)

	mem.SetFailSave(nil)
	s.SetCommandPaletteOpen(true)
	assert.NoError(t, s.LastPersistError(), "next change retries the write")
}

func TestCommitDoc(t *testing.T) {
	s, _, _ := newTestStore(t)
	d, _ := s.CreateDoc(models.DocInput{Title: "draft"})

	body := content.Doc(content.Para("hello"))
	require.NoError(t, s.CommitDoc(d.ID, "final", body))
	got, _ := s.Doc(d.ID)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, body, got.Content)

	assert.ErrorIs(t, s.CommitDoc("missing", "", body), apperr.ErrNotFound)
}

func TestSubscribe(t *testing.T) {
	s, _, _ := newTestStore(t)
	var got []Event
	unsubscribe := s.Subscribe(func(ev Event) { got = append(got, ev) })

	n, _ := s.CreateNote(models.NoteInput{})
	s.TogglePinNote(n.ID)
	s.DeleteNote(n.ID)
	unsubscribe()
	_, _ = s.CreateNote(models.NoteInput{})

	assert.Equal(t, []Event{
		{Collection: CollectionNotes, Kind: KindCreated, ID: n.ID},
		{Collection: CollectionNotes, Kind: KindUpdated, ID: n.ID},
		{Collection: CollectionNotes, Kind: KindDeleted, ID: n.ID},
	}, got)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	s, _, _ := newTestStore(t)
	tags := []string{"a"}
	n, _ := s.CreateNote(models.NoteInput{Tags: tags})
	tags[0] = "mutated"
	n.Tags[0] = "mutated"

	got, _ := s.Note(n.ID)
	assert.Equal(t, []string{"a"}, got.Tags)
}
