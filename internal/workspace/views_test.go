package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
)

func ptrTime(t time.Time) *time.Time { return &t }

func taskTitles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestGroupTasks(t *testing.T) {
	s, _, clock := newTestStore(t)
	now := clock.Now() // 2026-03-10 09:00 UTC

	mk := func(title string, due *time.Time, done bool) {
		_, err := s.CreateTask(models.TaskInput{Title: title, DueDate: due, Completed: done})
		require.NoError(t, err)
	}
	mk("overdue", ptrTime(now.AddDate(0, 0, -2)), false)
	mk("today-early", ptrTime(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)), false)
	mk("today-late", ptrTime(time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)), false)
	mk("upcoming", ptrTime(now.AddDate(0, 0, 3)), false)
	mk("later", ptrTime(now.AddDate(0, 0, 30)), false)
	mk("nodate", nil, false)
	mk("done", ptrTime(now.AddDate(0, 0, -5)), true)

	g := s.GroupTasks(TaskFilterAll)
	assert.Equal(t, []string{"overdue"}, taskTitles(g.Overdue))
	assert.Equal(t, []string{"today-late", "today-early"}, taskTitles(g.Today))
	assert.Equal(t, []string{"upcoming"}, taskTitles(g.Upcoming))
	assert.Equal(t, []string{"later"}, taskTitles(g.Later))
	assert.Equal(t, []string{"nodate"}, taskTitles(g.NoDueDate))
	assert.Equal(t, []string{"done"}, taskTitles(g.Completed))

	active := s.GroupTasks(TaskFilterActive)
	assert.Empty(t, active.Completed)
	assert.Len(t, s.FilterTasks(TaskFilterCompleted), 1)
	assert.Len(t, s.FilterTasks(TaskFilterActive), 6)
}

func TestParseFilters(t *testing.T) {
	f, err := ParseTaskFilter("")
	require.NoError(t, err)
	assert.Equal(t, TaskFilterAll, f)
	_, err = ParseTaskFilter("someday")
	assert.Error(t, err)

	p, err := ParsePromptSort("used")
	require.NoError(t, err)
	assert.Equal(t, PromptSortUsed, p)
	_, err = ParsePromptSort("random")
	assert.Error(t, err)
}

func TestActiveNotes_PinnedFirst(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, _ = s.CreateNote(models.NoteInput{Title: "a"})
	b, _ := s.CreateNote(models.NoteInput{Title: "b", Pinned: true})
	_, _ = s.CreateNote(models.NoteInput{Title: "c"})
	_, _ = s.CreateNote(models.NoteInput{Title: "gone", Archived: true, Pinned: true})

	var titles []string
	for _, n := range s.ActiveNotes(false) {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"b", "c", "a"}, titles)

	pinned := s.ActiveNotes(true)
	require.Len(t, pinned, 1)
	assert.Equal(t, b.ID, pinned[0].ID)
}

func TestSortedPrompts(t *testing.T) {
	s, _, clock := newTestStore(t)
	beta, _ := s.CreatePrompt(models.PromptInput{Title: "beta"})
	clock.Advance(time.Second)
	alpha, _ := s.CreatePrompt(models.PromptInput{Title: "Alpha"})
	clock.Advance(time.Second)
	gamma, _ := s.CreatePrompt(models.PromptInput{Title: "gamma"})
	s.IncrementPromptUsage(beta.ID)
	s.IncrementPromptUsage(beta.ID)
	s.IncrementPromptUsage(alpha.ID)

	ids := func(ps []models.Prompt) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}
	assert.Equal(t, []string{gamma.ID, alpha.ID, beta.ID}, ids(s.SortedPrompts(PromptSortRecent)))
	assert.Equal(t, []string{beta.ID, alpha.ID, gamma.ID}, ids(s.SortedPrompts(PromptSortUsed)))
	assert.Equal(t, []string{alpha.ID, beta.ID, gamma.ID}, ids(s.SortedPrompts(PromptSortAlpha)))
}

func TestToday(t *testing.T) {
	s, _, clock := newTestStore(t)
	now := clock.Now()

	_, _ = s.CreateTask(models.TaskInput{Title: "late", DueDate: ptrTime(now.AddDate(0, 0, -1))})
	_, _ = s.CreateTask(models.TaskInput{Title: "tonight", DueDate: ptrTime(now.Add(10 * time.Hour))})
	_, _ = s.CreateTask(models.TaskInput{Title: "next week", DueDate: ptrTime(now.AddDate(0, 0, 6))})
	_, _ = s.CreateTask(models.TaskInput{Title: "done", DueDate: ptrTime(now), Completed: true})
	for i := 0; i < 4; i++ {
		_, _ = s.CreateNote(models.NoteInput{Pinned: true})
	}
	_, _ = s.CreateDoc(models.DocInput{Title: "old"})
	clock.Advance(24 * time.Hour)
	for _, title := range []string{"d1", "d2", "d3"} {
		clock.Advance(time.Minute)
		_, _ = s.CreateDoc(models.DocInput{Title: title})
	}

	sum := s.Today()
	assert.ElementsMatch(t, []string{"late", "tonight"}, taskTitles(sum.DueTasks))
	assert.Len(t, sum.PinnedNotes, 3)
	require.Len(t, sum.RecentDocs, 3)
	assert.Equal(t, "d3", sum.RecentDocs[0].Title)
	assert.Equal(t, 3, sum.PendingTasks)
	assert.Equal(t, 3, sum.DocsUpdatedToday)
}

func TestSearch(t *testing.T) {
	s, _, _ := newTestStore(t)
	n, _ := s.CreateNote(models.NoteInput{Title: "Groceries", Body: "buy MILK"})
	_, _ = s.CreateNote(models.NoteInput{Title: "milk archive", Archived: true})
	tk, _ := s.CreateTask(models.TaskInput{Title: "call", Tags: []string{"milkman"}})
	l, _ := s.CreateLink(models.LinkInput{URL: "https://milk.example"})
	d, _ := s.CreateDoc(models.DocInput{Title: "doc", Content: content.Doc(content.Para("oat milk recipe"))})
	p, _ := s.CreatePrompt(models.PromptInput{Template: "write about {{milk}}"})

	got := s.Search("  Milk ")
	assert.Equal(t, []SearchResult{
		{CollectionNotes, n.ID, "Groceries"},
		{CollectionTasks, tk.ID, "call"},
		{CollectionLinks, l.ID, "Untitled"},
		{CollectionDocs, d.ID, "doc"},
		{CollectionPrompts, p.ID, "Untitled"},
	}, got)

	assert.Empty(t, s.Search(""))
}

func TestBackup(t *testing.T) {
	s, _, clock := newTestStore(t)
	_, _ = s.CreateNote(models.NoteInput{Title: "n"})

	b := s.Backup()
	assert.Len(t, b.Notes, 1)
	assert.NotNil(t, b.Tasks)
	assert.True(t, b.ExportedAt.Equal(clock.Now()))
	assert.Equal(t, "workspace-backup-2026-03-10.json", models.BackupFilename(b.ExportedAt))
}
