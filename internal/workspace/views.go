package workspace

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/workbench/internal/apperr"
	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
)

// upcomingWindow is how far ahead a due date counts as upcoming.
const upcomingWindow = 7 * 24 * time.Hour

// ActiveNotes returns non-archived notes, pinned ones first. Within each
// group the creation order is kept.
func (s *Store) ActiveNotes(pinnedOnly bool) []models.Note {
	all := s.Notes()
	pinned := make([]models.Note, 0, len(all))
	rest := make([]models.Note, 0, len(all))
	for _, n := range all {
		switch {
		case n.Archived:
		case n.Pinned:
			pinned = append(pinned, n)
		case !pinnedOnly:
			rest = append(rest, n)
		}
	}
	return append(pinned, rest...)
}

// ArchivedNotes returns archived notes.
func (s *Store) ArchivedNotes() []models.Note {
	return filter(s.Notes(), func(n models.Note) bool { return n.Archived })
}

// ActiveLinks returns non-archived links.
func (s *Store) ActiveLinks() []models.Link {
	return filter(s.Links(), func(l models.Link) bool { return !l.Archived })
}

// ArchivedLinks returns archived links.
func (s *Store) ArchivedLinks() []models.Link {
	return filter(s.Links(), func(l models.Link) bool { return l.Archived })
}

// TaskFilter narrows a task listing.
type TaskFilter string

const (
	TaskFilterAll       TaskFilter = "all"
	TaskFilterActive    TaskFilter = "active"
	TaskFilterCompleted TaskFilter = "completed"
)

// ParseTaskFilter maps "" to TaskFilterAll and rejects unknown values.
func ParseTaskFilter(v string) (TaskFilter, error) {
	switch f := TaskFilter(v); f {
	case "":
		return TaskFilterAll, nil
	case TaskFilterAll, TaskFilterActive, TaskFilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown task filter %q", apperr.ErrInvalidInput, v)
}

// FilterTasks returns the tasks matching f.
func (s *Store) FilterTasks(f TaskFilter) []models.Task {
	return filter(s.Tasks(), func(t models.Task) bool {
		switch f {
		case TaskFilterActive:
			return !t.Completed
		case TaskFilterCompleted:
			return t.Completed
		}
		return true
	})
}

// TaskGroups partitions tasks by urgency. Every task lands in exactly one
// group.
type TaskGroups struct {
	Overdue   []models.Task `json:"overdue"`
	Today     []models.Task `json:"today"`
	Upcoming  []models.Task `json:"upcoming"`
	Later     []models.Task `json:"later"`
	NoDueDate []models.Task `json:"noDueDate"`
	Completed []models.Task `json:"completed"`
}

// GroupTasks groups the tasks matching f relative to the store clock.
// Overdue means due before today; upcoming means due after today and within
// seven days from now.
func (s *Store) GroupTasks(f TaskFilter) TaskGroups {
	now := s.now()
	startOfToday := startOfDay(now)
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)
	horizon := now.Add(upcomingWindow)

	g := TaskGroups{
		Overdue:   []models.Task{},
		Today:     []models.Task{},
		Upcoming:  []models.Task{},
		Later:     []models.Task{},
		NoDueDate: []models.Task{},
		Completed: []models.Task{},
	}
	for _, t := range s.FilterTasks(f) {
		switch {
		case t.Completed:
			g.Completed = append(g.Completed, t)
		case t.DueDate == nil:
			g.NoDueDate = append(g.NoDueDate, t)
		case t.DueDate.Before(startOfToday):
			g.Overdue = append(g.Overdue, t)
		case t.DueDate.Before(startOfTomorrow):
			g.Today = append(g.Today, t)
		case !t.DueDate.After(horizon):
			g.Upcoming = append(g.Upcoming, t)
		default:
			g.Later = append(g.Later, t)
		}
	}
	return g
}

// PromptSort orders a prompt listing.
type PromptSort string

const (
	PromptSortRecent PromptSort = "recent"
	PromptSortUsed   PromptSort = "used"
	PromptSortAlpha  PromptSort = "alpha"
)

// ParsePromptSort maps "" to PromptSortRecent and rejects unknown values.
func ParsePromptSort(v string) (PromptSort, error) {
	switch p := PromptSort(v); p {
	case "":
		return PromptSortRecent, nil
	case PromptSortRecent, PromptSortUsed, PromptSortAlpha:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown prompt sort %q", apperr.ErrInvalidInput, v)
}

// SortedPrompts returns prompts ordered by creation time (newest first), by
// usage count (highest first), or by title.
func (s *Store) SortedPrompts(by PromptSort) []models.Prompt {
	out := s.Prompts()
	switch by {
	case PromptSortUsed:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UsageCount > out[j].UsageCount })
	case PromptSortAlpha:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

// TodaySummary is the landing screen.
type TodaySummary struct {
	DueTasks         []models.Task `json:"dueTasks"`
	PinnedNotes      []models.Note `json:"pinnedNotes"`
	RecentDocs       []models.Doc  `json:"recentDocs"`
	PendingTasks     int           `json:"pendingTasks"`
	DocsUpdatedToday int           `json:"docsUpdatedToday"`
}

const todayListLimit = 3

// Today returns incomplete tasks due today or earlier, up to three pinned
// active notes, the three most recently updated documents and two counters.
func (s *Store) Today() TodaySummary {
	now := s.now()
	startOfTomorrow := startOfDay(now).AddDate(0, 0, 1)
	startOfToday := startOfDay(now)

	sum := TodaySummary{
		DueTasks:    []models.Task{},
		PinnedNotes: []models.Note{},
	}
	for _, t := range s.Tasks() {
		if t.Completed {
			continue
		}
		sum.PendingTasks++
		if t.DueDate != nil && t.DueDate.Before(startOfTomorrow) {
			sum.DueTasks = append(sum.DueTasks, t)
		}
	}
	for _, n := range s.Notes() {
		if n.Pinned && !n.Archived && len(sum.PinnedNotes) < todayListLimit {
			sum.PinnedNotes = append(sum.PinnedNotes, n)
		}
	}

	docs := s.Docs()
	for _, d := range docs {
		if !d.UpdatedAt.Before(startOfToday) && d.UpdatedAt.Before(startOfTomorrow) {
			sum.DocsUpdatedToday++
		}
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].UpdatedAt.After(docs[j].UpdatedAt) })
	if len(docs) > todayListLimit {
		docs = docs[:todayListLimit]
	}
	sum.RecentDocs = docs
	return sum
}

// SearchResult is one match of a workspace search.
type SearchResult struct {
	Collection Collection `json:"collection"`
	ID         string     `json:"id"`
	Title      string     `json:"title"`
}

// Search returns non-archived entities whose text fields contain q, ignoring
// case. Results are grouped by collection in the order notes, tasks, links,
// docs, prompts. An empty query matches nothing.
func (s *Store) Search(q string) []SearchResult {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []SearchResult{}
	if q == "" {
		return out
	}
	match := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	for _, n := range s.Notes() {
		if !n.Archived && match(append([]string{n.Title, n.Body}, n.Tags...)...) {
			out = append(out, SearchResult{CollectionNotes, n.ID, models.DisplayTitle(n.Title)})
		}
	}
	for _, t := range s.Tasks() {
		if match(append([]string{t.Title, t.Project}, t.Tags...)...) {
			out = append(out, SearchResult{CollectionTasks, t.ID, models.DisplayTitle(t.Title)})
		}
	}
	for _, l := range s.Links() {
		if !l.Archived && match(append([]string{l.Title, l.URL, l.Description}, l.Tags...)...) {
			out = append(out, SearchResult{CollectionLinks, l.ID, models.DisplayTitle(l.Title)})
		}
	}
	for _, d := range s.Docs() {
		if match(d.Title, content.PlainText(d.Content)) {
			out = append(out, SearchResult{CollectionDocs, d.ID, models.DisplayTitle(d.Title)})
		}
	}
	for _, p := range s.Prompts() {
		if match(p.Title, p.Template, string(p.Category)) {
			out = append(out, SearchResult{CollectionPrompts, p.ID, models.DisplayTitle(p.Title)})
		}
	}
	return out
}

// Backup returns the full-workspace export stamped with the current time.
func (s *Store) Backup() models.Backup {
	snap := s.Snapshot()
	return models.Backup{
		Notes:      snap.Notes,
		Tasks:      snap.Tasks,
		Links:      snap.Links,
		Docs:       snap.Docs,
		Prompts:    snap.Prompts,
		ExportedAt: s.now().UTC(),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Stats counts entities for dashboards.
type Stats struct {
	Notes        int `json:"notes"`
	Tasks        int `json:"tasks"`
	PendingTasks int `json:"pendingTasks"`
	Links        int `json:"links"`
	Docs         int `json:"docs"`
	Prompts      int `json:"prompts"`
	Archived     int `json:"archived"`
}

// Stats returns collection sizes. Notes and Links count active entities only.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Tasks:   len(s.tasks),
		Docs:    len(s.docs),
		Prompts: len(s.prompts),
	}
	for _, n := range s.notes {
		if n.Archived {
			st.Archived++
		} else {
			st.Notes++
		}
	}
	for _, l := range s.links {
		if l.Archived {
			st.Archived++
		} else {
			st.Links++
		}
	}
	for _, t := range s.tasks {
		if !t.Completed {
			st.PendingTasks++
		}
	}
	return st
}
