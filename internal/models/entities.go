package models

import (
	"time"

	"github.com/starford/workbench/internal/content"
)

// Note is a short free-form note.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"content"`
	Color     NoteColor `json:"color"`
	Pinned    bool      `json:"pinned"`
	Archived  bool      `json:"archived"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Task is a to-do item.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate"`
	Priority  Priority   `json:"priority"`
	Project   string     `json:"project,omitempty"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Link is a saved bookmark. Video fields are derived from the URL once, at
// creation time.
type Link struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Favicon     string        `json:"favicon"`
	Image       string        `json:"image,omitempty"`
	Collection  string        `json:"collection,omitempty"`
	Tags        []string      `json:"tags"`
	Archived    bool          `json:"archived"`
	IsVideo     bool          `json:"isVideo"`
	VideoType   VideoProvider `json:"videoType,omitempty"`
	VideoID     string        `json:"videoId,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Doc is a rich-text document.
type Doc struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   content.Node `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Prompt is a reusable prompt template. Variables is always derived from
// Template and never edited directly.
type Prompt struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Template   string         `json:"content"`
	Category   PromptCategory `json:"category"`
	Variables  []string       `json:"variables"`
	UsageCount int            `json:"usageCount"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// DisplayTitle returns title, or "Untitled" when it is blank. Storage keeps
// the empty value.
func DisplayTitle(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}

// cloneTags copies a tag slice so entities never share backing arrays with
// callers.
func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// Clone returns a deep copy of n.
func (n Note) Clone() Note {
	n.Tags = cloneTags(n.Tags)
	return n
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.Tags = cloneTags(t.Tags)
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// Clone returns a deep copy of l.
func (l Link) Clone() Link {
	l.Tags = cloneTags(l.Tags)
	return l
}

// Clone returns a copy of d. The content tree is treated as immutable once
// stored, so it is shared.
func (d Doc) Clone() Doc {
	return d
}

// Clone returns a deep copy of p.
func (p Prompt) Clone() Prompt {
	p.Variables = cloneTags(p.Variables)
	return p
}
