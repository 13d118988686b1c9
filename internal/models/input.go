package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/workbench/internal/content"
)

// NoteInput holds the caller-provided fields of a new note.
type NoteInput struct {
	Title    string    `json:"title"`
	Body     string    `json:"content"`
	Color    NoteColor `json:"color"`
	Pinned   bool      `json:"pinned"`
	Archived bool      `json:"archived"`
	Tags     []string  `json:"tags"`
}

// Validate checks enumerated fields. Empty titles are allowed.
func (in NoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Color, validation.In(colorValues...)),
	)
}

// TaskInput holds the caller-provided fields of a new task.
type TaskInput struct {
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate"`
	Priority  Priority   `json:"priority"`
	Project   string     `json:"project"`
	Tags      []string   `json:"tags"`
}

// Validate checks enumerated fields.
func (in TaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Priority, validation.In(priorityValues...)),
	)
}

// LinkInput holds the caller-provided fields of a new link.
type LinkInput struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Favicon     string   `json:"favicon"`
	Image       string   `json:"image"`
	Collection  string   `json:"collection"`
	Tags        []string `json:"tags"`
	Archived    bool     `json:"archived"`
}

// Validate requires a URL.
func (in LinkInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.URL, validation.Required),
	)
}

// DocInput holds the caller-provided fields of a new document.
type DocInput struct {
	Title   string       `json:"title"`
	Content content.Node `json:"content"`
}

// PromptInput holds the caller-provided fields of a new prompt. Variables and
// usage count are derived.
type PromptInput struct {
	Title    string         `json:"title"`
	Template string         `json:"content"`
	Category PromptCategory `json:"category"`
}

// Validate checks enumerated fields.
func (in PromptInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Category, validation.In(categoryValues...)),
	)
}

// NotePatch lists the note fields to change; nil fields are left untouched.
type NotePatch struct {
	Title    *string    `json:"title"`
	Body     *string    `json:"content"`
	Color    *NoteColor `json:"color"`
	Pinned   *bool      `json:"pinned"`
	Archived *bool      `json:"archived"`
	Tags     *[]string  `json:"tags"`
}

// Validate checks enumerated fields.
func (p NotePatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Color, validation.In(colorValues...)),
	)
}

// Apply merges the patch into n.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.Pinned != nil {
		n.Pinned = *p.Pinned
	}
	if p.Archived != nil {
		n.Archived = *p.Archived
	}
	if p.Tags != nil {
		n.Tags = cloneTags(*p.Tags)
	}
}

// TaskPatch lists the task fields to change. ClearDueDate removes the due
// date and wins over DueDate.
type TaskPatch struct {
	Title        *string    `json:"title"`
	Completed    *bool      `json:"completed"`
	DueDate      *time.Time `json:"dueDate"`
	ClearDueDate bool       `json:"clearDueDate"`
	Priority     *Priority  `json:"priority"`
	Project      *string    `json:"project"`
	Tags         *[]string  `json:"tags"`
}

// Validate checks enumerated fields.
func (p TaskPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Priority, validation.In(priorityValues...)),
	)
}

// Apply merges the patch into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Project != nil {
		t.Project = *p.Project
	}
	if p.Tags != nil {
		t.Tags = cloneTags(*p.Tags)
	}
}

// LinkPatch lists the link fields to change. Changing the URL does not
// reclassify the link as a video.
type LinkPatch struct {
	URL         *string   `json:"url"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Favicon     *string   `json:"favicon"`
	Image       *string   `json:"image"`
	Collection  *string   `json:"collection"`
	Tags        *[]string `json:"tags"`
	Archived    *bool     `json:"archived"`
}

// Apply merges the patch into l.
func (p LinkPatch) Apply(l *Link) {
	if p.URL != nil {
		l.URL = *p.URL
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Favicon != nil {
		l.Favicon = *p.Favicon
	}
	if p.Image != nil {
		l.Image = *p.Image
	}
	if p.Collection != nil {
		l.Collection = *p.Collection
	}
	if p.Tags != nil {
		l.Tags = cloneTags(*p.Tags)
	}
	if p.Archived != nil {
		l.Archived = *p.Archived
	}
}

// DocPatch lists the document fields to change.
type DocPatch struct {
	Title   *string       `json:"title"`
	Content *content.Node `json:"content"`
}

// Apply merges the patch into d.
func (p DocPatch) Apply(d *Doc) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
}

// PromptPatch lists the prompt fields to change. A new template recomputes
// the variable list in the same update.
type PromptPatch struct {
	Title    *string         `json:"title"`
	Template *string         `json:"content"`
	Category *PromptCategory `json:"category"`
}

// Validate checks enumerated fields.
func (p PromptPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Category, validation.In(categoryValues...)),
	)
}

// Apply merges the patch into pr.
func (p PromptPatch) Apply(pr *Prompt) {
	if p.Title != nil {
		pr.Title = *p.Title
	}
	if p.Template != nil {
		pr.Template = *p.Template
		pr.Variables = ExtractVariables(pr.Template)
	}
	if p.Category != nil {
		pr.Category = *p.Category
	}
}

// UIPatch lists navigation and appearance settings to change.
type UIPatch struct {
	CurrentView        *View  `json:"currentView"`
	SidebarOpen        *bool  `json:"sidebarOpen"`
	CommandPaletteOpen *bool  `json:"commandPaletteOpen"`
	Theme              *Theme `json:"theme"`
}

// Validate checks enumerated fields.
func (p UIPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentView, validation.In(viewValues...)),
		validation.Field(&p.Theme, validation.In(themeValues...)),
	)
}
