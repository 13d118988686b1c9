// Package models defines the domain types for the workspace.
package models

// NoteColor is the color tag of a note.
type NoteColor string

const (
	ColorBlue    NoteColor = "blue"
	ColorGreen   NoteColor = "green"
	ColorYellow  NoteColor = "yellow"
	ColorPink    NoteColor = "pink"
	ColorPurple  NoteColor = "purple"
	ColorNeutral NoteColor = "neutral"
)

// NoteColors lists the palette in display order.
var NoteColors = []NoteColor{ColorBlue, ColorGreen, ColorYellow, ColorPink, ColorPurple, ColorNeutral}

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PromptCategory groups prompt templates.
type PromptCategory string

const (
	CategoryWriting       PromptCategory = "writing"
	CategoryCoding        PromptCategory = "coding"
	CategoryBrainstorming PromptCategory = "brainstorming"
	CategoryOther         PromptCategory = "other"
)

// View identifies a top-level screen.
type View string

const (
	ViewToday    View = "today"
	ViewNotes    View = "notes"
	ViewTasks    View = "tasks"
	ViewLinks    View = "links"
	ViewDocs     View = "docs"
	ViewPrompts  View = "prompts"
	ViewSettings View = "settings"
	ViewArchive  View = "archive"
)

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// VideoProvider names a recognised video host.
type VideoProvider string

const (
	VideoYouTube VideoProvider = "youtube"
	VideoVimeo   VideoProvider = "vimeo"
)

func enumValues[T ~string](vals ...T) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

var (
	colorValues    = enumValues(NoteColors...)
	priorityValues = enumValues(PriorityLow, PriorityMedium, PriorityHigh)
	categoryValues = enumValues(CategoryWriting, CategoryCoding, CategoryBrainstorming, CategoryOther)
	viewValues     = enumValues(ViewToday, ViewNotes, ViewTasks, ViewLinks, ViewDocs, ViewPrompts, ViewSettings, ViewArchive)
	themeValues    = enumValues(ThemeLight, ThemeDark, ThemeSystem)
)
