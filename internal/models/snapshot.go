package models

import "time"

// Snapshot is the durable subset of workspace state. Transient UI flags
// (sidebar, command palette) are not part of it.
type Snapshot struct {
	Notes       []Note   `json:"notes"`
	Tasks       []Task   `json:"tasks"`
	Links       []Link   `json:"links"`
	Docs        []Doc    `json:"docs"`
	Prompts     []Prompt `json:"prompts"`
	Theme       Theme    `json:"theme"`
	CurrentView View     `json:"currentView"`
}

// Normalize replaces nil collections with empty ones and unknown enum values
// with their defaults, so that a partially written or older blob still loads.
// Prompt variables are always rederived from the template.
func (s *Snapshot) Normalize() {
	if s.Notes == nil {
		s.Notes = []Note{}
	}
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.Links == nil {
		s.Links = []Link{}
	}
	if s.Docs == nil {
		s.Docs = []Doc{}
	}
	if s.Prompts == nil {
		s.Prompts = []Prompt{}
	}
	for i := range s.Prompts {
		s.Prompts[i].Variables = ExtractVariables(s.Prompts[i].Template)
	}
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		s.Theme = ThemeLight
	}
	switch s.CurrentView {
	case ViewToday, ViewNotes, ViewTasks, ViewLinks, ViewDocs, ViewPrompts, ViewSettings, ViewArchive:
	default:
		s.CurrentView = ViewToday
	}
}

// Backup is the full-workspace export file.
type Backup struct {
	Notes      []Note    `json:"notes"`
	Tasks      []Task    `json:"tasks"`
	Links      []Link    `json:"links"`
	Docs       []Doc     `json:"docs"`
	Prompts    []Prompt  `json:"prompts"`
	ExportedAt time.Time `json:"exportedAt"`
}

// BackupFilename returns the download name for a backup taken at t.
func BackupFilename(t time.Time) string {
	return "workspace-backup-" + t.UTC().Format("2006-01-02") + ".json"
}
