package workspace

import (
	"time"

	"github.com/starford/workbench/internal/models"
)

func noteID(n *models.Note) string { return n.ID }

// CreateNote prepends a new note and returns a copy of it.
func (s *Store) CreateNote(in models.NoteInput) (models.Note, error) {
	if err := in.Validate(); err != nil {
		return models.Note{}, invalid(err)
	}
	var created models.Note
	_ = s.mutate(func() []Event {
		now := s.stamp(time.Time{})
		created = models.Note{
			ID:        s.newID(),
			Title:     in.Title,
			Body:      in.Body,
			Color:     in.Color,
			Pinned:    in.Pinned,
			Archived:  in.Archived,
			Tags:      in.Tags,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if created.Color == "" {
			created.Color = models.ColorNeutral
		}
		created = created.Clone()
		s.notes = prepend(s.notes, created)
		return []Event{{Collection: CollectionNotes, Kind: KindCreated, ID: created.ID}}
	})
	return created.Clone(), nil
}

// Note returns the note with id.
func (s *Store) Note(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.notes, id, noteID); i >= 0 {
		return s.notes[i].Clone(), true
	}
	return models.Note{}, false
}

// Notes returns every note, most recently created first.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.notes, models.Note.Clone)
}

// UpdateNote merges p into the note. It reports false, without error, when
// id is unknown.
func (s *Store) UpdateNote(id string, p models.NotePatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, invalid(err)
	}
	return s.editNote(id, p.Apply), nil
}

// DeleteNote removes the note permanently.
func (s *Store) DeleteNote(id string) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.notes, id, noteID)
		if i < 0 {
			return nil
		}
		found = true
		s.notes = removeAt(s.notes, i)
		return []Event{{Collection: CollectionNotes, Kind: KindDeleted, ID: id}}
	})
	return found
}

// TogglePinNote flips the pinned flag.
func (s *Store) TogglePinNote(id string) bool {
	return s.editNote(id, func(n *models.Note) { n.Pinned = !n.Pinned })
}

// ArchiveNote marks the note archived. Archiving twice is harmless.
func (s *Store) ArchiveNote(id string) bool {
	return s.editNote(id, func(n *models.Note) { n.Archived = true })
}

// RestoreNote clears the archived flag.
func (s *Store) RestoreNote(id string) bool {
	return s.editNote(id, func(n *models.Note) { n.Archived = false })
}

func (s *Store) editNote(id string, fn func(*models.Note)) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.notes, id, noteID)
		if i < 0 {
			return nil
		}
		found = true
		n := &s.notes[i]
		fn(n)
		n.UpdatedAt = s.stamp(n.UpdatedAt)
		return []Event{{Collection: CollectionNotes, Kind: KindUpdated, ID: id}}
	})
	return found
}
