package workspace

import (
	"fmt"
	"time"

	"github.com/starford/workbench/internal/apperr"
	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
)

func docID(d *models.Doc) string { return d.ID }

// CreateDoc prepends a new document. A zero content tree becomes an empty
// doc node.
func (s *Store) CreateDoc(in models.DocInput) (models.Doc, error) {
	body := in.Content
	if body.Type == "" {
		body = content.Empty()
	}
	var created models.Doc
	_ = s.mutate(func() []Event {
		now := s.stamp(time.Time{})
		created = models.Doc{
			ID:        s.newID(),
			Title:     in.Title,
			Content:   body,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.docs = prepend(s.docs, created)
		return []Event{{Collection: CollectionDocs, Kind: KindCreated, ID: created.ID}}
	})
	return created, nil
}

// Doc returns the document with id.
func (s *Store) Doc(id string) (models.Doc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.docs, id, docID); i >= 0 {
		return s.docs[i].Clone(), true
	}
	return models.Doc{}, false
}

// Docs returns every document, most recently created first.
func (s *Store) Docs() []models.Doc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.docs, models.Doc.Clone)
}

// UpdateDoc merges p into the document.
func (s *Store) UpdateDoc(id string, p models.DocPatch) bool {
	found, _ := s.editDoc(id, p.Apply)
	return found
}

// CommitDoc writes an editing session's title and content back. Unlike the
// other mutations it reports failure: apperr.ErrNotFound when the document
// no longer exists, or the persistence error when the durable write failed.
func (s *Store) CommitDoc(id, title string, body content.Node) error {
	found, err := s.editDoc(id, func(d *models.Doc) {
		d.Title = title
		d.Content = body
	})
	if !found {
		return fmt.Errorf("store: commit doc %s: %w", id, apperr.ErrNotFound)
	}
	return err
}

// DeleteDoc removes the document permanently.
func (s *Store) DeleteDoc(id string) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.docs, id, docID)
		if i < 0 {
			return nil
		}
		found = true
		s.docs = removeAt(s.docs, i)
		return []Event{{Collection: CollectionDocs, Kind: KindDeleted, ID: id}}
	})
	return found
}

func (s *Store) editDoc(id string, fn func(*models.Doc)) (bool, error) {
	var found bool
	err := s.mutate(func() []Event {
		i := indexByID(s.docs, id, docID)
		if i < 0 {
			return nil
		}
		found = true
		d := &s.docs[i]
		fn(d)
		d.UpdatedAt = s.stamp(d.UpdatedAt)
		return []Event{{Collection: CollectionDocs, Kind: KindUpdated, ID: id}}
	})
	return found, err
}
