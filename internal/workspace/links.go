package workspace

import (
	"time"

	"github.com/starford/workbench/internal/linkmeta"
	"github.com/starford/workbench/internal/models"
)

func linkID(l *models.Link) string { return l.ID }

// CreateLink prepends a new link. The URL is stored as given; video
// classification is derived from it here and never recomputed.
func (s *Store) CreateLink(in models.LinkInput) (models.Link, error) {
	if err := in.Validate(); err != nil {
		return models.Link{}, invalid(err)
	}
	video := models.ClassifyVideo(in.URL)
	var created models.Link
	_ = s.mutate(func() []Event {
		now := s.stamp(time.Time{})
		created = models.Link{
			ID:          s.newID(),
			URL:         in.URL,
			Title:       in.Title,
			Description: in.Description,
			Favicon:     in.Favicon,
			Image:       in.Image,
			Collection:  in.Collection,
			Tags:        in.Tags,
			Archived:    in.Archived,
			IsVideo:     video.IsVideo,
			VideoType:   video.Provider,
			VideoID:     video.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created = created.Clone()
		s.links = prepend(s.links, created)
		return []Event{{Collection: CollectionLinks, Kind: KindCreated, ID: created.ID}}
	})
	return created.Clone(), nil
}

// Link returns the link with id.
func (s *Store) Link(id string) (models.Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.links, id, linkID); i >= 0 {
		return s.links[i].Clone(), true
	}
	return models.Link{}, false
}

// Links returns every link, most recently created first.
func (s *Store) Links() []models.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.links, models.Link.Clone)
}

// UpdateLink merges p into the link.
func (s *Store) UpdateLink(id string, p models.LinkPatch) bool {
	return s.editLink(id, p.Apply)
}

// DeleteLink removes the link permanently.
func (s *Store) DeleteLink(id string) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.links, id, linkID)
		if i < 0 {
			return nil
		}
		found = true
		s.links = removeAt(s.links, i)
		return []Event{{Collection: CollectionLinks, Kind: KindDeleted, ID: id}}
	})
	return found
}

// ArchiveLink marks the link archived.
func (s *Store) ArchiveLink(id string) bool {
	return s.editLink(id, func(l *models.Link) { l.Archived = true })
}

// RestoreLink clears the archived flag.
func (s *Store) RestoreLink(id string) bool {
	return s.editLink(id, func(l *models.Link) { l.Archived = false })
}

// ApplyLinkMetadata fills preview fields on the link from fetched. A field is
// written only while it still holds the value recorded in saved, so edits
// made after the save win over late metadata. Nothing is written when the
// link is gone or no longer points at url. It reports whether any field
// changed.
func (s *Store) ApplyLinkMetadata(id, url string, saved, fetched linkmeta.Metadata) bool {
	var applied bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.links, id, linkID)
		if i < 0 || s.links[i].URL != url {
			return nil
		}
		l := &s.links[i]
		fill := func(dst *string, was, v string) {
			if v != "" && *dst == was && *dst != v {
				*dst = v
				applied = true
			}
		}
		fill(&l.Title, saved.Title, fetched.Title)
		fill(&l.Description, saved.Description, fetched.Description)
		fill(&l.Image, saved.Image, fetched.Image)
		fill(&l.Favicon, saved.Favicon, fetched.Favicon)
		if !applied {
			return nil
		}
		l.UpdatedAt = s.stamp(l.UpdatedAt)
		return []Event{{Collection: CollectionLinks, Kind: KindUpdated, ID: id}}
	})
	return applied
}

func (s *Store) editLink(id string, fn func(*models.Link)) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.links, id, linkID)
		if i < 0 {
			return nil
		}
		found = true
		l := &s.links[i]
		fn(l)
		l.UpdatedAt = s.stamp(l.UpdatedAt)
		return []Event{{Collection: CollectionLinks, Kind: KindUpdated, ID: id}}
	})
	return found
}
