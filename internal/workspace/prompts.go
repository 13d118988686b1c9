package workspace

import (
	"fmt"
	"time"

	"github.com/starford/workbench/internal/apperr"
	"github.com/starford/workbench/internal/models"
)

func promptID(p *models.Prompt) string { return p.ID }

// CreatePrompt prepends a new prompt. Variables are derived from the
// template and the usage counter starts at zero.
func (s *Store) CreatePrompt(in models.PromptInput) (models.Prompt, error) {
	if err := in.Validate(); err != nil {
		return models.Prompt{}, invalid(err)
	}
	var created models.Prompt
	_ = s.mutate(func() []Event {
		now := s.stamp(time.Time{})
		created = models.Prompt{
			ID:        s.newID(),
			Title:     in.Title,
			Template:  in.Template,
			Category:  in.Category,
			Variables: models.ExtractVariables(in.Template),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if created.Category == "" {
			created.Category = models.CategoryOther
		}
		s.prompts = prepend(s.prompts, created)
		return []Event{{Collection: CollectionPrompts, Kind: KindCreated, ID: created.ID}}
	})
	return created.Clone(), nil
}

// Prompt returns the prompt with id.
func (s *Store) Prompt(id string) (models.Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.prompts, id, promptID); i >= 0 {
		return s.prompts[i].Clone(), true
	}
	return models.Prompt{}, false
}

// Prompts returns every prompt, most recently created first.
func (s *Store) Prompts() []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.prompts, models.Prompt.Clone)
}

// UpdatePrompt merges p into the prompt, recomputing variables when the
// template changes.
func (s *Store) UpdatePrompt(id string, p models.PromptPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, invalid(err)
	}
	return s.editPrompt(id, p.Apply), nil
}

// DeletePrompt removes the prompt permanently.
func (s *Store) DeletePrompt(id string) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.prompts, id, promptID)
		if i < 0 {
			return nil
		}
		found = true
		s.prompts = removeAt(s.prompts, i)
		return []Event{{Collection: CollectionPrompts, Kind: KindDeleted, ID: id}}
	})
	return found
}

// IncrementPromptUsage bumps the usage counter.
func (s *Store) IncrementPromptUsage(id string) bool {
	return s.editPrompt(id, func(p *models.Prompt) { p.UsageCount++ })
}

// FillPrompt substitutes values into the prompt's template and counts the
// use. Placeholders without a value are kept.
func (s *Store) FillPrompt(id string, values map[string]string) (string, error) {
	var out string
	found := s.editPrompt(id, func(p *models.Prompt) {
		out = models.FillTemplate(p.Template, values)
		p.UsageCount++
	})
	if !found {
		return "", fmt.Errorf("store: fill prompt %s: %w", id, apperr.ErrNotFound)
	}
	return out, nil
}

func (s *Store) editPrompt(id string, fn func(*models.Prompt)) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.prompts, id, promptID)
		if i < 0 {
			return nil
		}
		found = true
		p := &s.prompts[i]
		fn(p)
		p.UpdatedAt = s.stamp(p.UpdatedAt)
		return []Event{{Collection: CollectionPrompts, Kind: KindUpdated, ID: id}}
	})
	return found
}
