package workspace

import (
	"time"

	"github.com/starford/workbench/internal/models"
)

func taskID(t *models.Task) string { return t.ID }

// CreateTask prepends a new task and returns a copy of it.
func (s *Store) CreateTask(in models.TaskInput) (models.Task, error) {
	if err := in.Validate(); err != nil {
		return models.Task{}, invalid(err)
	}
	var created models.Task
	_ = s.mutate(func() []Event {
		now := s.stamp(time.Time{})
		created = models.Task{
			ID:        s.newID(),
			Title:     in.Title,
			Completed: in.Completed,
			DueDate:   in.DueDate,
			Priority:  in.Priority,
			Project:   in.Project,
			Tags:      in.Tags,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if created.Priority == "" {
			created.Priority = models.PriorityMedium
		}
		created = created.Clone()
		s.tasks = prepend(s.tasks, created)
		return []Event{{Collection: CollectionTasks, Kind: KindCreated, ID: created.ID}}
	})
	return created.Clone(), nil
}

// Task returns the task with id.
func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.tasks, id, taskID); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

// Tasks returns every task, most recently created first.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.tasks, models.Task.Clone)
}

// UpdateTask merges p into the task.
func (s *Store) UpdateTask(id string, p models.TaskPatch) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, invalid(err)
	}
	return s.editTask(id, p.Apply), nil
}

// DeleteTask removes the task permanently.
func (s *Store) DeleteTask(id string) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.tasks, id, taskID)
		if i < 0 {
			return nil
		}
		found = true
		s.tasks = removeAt(s.tasks, i)
		return []Event{{Collection: CollectionTasks, Kind: KindDeleted, ID: id}}
	})
	return found
}

// ToggleTaskComplete flips the completed flag.
func (s *Store) ToggleTaskComplete(id string) bool {
	return s.editTask(id, func(t *models.Task) { t.Completed = !t.Completed })
}

func (s *Store) editTask(id string, fn func(*models.Task)) bool {
	var found bool
	_ = s.mutate(func() []Event {
		i := indexByID(s.tasks, id, taskID)
		if i < 0 {
			return nil
		}
		found = true
		t := &s.tasks[i]
		fn(t)
		t.UpdatedAt = s.stamp(t.UpdatedAt)
		return []Event{{Collection: CollectionTasks, Kind: KindUpdated, ID: id}}
	})
	return found
}
