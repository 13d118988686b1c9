// Package workspace holds the single authoritative copy of the workspace:
// the five entity collections plus navigation state. Every mutation is
// persisted to a storage.Provider and announced to subscribers.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/workbench/internal/apperr"
	"github.com/starford/workbench/internal/checksum"
	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/storage"
)

// DefaultNamespace is the storage key of the persisted workspace.
const DefaultNamespace = "workspace-storage"

const persistTimeout = 5 * time.Second

// Collection names the part of the workspace an event refers to.
type Collection string

const (
	CollectionNotes   Collection = "notes"
	CollectionTasks   Collection = "tasks"
	CollectionLinks   Collection = "links"
	CollectionDocs    Collection = "docs"
	CollectionPrompts Collection = "prompts"
	CollectionUI      Collection = "ui"
	CollectionStorage Collection = "storage"
)

// Kind is what happened.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
	KindError   Kind = "error"
)

// Event describes one state change.
type Event struct {
	Collection Collection `json:"collection"`
	Kind       Kind       `json:"kind"`
	ID         string     `json:"id,omitempty"`
}

// UIState is the navigation and appearance state. Only CurrentView and Theme
// are persisted.
type UIState struct {
	CurrentView        models.View  `json:"currentView"`
	SidebarOpen        bool         `json:"sidebarOpen"`
	CommandPaletteOpen bool         `json:"commandPaletteOpen"`
	Theme              models.Theme `json:"theme"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 identifier source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(s *Store) { s.namespace = ns }
}

// Store is safe for concurrent use. Mutations are serialized, persisted in
// order, and subscribers are notified after the lock is released.
type Store struct {
	mu sync.Mutex

	notes   []models.Note
	tasks   []models.Task
	links   []models.Link
	docs    []models.Doc
	prompts []models.Prompt
	ui      UIState

	provider  storage.Provider
	namespace string
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	lastSum    string
	persistErr error

	subs    map[int]func(Event)
	nextSub int
}

// New returns an empty store in its default UI state. Call Load to restore
// persisted data.
func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider:  provider,
		namespace: DefaultNamespace,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     newUUID,
		subs:      make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func newUUID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v7.String()
}

func (s *Store) reset() {
	s.notes = []models.Note{}
	s.tasks = []models.Task{}
	s.links = []models.Link{}
	s.docs = []models.Doc{}
	s.prompts = []models.Prompt{}
	s.ui = UIState{
		CurrentView: models.ViewToday,
		SidebarOpen: true,
		Theme:       models.ThemeLight,
	}
}

// Load replaces the in-memory state with the persisted snapshot. A missing
// or unreadable blob leaves the store in its default state; the problem is
// logged, never returned.
func (s *Store) Load(ctx context.Context) {
	data, err := s.provider.Load(ctx, s.namespace)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.Info("store: no saved workspace, starting empty", slog.String("namespace", s.namespace))
			return
		}
		s.logger.Warn("store: load failed, starting empty", slog.String("error", err.Error()))
		return
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("store: saved workspace unreadable, starting empty", slog.String("error", err.Error()))
		return
	}
	snap.Normalize()
	s.notes, s.tasks, s.links, s.docs, s.prompts = snap.Notes, snap.Tasks, snap.Links, snap.Docs, snap.Prompts
	s.ui.Theme = snap.Theme
	s.ui.CurrentView = snap.CurrentView
	s.lastSum = checksum.Sum(data)
	s.logger.Info("store: workspace loaded",
		slog.Int("notes", len(s.notes)),
		slog.Int("tasks", len(s.tasks)),
		slog.Int("links", len(s.links)),
		slog.Int("docs", len(s.docs)),
		slog.Int("prompts", len(s.prompts)),
	)
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. fn runs on the mutating goroutine and must not block or
// call back into the store synchronously.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// LastPersistError returns the error of the most recent durable write, or
// nil when it succeeded.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// Snapshot returns a deep copy of the durable state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		Notes:       cloneAll(s.notes, models.Note.Clone),
		Tasks:       cloneAll(s.tasks, models.Task.Clone),
		Links:       cloneAll(s.links, models.Link.Clone),
		Docs:        cloneAll(s.docs, models.Doc.Clone),
		Prompts:     cloneAll(s.prompts, models.Prompt.Clone),
		Theme:       s.ui.Theme,
		CurrentView: s.ui.CurrentView,
	}
}

// mutate runs fn under the lock. When fn reports events, the durable state
// is written and the events are delivered after unlocking. The returned
// error is the persistence error, if any.
func (s *Store) mutate(fn func() []Event) error {
	s.mu.Lock()
	events := fn()
	if len(events) == 0 {
		s.mu.Unlock()
		return nil
	}
	err := s.persistLocked()
	if err != nil {
		events = append(events, Event{Collection: CollectionStorage, Kind: KindError})
	}
	subs := make([]func(Event), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, ev := range events {
		for _, sub := range subs {
			sub(ev)
		}
	}
	return err
}

// persistLocked writes the durable subset unless it is byte-identical to the
// last successful write.
func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		s.persistErr = fmt.Errorf("store: encode workspace: %w", err)
		s.logger.Warn("store: persist failed", slog.String("error", err.Error()))
		return s.persistErr
	}
	sum := checksum.Sum(data)
	if sum == s.lastSum && s.persistErr == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.provider.Save(ctx, s.namespace, data); err != nil {
		s.persistErr = fmt.Errorf("store: persist workspace: %w", err)
		s.logger.Warn("store: persist failed", slog.String("error", err.Error()))
		return s.persistErr
	}
	s.lastSum = sum
	s.persistErr = nil
	return nil
}

// stamp returns the current time, never earlier than prev.
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.now().UTC()
	if now.Before(prev) {
		return prev
	}
	return now
}

func cloneAll[T any](items []T, clone func(T) T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = clone(it)
	}
	return out
}

func indexByID[T any](items []T, id string, key func(*T) string) int {
	for i := range items {
		if key(&items[i]) == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](items []T, i int) []T {
	return append(items[:i:i], items[i+1:]...)
}

func prepend[T any](items []T, item T) []T {
	return append([]T{item}, items...)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
}
