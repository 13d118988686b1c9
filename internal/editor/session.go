// Package editor manages one document's live editing session: it keeps the
// working copy, counts words, and commits to the store after input has been
// idle for the autosave delay.
package editor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
)

// DefaultDelay is the idle time before an autosave.
const DefaultDelay = 1500 * time.Millisecond

// Status is the save state shown next to the editor.
type Status string

const (
	StatusSaved  Status = "saved"
	StatusSaving Status = "saving"
	StatusError  Status = "error"
)

// Committer persists a document's title and content.
type Committer interface {
	CommitDoc(id, title string, body content.Node) error
}

// State is a point-in-time view of a session.
type State struct {
	DocID       string    `json:"docId"`
	Status      Status    `json:"status"`
	SavedAt     time.Time `json:"savedAt"`
	Error       string    `json:"error,omitempty"`
	WordCount   int       `json:"wordCount"`
	ReadingTime int       `json:"readingTime"`
}

// Option configures a Session.
type Option func(*Session)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithClock replaces time.Now for saved timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger for commit failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is the editing state of one document. It is safe for concurrent
// use; commits are serialized.
type Session struct {
	committer Committer
	docID     string
	delay     time.Duration
	now       func() time.Time
	logger    *slog.Logger

	commitMu sync.Mutex
	timers   sync.WaitGroup

	mu        sync.Mutex
	title     string
	body      content.Node
	words     int
	status    Status
	savedAt   time.Time
	lastErr   error
	gen       uint64
	committed uint64
	timer     *time.Timer
	closed    bool
}

// Open starts a session on doc. The initial status is saved.
func Open(c Committer, doc models.Doc, opts ...Option) *Session {
	s := &Session{
		committer: c,
		docID:     doc.ID,
		delay:     DefaultDelay,
		now:       time.Now,
		logger:    slog.Default(),
		title:     doc.Title,
		body:      doc.Content,
		words:     content.WordCount(doc.Content),
		status:    StatusSaved,
		savedAt:   doc.UpdatedAt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Edit replaces the working title and content and restarts the autosave
// timer. Edits after Close are ignored.
func (s *Session) Edit(title string, body content.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.title = title
	s.body = body
	s.words = content.WordCount(body)
	s.touchLocked()
}

// SetTitle changes only the title.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.title = title
	s.touchLocked()
}

func (s *Session) touchLocked() {
	s.gen++
	s.status = StatusSaving
	s.lastErr = nil
	s.stopTimerLocked()
	s.timers.Add(1)
	s.timer = time.AfterFunc(s.delay, func() {
		defer s.timers.Done()
		_ = s.commit()
	})
}

// stopTimerLocked cancels a pending autosave. A timer that already fired
// releases its own WaitGroup slot.
func (s *Session) stopTimerLocked() {
	if s.timer != nil && s.timer.Stop() {
		s.timers.Done()
	}
	s.timer = nil
}

// Flush commits pending changes now instead of waiting for the timer.
func (s *Session) Flush() error {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()
	return s.commit()
}

// Close flushes pending changes, waits for any running autosave, and stops
// accepting edits.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.stopTimerLocked()
	s.mu.Unlock()
	s.timers.Wait()
	return s.commit()
}

func (s *Session) commit() error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	if s.gen == s.committed {
		s.mu.Unlock()
		return nil
	}
	gen, title, body := s.gen, s.title, s.body
	s.mu.Unlock()

	err := s.committer.CommitDoc(s.docID, title, body)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("editor: commit failed",
			slog.String("doc", s.docID),
			slog.String("error", err.Error()),
		)
		if gen == s.gen {
			s.status = StatusError
			s.lastErr = err
		}
		return err
	}
	s.committed = gen
	if gen == s.gen {
		s.status = StatusSaved
		s.savedAt = s.now().UTC()
	}
	return nil
}

// State returns the current status and counters.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		DocID:       s.docID,
		Status:      s.status,
		SavedAt:     s.savedAt,
		WordCount:   s.words,
		ReadingTime: content.ReadingTime(s.words),
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

// Content returns the working title and content.
func (s *Session) Content() (string, content.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, s.body
}

// Markdown exports the working copy.
func (s *Session) Markdown() string {
	title, body := s.Content()
	return content.ExportMarkdown(models.DisplayTitle(title), body)
}

// HTML exports the working copy as a standalone page.
func (s *Session) HTML() (string, error) {
	title, body := s.Content()
	return content.ExportHTML(models.DisplayTitle(title), body)
}
