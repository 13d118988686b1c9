package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/starford/workbench/internal/apperr"
	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/models"
)

// Lookup returns the stored document with the given id.
type Lookup func(id string) (models.Doc, bool)

// Pool keeps at most one session per document, opening them on first use.
type Pool struct {
	committer Committer
	lookup    Lookup
	opts      []Option

	mu       sync.Mutex
	sessions map[string]*Session
	lastUsed map[string]time.Time
}

// NewPool returns a pool whose sessions commit to c and use opts.
func NewPool(c Committer, lookup Lookup, opts ...Option) *Pool {
	return &Pool{
		committer: c,
		lookup:    lookup,
		opts:      opts,
		sessions:  make(map[string]*Session),
		lastUsed:  make(map[string]time.Time),
	}
}

func (p *Pool) session(id string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[id]; ok {
		p.lastUsed[id] = time.Now()
		return s, nil
	}
	doc, ok := p.lookup(id)
	if !ok {
		return nil, fmt.Errorf("editor: open %s: %w", id, apperr.ErrNotFound)
	}
	s := Open(p.committer, doc, p.opts...)
	p.sessions[id] = s
	p.lastUsed[id] = time.Now()
	return s, nil
}

// Edit applies an edit to the document's session.
func (p *Pool) Edit(id, title string, body content.Node) (State, error) {
	s, err := p.session(id)
	if err != nil {
		return State{}, err
	}
	s.Edit(title, body)
	return s.State(), nil
}

// State reports the document's session state.
func (p *Pool) State(id string) (State, error) {
	s, err := p.session(id)
	if err != nil {
		return State{}, err
	}
	return s.State(), nil
}

// Flush commits the document's pending edits now. A failed commit is
// reported in the returned state as well as the error.
func (p *Pool) Flush(id string) (State, error) {
	s, err := p.session(id)
	if err != nil {
		return State{}, err
	}
	err = s.Flush()
	return s.State(), err
}

// Release closes the document's session, committing pending edits.
// Unknown ids are ignored.
func (p *Pool) Release(id string) error {
	p.mu.Lock()
	s, ok := p.sessions[id]
	delete(p.sessions, id)
	delete(p.lastUsed, id)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close()
}

// ReleaseIdle closes every session last used before cutoff, committing its
// pending edits. It returns how many sessions were closed.
func (p *Pool) ReleaseIdle(cutoff time.Time) (int, error) {
	p.mu.Lock()
	var idle []*Session
	for id, used := range p.lastUsed {
		if used.Before(cutoff) {
			idle = append(idle, p.sessions[id])
			delete(p.sessions, id)
			delete(p.lastUsed, id)
		}
	}
	p.mu.Unlock()

	var errs []error
	for _, s := range idle {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return len(idle), errors.Join(errs...)
}

// Reap releases sessions idle for longer than maxIdle until ctx is done.
// A non-positive maxIdle disables reaping.
func (p *Pool) Reap(ctx context.Context, maxIdle time.Duration) error {
	if maxIdle <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			// Commit failures stay visible in the store's persist error.
			_, _ = p.ReleaseIdle(now.Add(-maxIdle))
		}
	}
}

// Len returns the number of open sessions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Close releases every session.
func (p *Pool) Close() error {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = make(map[string]*Session)
	p.lastUsed = make(map[string]time.Time)
	p.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
