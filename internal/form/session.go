// Package form owns the per-form editing sessions of the web client. A
// Session wraps one recipe document and serialises access to it; every
// Import, Load or Submit takes a generation token so that only the most
// recently issued request may change the document.
package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"cookbook/internal/document"
	"cookbook/internal/editor"
	"cookbook/internal/recipes"
)

var (
	// ErrStale is returned when a response arrives after a later request
	// superseded it. The response has been discarded.
	ErrStale = errors.New("form: request superseded by a newer one")
	// ErrClosed is returned for any operation on a torn down session.
	ErrClosed = errors.New("form: session closed")
	// ErrURLRequired is returned by Import when no URL was given.
	ErrURLRequired = errors.New("form: import url is required")
)

// Repository is the subset of the recipe service a form session needs.
type Repository interface {
	Get(ctx context.Context, id string) (recipes.Recipe, error)
	Create(ctx context.Context, recipe recipes.Recipe) (string, error)
	Update(ctx context.Context, id string, recipe recipes.Recipe) error
	Scrape(ctx context.Context, pageURL string) (recipes.Recipe, error)
}

// Mode decides where Submit sends the document.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Outcome reports a successful submit.
type Outcome struct {
	Mode Mode
	ID   string
}

// Session is one open recipe form.
type Session struct {
	id       string
	owner    string
	recipeID string
	mode     Mode
	repo     Repository
	now      func() time.Time

	mu         sync.Mutex
	doc        *document.Document
	generation uint64
	closed     bool
	lastUsed   time.Time
}

// Open starts a session over a fresh document. A non-empty recipeID puts the
// session in update mode for its whole lifetime.
func Open(repo Repository, recipeID string) *Session {
	mode := ModeCreate
	if recipeID != "" {
		mode = ModeUpdate
	}
	return &Session{
		recipeID: recipeID,
		mode:     mode,
		repo:     repo,
		now:      time.Now,
		doc:      document.New(),
		lastUsed: time.Now(),
	}
}

// ID returns the registry key of the session, empty for sessions opened
// outside a Registry.
func (s *Session) ID() string { return s.id }

// RecipeID returns the identifier of the recipe being edited, if any.
func (s *Session) RecipeID() string { return s.recipeID }

// Mode reports whether Submit creates or updates.
func (s *Session) Mode() Mode { return s.mode }

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears the session down. Responses still in flight are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.closed = true
}

// Edit runs fn against the document while holding the session lock.
func (s *Session) Edit(fn func(doc *document.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.lastUsed = s.now()
	fn(s.doc)
	return nil
}

// Snapshot is a read-only copy of the document for rendering.
type Snapshot struct {
	FormID      string
	RecipeID    string
	Mode        Mode
	Name        string
	ImagePath   string
	Ingredients []editor.Cell
	Steps       []editor.Cell
	Props       []editor.PropCell
}

// Snapshot copies the current document state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		FormID:      s.id,
		RecipeID:    s.recipeID,
		Mode:        s.mode,
		Name:        s.doc.Name(),
		ImagePath:   s.doc.ImagePath(),
		Ingredients: s.doc.Ingredients().Cells(),
		Steps:       s.doc.Steps().Cells(),
		Props:       s.doc.Props().Cells(),
	}
}

// issue takes a new generation token.
func (s *Session) issue() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.generation++
	s.lastUsed = s.now()
	return s.generation, nil
}

// current must be called with mu held.
func (s *Session) current(token uint64) error {
	if s.closed {
		return ErrClosed
	}
	if token != s.generation {
		return ErrStale
	}
	return nil
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
