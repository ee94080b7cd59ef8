// Package workspace keeps one user's sidebar session: the loaded notes and
// tags, the current view, active filter, search string and selection.
//
// Mutations are applied to the in-memory copy immediately and persisted by
// asynchronous writes, executed in the order they were issued. A failed
// write marks the session stale; Reconcile then replaces the local copy with
// the store's state.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/query"
	"example.com/notes-api/internal/service"
)

const newNoteTitle = "Untitled"

var ErrWrongView = errors.New("operation not available in this view")

type Session struct {
	store Store
	log   *slog.Logger
	now   func() time.Time

	mu       sync.Mutex
	notes    []model.Note
	tags     []model.Tag
	view     query.View
	filter   query.Filter
	search   string
	selected string
	stale    bool
	lastErr  error

	pending sync.WaitGroup
	tail    chan struct{}
}

func New(store Store, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		store:  store,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		view:   query.ViewNotes,
		filter: query.All,
	}
}

// Snapshot is what the sidebar renders. Selected is empty unless the
// selected note is among Result.Notes.
type Snapshot struct {
	View     query.View   `json:"view"`
	Filter   query.Filter `json:"filter"`
	Search   string       `json:"search"`
	Selected string       `json:"selected,omitempty"`
	Stale    bool         `json:"stale"`
	Result   query.Result `json:"result"`
}

// Load fetches notes, trash and tags and replaces the local copy.
func (s *Session) Load(ctx context.Context) error {
	active, err := s.store.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	trash, err := s.store.ListTrash(ctx)
	if err != nil {
		return fmt.Errorf("load trash: %w", err)
	}
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(active, trash...)
	s.tags = tags
	s.stale = false
	s.lastErr = nil
	if s.filter.Kind == query.FilterTag && s.tagIndex(s.filter.TagID) < 0 {
		s.filter = query.All
	}
	s.fixSelection()
	return nil
}

// Reconcile waits for in-flight writes and re-fetches everything if any of
// them failed. It reports whether a re-fetch happened.
func (s *Session) Reconcile(ctx context.Context) (bool, error) {
	s.Wait()
	s.mu.Lock()
	stale := s.stale
	s.mu.Unlock()
	if !stale {
		return false, nil
	}
	return true, s.Load(ctx)
}

// Wait blocks until every dispatched write has finished.
func (s *Session) Wait() { s.pending.Wait() }

// Err returns the last failed write since the previous Load.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) Display() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := query.Display(query.Input{
		Notes:  s.notes,
		Tags:   s.tags,
		View:   s.view,
		Filter: s.filter,
		Search: s.search,
	})
	snap := Snapshot{
		View:   s.view,
		Filter: s.filter,
		Search: s.search,
		Stale:  s.stale,
		Result: res,
	}
	if slices.ContainsFunc(res.Notes, func(n model.Note) bool { return n.ID == s.selected }) {
		snap.Selected = s.selected
	}
	return snap
}

// Navigate switches the top-level view.
func (s *Session) Navigate(v query.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	s.fixSelection()
}

// SetFilter changes the active filter and clears the search string. It
// always lands on the notes view.
func (s *Session) SetFilter(f query.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.search = ""
	s.view = query.ViewNotes
	s.fixSelection()
}

func (s *Session) SetSearch(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = raw
}

// Select marks id as the open note. It fails for notes outside the view.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.noteIndex(id)
	if i < 0 {
		return service.ErrNotFound
	}
	if !s.view.Shows(s.notes[i].Trashed) {
		return ErrWrongView
	}
	s.selected = id
	return nil
}

// Selected returns the open note, if it is visible in the current view.
func (s *Session) Selected() (model.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.noteIndex(s.selected)
	if i < 0 || !s.view.Shows(s.notes[i].Trashed) {
		return model.Note{}, false
	}
	return s.notes[i], true
}

func (s *Session) Tags() []model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tags)
}

func (s *Session) noteIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.notes, func(n model.Note) bool { return n.ID == id })
}

func (s *Session) tagIndex(id string) int {
	return slices.IndexFunc(s.tags, func(t model.Tag) bool { return t.ID == id })
}

// fixSelection drops a selection that is gone or hidden by the view.
func (s *Session) fixSelection() {
	i := s.noteIndex(s.selected)
	if i < 0 || !s.view.Shows(s.notes[i].Trashed) {
		s.selected = ""
	}
}

// touch moves the note at i to the front, matching the store's
// most-recently-changed-first ordering.
func (s *Session) touch(i int, n model.Note) {
	s.notes = slices.Delete(s.notes, i, i+1)
	s.notes = slices.Insert(s.notes, 0, n)
}

// dispatch runs write after every previously dispatched write. Failures
// mark the session stale. Must be called with s.mu held.
func (s *Session) dispatch(ctx context.Context, op string, write func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	prev := s.tail
	done := make(chan struct{})
	s.tail = done
	s.pending.Add(1)

	go func() {
		defer s.pending.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		if err := write(ctx); err != nil {
			s.log.WarnContext(ctx, "write failed, session needs reconcile", "op", op, "err", err)
			s.mu.Lock()
			s.stale = true
			s.lastErr = fmt.Errorf("%s: %w", op, err)
			s.mu.Unlock()
		}
	}()
}

func nameKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
