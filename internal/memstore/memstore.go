// Package memstore keeps notes, tags, users and sessions in memory. It backs
// tests and STORE=memory runs.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"example.com/notes-api/internal/auth"
	"example.com/notes-api/internal/model"
)

type noteRow struct {
	note model.Note
	rev  int64
}

type Store struct {
	mu       sync.RWMutex
	rev      int64
	notes    map[string]noteRow
	tags     map[string]model.Tag
	users    map[string]auth.Account
	sessions map[string]auth.Session
}

func New() *Store {
	return &Store{
		notes:    make(map[string]noteRow),
		tags:     make(map[string]model.Tag),
		users:    make(map[string]auth.Account),
		sessions: make(map[string]auth.Session),
	}
}

func (s *Store) put(n model.Note) {
	s.rev++
	s.notes[n.ID] = noteRow{note: cloneNote(n), rev: s.rev}
}

func cloneNote(n model.Note) model.Note {
	if n.TagID != nil {
		id := *n.TagID
		n.TagID = &id
	}
	if n.DeletedAt != nil {
		at := *n.DeletedAt
		n.DeletedAt = &at
	}
	return n
}

// ListNotes orders active notes by updated_at and trashed notes by
// deleted_at, newest first. Ties go to the most recent write.
func (s *Store) ListNotes(_ context.Context, userID string, trashed bool) ([]model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]noteRow, 0, len(s.notes))
	for _, r := range s.notes {
		if r.note.UserID == userID && r.note.Trashed == trashed {
			rows = append(rows, r)
		}
	}
	slices.SortFunc(rows, func(a, b noteRow) int {
		ka, kb := a.note.UpdatedAt, b.note.UpdatedAt
		if trashed && a.note.DeletedAt != nil && b.note.DeletedAt != nil {
			ka, kb = *a.note.DeletedAt, *b.note.DeletedAt
		}
		if c := kb.Compare(ka); c != 0 {
			return c
		}
		return cmp.Compare(b.rev, a.rev)
	})

	out := make([]model.Note, 0, len(rows))
	for _, r := range rows {
		out = append(out, cloneNote(r.note))
	}
	return out, nil
}

func (s *Store) GetNote(_ context.Context, userID, id string) (model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.notes[id]
	if !ok || r.note.UserID != userID {
		return model.Note{}, model.ErrNotFound
	}
	return cloneNote(r.note), nil
}

func (s *Store) CreateNote(_ context.Context, n model.Note) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(n)
	return cloneNote(n), nil
}

func (s *Store) UpdateNote(_ context.Context, n model.Note) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.notes[n.ID]
	if !ok || r.note.UserID != n.UserID {
		return model.Note{}, model.ErrNotFound
	}
	n.CreatedAt = r.note.CreatedAt
	s.put(n)
	return cloneNote(n), nil
}

// PurgeNote removes a trashed note; active notes are reported as not found.
func (s *Store) PurgeNote(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.notes[id]
	if !ok || r.note.UserID != userID || !r.note.Trashed {
		return model.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *Store) PurgeTrash(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.notes {
		if r.note.UserID == userID && r.note.Trashed {
			delete(s.notes, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) ListTags(_ context.Context, userID string) ([]model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b model.Tag) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) GetTag(_ context.Context, userID, id string) (model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tags[id]
	if !ok || t.UserID != userID {
		return model.Tag{}, model.ErrNotFound
	}
	return t, nil
}

func (s *Store) FindTagByName(_ context.Context, userID, name string) (model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if t.UserID == userID && strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return model.Tag{}, model.ErrNotFound
}

func (s *Store) CreateTag(_ context.Context, t model.Tag) (model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[t.ID] = t
	return t, nil
}

// DeleteTag clears references before removing the tag, under one lock.
func (s *Store) DeleteTag(_ context.Context, userID, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok || t.UserID != userID {
		return 0, model.ErrNotFound
	}
	var cleared int64
	for _, r := range s.notes {
		if r.note.UserID == userID && r.note.TagIs(id) {
			n := r.note
			n.TagID = nil
			s.notes[n.ID] = noteRow{note: n, rev: r.rev}
			cleared++
		}
	}
	delete(s.tags, id)
	return cleared, nil
}
