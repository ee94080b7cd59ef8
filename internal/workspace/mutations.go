package workspace

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/query"
	"example.com/notes-api/internal/service"
)

// CreateNote creates an untitled note, selects it and shows the notes view.
// It waits for the store, which assigns the id.
func (s *Session) CreateNote(ctx context.Context) (model.Note, error) {
	n, err := s.store.CreateNote(ctx, service.CreateNoteInput{Title: newNoteTitle})
	if err != nil {
		return model.Note{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = slices.Insert(s.notes, 0, n)
	if s.view != query.ViewNotes {
		s.view = query.ViewNotes
	}
	s.selected = n.ID
	return n, nil
}

// UpdateNote applies p locally with the service's rules and persists it.
func (s *Session) UpdateNote(ctx context.Context, id string, p model.NotePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, id, p)
}

func (s *Session) updateLocked(ctx context.Context, id string, p model.NotePatch) error {
	i := s.noteIndex(id)
	if i < 0 {
		return service.ErrNotFound
	}
	n, evType, err := service.ApplyPatch(s.notes[i], p, s.now())
	if err != nil || evType == "" {
		return err
	}
	if tagID := p.TagID.Ptr(); tagID != nil && s.tagIndex(*tagID) < 0 {
		return fmt.Errorf("%w: unknown tag", service.ErrValidation)
	}
	s.touch(i, n)
	s.fixSelection()
	s.dispatch(ctx, "update note", func(ctx context.Context) error {
		_, err := s.store.UpdateNote(ctx, id, p)
		return err
	})
	return nil
}

func (s *Session) TogglePin(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.noteIndex(id)
	if i < 0 {
		return service.ErrNotFound
	}
	pinned := !s.notes[i].Pinned
	return s.updateLocked(ctx, id, model.NotePatch{Pinned: &pinned})
}

// MoveToTrash soft-deletes a note; if it was selected the selection clears.
func (s *Session) MoveToTrash(ctx context.Context, id string) error {
	deleted := true
	return s.UpdateNote(ctx, id, model.NotePatch{Deleted: &deleted})
}

func (s *Session) Restore(ctx context.Context, id string) error {
	deleted := false
	return s.UpdateNote(ctx, id, model.NotePatch{Deleted: &deleted})
}

// ToggleTag assigns tagID to the note or clears it if already assigned.
func (s *Session) ToggleTag(ctx context.Context, noteID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.noteIndex(noteID)
	if i < 0 {
		return service.ErrNotFound
	}
	if s.notes[i].Trashed {
		return service.ErrNoteTrashed
	}
	p := model.NotePatch{TagID: model.SetID(tagID)}
	if s.notes[i].TagIs(tagID) {
		p.TagID = model.ClearID()
	}
	return s.updateLocked(ctx, noteID, p)
}

// Purge permanently removes a trashed note. Only the trash view offers it.
func (s *Session) Purge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != query.ViewTrash {
		return ErrWrongView
	}
	i := s.noteIndex(id)
	if i < 0 {
		return service.ErrNotFound
	}
	if !s.notes[i].Trashed {
		return service.ErrNotTrashed
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	s.fixSelection()
	s.dispatch(ctx, "purge note", func(ctx context.Context) error {
		return s.store.PurgeNote(ctx, id)
	})
	return nil
}

// EmptyTrash purges every trashed note. Only the trash view offers it.
func (s *Session) EmptyTrash(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != query.ViewTrash {
		return ErrWrongView
	}
	s.notes = slices.DeleteFunc(s.notes, func(n model.Note) bool { return n.Trashed })
	s.fixSelection()
	s.dispatch(ctx, "empty trash", func(ctx context.Context) error {
		_, err := s.store.EmptyTrash(ctx)
		return err
	})
	return nil
}

// CreateTag returns the existing tag with the same name ignoring case, or
// creates one and waits for the store to assign its id.
func (s *Session) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	key := nameKey(name)
	if key == "" {
		return model.Tag{}, fmt.Errorf("%w: name is required", service.ErrValidation)
	}
	s.mu.Lock()
	if i := slices.IndexFunc(s.tags, func(t model.Tag) bool { return nameKey(t.Name) == key }); i >= 0 {
		t := s.tags[i]
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()

	t, err := s.store.CreateTag(ctx, strings.TrimSpace(name), "")
	if err != nil {
		return model.Tag{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tagIndex(t.ID) < 0 {
		i, _ := slices.BinarySearchFunc(s.tags, t, func(a, b model.Tag) int {
			return strings.Compare(nameKey(a.Name), nameKey(b.Name))
		})
		s.tags = slices.Insert(s.tags, i, t)
	}
	return t, nil
}

// DeleteTag clears the tag from every note, then removes it. An active
// filter on the tag reverts to all.
func (s *Session) DeleteTag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tagIndex(id)
	if i < 0 {
		return service.ErrNotFound
	}
	for j := range s.notes {
		if s.notes[j].TagIs(id) {
			s.notes[j].TagID = nil
		}
	}
	s.tags = slices.Delete(s.tags, i, i+1)
	if s.filter.Kind == query.FilterTag && s.filter.TagID == id {
		s.filter = query.All
	}
	s.dispatch(ctx, "delete tag", func(ctx context.Context) error {
		return s.store.DeleteTag(ctx, id)
	})
	return nil
}
