package service

import (
	"context"
	"errors"
	"time"

	"example.com/notes-api/internal/events"
	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/stringsx"
)

type CreateNoteInput struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	TagID   *string `json:"tag_id"`
}

// ListNotes returns the user's active notes, most recently updated first.
func (s *Service) ListNotes(ctx context.Context, u model.User) ([]model.Note, error) {
	if err := authorize(u); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListNotes(ctx, u.ID, false)
	if err != nil {
		return nil, readErr("list notes", err)
	}
	return notes, nil
}

// ListTrash returns the user's trashed notes, most recently trashed first.
func (s *Service) ListTrash(ctx context.Context, u model.User) ([]model.Note, error) {
	if err := authorize(u); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListNotes(ctx, u.ID, true)
	if err != nil {
		return nil, readErr("list trash", err)
	}
	return notes, nil
}

// GetNote hides trashed notes unless includeDeleted is set.
func (s *Service) GetNote(ctx context.Context, u model.User, id string, includeDeleted bool) (model.Note, error) {
	if err := authorize(u); err != nil {
		return model.Note{}, err
	}
	n, err := s.notes.GetNote(ctx, u.ID, id)
	if err != nil {
		return model.Note{}, readErr("get note", err)
	}
	if n.Trashed && !includeDeleted {
		return model.Note{}, ErrNotFound
	}
	return n, nil
}

func (s *Service) CreateNote(ctx context.Context, u model.User, in CreateNoteInput) (model.Note, error) {
	if err := authorize(u); err != nil {
		return model.Note{}, err
	}
	if stringsx.IsEmpty(in.Title) {
		return model.Note{}, invalid("title is required")
	}
	tagID := in.TagID
	if tagID != nil && *tagID == "" {
		tagID = nil
	}
	if tagID != nil {
		if err := s.checkTag(ctx, u, *tagID); err != nil {
			return model.Note{}, err
		}
	}

	now := s.now()
	n, err := s.notes.CreateNote(ctx, model.Note{
		ID:        s.newID(),
		UserID:    u.ID,
		Title:     in.Title,
		Content:   in.Content,
		TagID:     tagID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.Note{}, writeErr("create note", err)
	}
	s.publish(ctx, events.Event{Type: events.NoteCreated, UserID: u.ID, NoteID: n.ID})
	return n, nil
}

// UpdateNote applies a partial update. A trashed note only accepts being
// restored; any other edit is refused with ErrNoteTrashed.
func (s *Service) UpdateNote(ctx context.Context, u model.User, id string, p model.NotePatch) (model.Note, error) {
	if err := authorize(u); err != nil {
		return model.Note{}, err
	}
	n, err := s.notes.GetNote(ctx, u.ID, id)
	if err != nil {
		return model.Note{}, readErr("get note", err)
	}

	updated, evType, err := ApplyPatch(n, p, s.now())
	if err != nil || evType == "" {
		return updated, err
	}
	if tagID := p.TagID.Ptr(); tagID != nil && !n.TagIs(*tagID) {
		if err := s.checkTag(ctx, u, *tagID); err != nil {
			return model.Note{}, err
		}
	}
	saved, err := s.notes.UpdateNote(ctx, updated)
	if err != nil {
		return model.Note{}, writeErr("update note", err)
	}
	s.publish(ctx, events.Event{Type: evType, UserID: u.ID, NoteID: saved.ID})
	return saved, nil
}

// ApplyPatch returns n with p applied at now, and the event type of the
// change. An empty event type means the patch was a no-op on a trashed note.
func ApplyPatch(n model.Note, p model.NotePatch, now time.Time) (model.Note, string, error) {
	restoring := p.Deleted != nil && !*p.Deleted
	if n.Trashed && !restoring {
		if p.Edits() {
			return model.Note{}, "", ErrNoteTrashed
		}
		return n, "", nil
	}

	evType := events.NoteUpdated
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.TagID.Set {
		n.TagID = p.TagID.Ptr()
	}
	if p.Pinned != nil {
		n.Pinned = *p.Pinned
	}
	if p.Deleted != nil && *p.Deleted != n.Trashed {
		n.Trashed = *p.Deleted
		if n.Trashed {
			at := now
			n.DeletedAt = &at
			evType = events.NoteTrashed
		} else {
			n.DeletedAt = nil
			evType = events.NoteRestored
		}
	}
	n.UpdatedAt = now
	return n, evType, nil
}

// TrashNote soft-deletes a note. Trashing a trashed note is a no-op.
func (s *Service) TrashNote(ctx context.Context, u model.User, id string) (model.Note, error) {
	deleted := true
	return s.UpdateNote(ctx, u, id, model.NotePatch{Deleted: &deleted})
}

// RestoreNote brings a trashed note back. Restoring an active note is a no-op.
func (s *Service) RestoreNote(ctx context.Context, u model.User, id string) (model.Note, error) {
	deleted := false
	return s.UpdateNote(ctx, u, id, model.NotePatch{Deleted: &deleted})
}

func (s *Service) TogglePin(ctx context.Context, u model.User, id string) (model.Note, error) {
	if err := authorize(u); err != nil {
		return model.Note{}, err
	}
	n, err := s.notes.GetNote(ctx, u.ID, id)
	if err != nil {
		return model.Note{}, readErr("get note", err)
	}
	pinned := !n.Pinned
	return s.UpdateNote(ctx, u, id, model.NotePatch{Pinned: &pinned})
}

// ToggleTag assigns tagID to the note, or clears it when the note already
// holds that tag. A note holds at most one tag.
func (s *Service) ToggleTag(ctx context.Context, u model.User, noteID, tagID string) (model.Note, error) {
	if err := authorize(u); err != nil {
		return model.Note{}, err
	}
	if stringsx.IsEmpty(tagID) {
		return model.Note{}, invalid("tag id is required")
	}
	n, err := s.notes.GetNote(ctx, u.ID, noteID)
	if err != nil {
		return model.Note{}, readErr("get note", err)
	}
	if n.Trashed {
		return model.Note{}, ErrNoteTrashed
	}
	patch := model.NotePatch{TagID: model.SetID(tagID)}
	if n.TagIs(tagID) {
		patch.TagID = model.ClearID()
	}
	return s.UpdateNote(ctx, u, noteID, patch)
}

// PurgeNote permanently removes a trashed note.
func (s *Service) PurgeNote(ctx context.Context, u model.User, id string) error {
	if err := authorize(u); err != nil {
		return err
	}
	n, err := s.notes.GetNote(ctx, u.ID, id)
	if err != nil {
		return readErr("get note", err)
	}
	if !n.Trashed {
		return ErrNotTrashed
	}
	if err := s.notes.PurgeNote(ctx, u.ID, id); err != nil {
		return writeErr("purge note", err)
	}
	s.publish(ctx, events.Event{Type: events.NotePurged, UserID: u.ID, NoteID: id})
	return nil
}

// EmptyTrash purges every trashed note of the user.
func (s *Service) EmptyTrash(ctx context.Context, u model.User) (int64, error) {
	if err := authorize(u); err != nil {
		return 0, err
	}
	n, err := s.notes.PurgeTrash(ctx, u.ID)
	if err != nil {
		return 0, writeErr("empty trash", err)
	}
	s.publish(ctx, events.Event{Type: events.TrashEmptied, UserID: u.ID, Count: n})
	return n, nil
}

func (s *Service) checkTag(ctx context.Context, u model.User, id string) error {
	if _, err := s.tags.GetTag(ctx, u.ID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return invalid("unknown tag")
		}
		return readErr("get tag", err)
	}
	return nil
}
