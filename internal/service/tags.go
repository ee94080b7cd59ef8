package service

import (
	"context"
	"errors"
	"strings"

	"example.com/notes-api/internal/events"
	"example.com/notes-api/internal/model"
)

// ListTags returns the user's tags ordered by name.
func (s *Service) ListTags(ctx context.Context, u model.User) ([]model.Tag, error) {
	if err := authorize(u); err != nil {
		return nil, err
	}
	tags, err := s.tags.ListTags(ctx, u.ID)
	if err != nil {
		return nil, readErr("list tags", err)
	}
	return tags, nil
}

// CreateTag returns the user's existing tag when one already has the same
// name ignoring case; created reports whether a new tag was stored.
func (s *Service) CreateTag(ctx context.Context, u model.User, name, color string) (tag model.Tag, created bool, err error) {
	if err := authorize(u); err != nil {
		return model.Tag{}, false, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Tag{}, false, invalid("name is required")
	}

	existing, err := s.tags.FindTagByName(ctx, u.ID, name)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, model.ErrNotFound):
		return model.Tag{}, false, readErr("find tag", err)
	}

	tag, err = s.tags.CreateTag(ctx, model.Tag{
		ID:        s.newID(),
		UserID:    u.ID,
		Name:      name,
		Color:     strings.TrimSpace(color),
		CreatedAt: s.now(),
	})
	if err != nil {
		return model.Tag{}, false, writeErr("create tag", err)
	}
	s.publish(ctx, events.Event{Type: events.TagCreated, UserID: u.ID, TagID: tag.ID})
	return tag, true, nil
}

// DeleteTag removes a tag after clearing it from every note that held it.
func (s *Service) DeleteTag(ctx context.Context, u model.User, id string) (int64, error) {
	if err := authorize(u); err != nil {
		return 0, err
	}
	cleared, err := s.tags.DeleteTag(ctx, u.ID, id)
	if err != nil {
		return 0, writeErr("delete tag", err)
	}
	s.publish(ctx, events.Event{Type: events.TagDeleted, UserID: u.ID, TagID: id, Count: cleared})
	return cleared, nil
}
