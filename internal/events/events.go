package events

import (
	"context"
	"time"
)

const (
	NoteCreated  = "note.created"
	NoteUpdated  = "note.updated"
	NoteTrashed  = "note.trashed"
	NoteRestored = "note.restored"
	NotePurged   = "note.purged"
	TrashEmptied = "trash.emptied"
	TagCreated   = "tag.created"
	TagDeleted   = "tag.deleted"
)

// Event describes a committed change to a user's notes or tags.
type Event struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	NoteID string    `json:"note_id,omitempty"`
	TagID  string    `json:"tag_id,omitempty"`
	Count  int64     `json:"count,omitempty"`
	At     time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Discard drops every event. It is used when no broker is configured.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) error { return nil }
func (discard) Close() error                         { return nil }

// Instrument reports the outcome of every publish to observe.
func Instrument(p Publisher, observe func(eventType string, err error)) Publisher {
	return instrumented{Publisher: p, observe: observe}
}

type instrumented struct {
	Publisher
	observe func(string, error)
}

func (i instrumented) Publish(ctx context.Context, ev Event) error {
	err := i.Publisher.Publish(ctx, ev)
	i.observe(ev.Type, err)
	return err
}
