package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/notes-api/internal/events"
	"example.com/notes-api/internal/model"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = model.ErrNotFound
	ErrNoteTrashed  = errors.New("note is in trash")
	ErrNotTrashed   = errors.New("note is not in trash")
	ErrRetrieval    = errors.New("failed to retrieve data")
	ErrStorage      = errors.New("failed to store data")
)

// NoteRepo stores notes scoped by owner. Lookups of missing rows return model.ErrNotFound.
type NoteRepo interface {
	ListNotes(ctx context.Context, userID string, trashed bool) ([]model.Note, error)
	GetNote(ctx context.Context, userID, id string) (model.Note, error)
	CreateNote(ctx context.Context, n model.Note) (model.Note, error)
	UpdateNote(ctx context.Context, n model.Note) (model.Note, error)
	PurgeNote(ctx context.Context, userID, id string) error
	PurgeTrash(ctx context.Context, userID string) (int64, error)
}

// TagRepo stores tags scoped by owner.
type TagRepo interface {
	ListTags(ctx context.Context, userID string) ([]model.Tag, error)
	GetTag(ctx context.Context, userID, id string) (model.Tag, error)
	FindTagByName(ctx context.Context, userID, name string) (model.Tag, error)
	CreateTag(ctx context.Context, t model.Tag) (model.Tag, error)
	// DeleteTag clears the reference on every note holding the tag and then
	// removes the tag, as one unit. It returns the number of notes cleared.
	DeleteTag(ctx context.Context, userID, id string) (int64, error)
}

// Service owns the note and tag lifecycle rules. Every operation takes the
// acting user explicitly and rejects the zero user.
type Service struct {
	notes  NoteRepo
	tags   TagRepo
	events events.Publisher
	log    *slog.Logger

	now   func() time.Time
	newID func() string
}

func New(notes NoteRepo, tags TagRepo, pub events.Publisher, log *slog.Logger) *Service {
	if pub == nil {
		pub = events.Discard
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		notes:  notes,
		tags:   tags,
		events: pub,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func authorize(u model.User) error {
	if !u.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// readErr keeps not-found distinguishable and marks everything else as a
// retrieval failure.
func readErr(op string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRetrieval, err)
}

func writeErr(op string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// publish is best effort: the change is already committed.
func (s *Service) publish(ctx context.Context, ev events.Event) {
	ev.At = s.now()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "publish event", "type", ev.Type, "user_id", ev.UserID, "err", err)
	}
}
