package workspace

import (
	"context"

	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/service"
)

// Store is the note and tag collaborator a session persists to. The HTTP
// client implements it against a remote server; Local binds it to an
// in-process service.
type Store interface {
	ListNotes(ctx context.Context) ([]model.Note, error)
	ListTrash(ctx context.Context) ([]model.Note, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateNote(ctx context.Context, in service.CreateNoteInput) (model.Note, error)
	UpdateNote(ctx context.Context, id string, p model.NotePatch) (model.Note, error)
	PurgeNote(ctx context.Context, id string) error
	EmptyTrash(ctx context.Context) (int64, error)
	CreateTag(ctx context.Context, name, color string) (model.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

type local struct {
	svc  *service.Service
	user model.User
}

// Local adapts svc to Store for one user.
func Local(svc *service.Service, user model.User) Store {
	return local{svc: svc, user: user}
}

func (l local) ListNotes(ctx context.Context) ([]model.Note, error) {
	return l.svc.ListNotes(ctx, l.user)
}

func (l local) ListTrash(ctx context.Context) ([]model.Note, error) {
	return l.svc.ListTrash(ctx, l.user)
}

func (l local) ListTags(ctx context.Context) ([]model.Tag, error) {
	return l.svc.ListTags(ctx, l.user)
}

func (l local) CreateNote(ctx context.Context, in service.CreateNoteInput) (model.Note, error) {
	return l.svc.CreateNote(ctx, l.user, in)
}

func (l local) UpdateNote(ctx context.Context, id string, p model.NotePatch) (model.Note, error) {
	return l.svc.UpdateNote(ctx, l.user, id, p)
}

func (l local) PurgeNote(ctx context.Context, id string) error {
	return l.svc.PurgeNote(ctx, l.user, id)
}

func (l local) EmptyTrash(ctx context.Context) (int64, error) {
	return l.svc.EmptyTrash(ctx, l.user)
}

func (l local) CreateTag(ctx context.Context, name, color string) (model.Tag, error) {
	t, _, err := l.svc.CreateTag(ctx, l.user, name, color)
	return t, err
}

func (l local) DeleteTag(ctx context.Context, id string) error {
	_, err := l.svc.DeleteTag(ctx, l.user, id)
	return err
}
