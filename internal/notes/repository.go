package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/tracing"
)

var noteColumns = []string{
	"id", "user_id", "title", "content", "tag_id",
	"is_pinned", "is_deleted", "deleted_at", "created_at", "updated_at",
}

const tagColumns = "id, user_id, name, color, created_at"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository stores notes and tags in Postgres. Every statement is scoped
// by user_id.
type Repository struct {
	db *sql.DB

	stmtGet     *sql.Stmt
	stmtPurge   *sql.Stmt
	stmtGetTag  *sql.Stmt
	stmtTagName *sql.Stmt
}

func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	cols := strings.Join(noteColumns, ", ")
	get, err := db.PrepareContext(ctx, `
		SELECT `+cols+`
		FROM notes
		WHERE user_id = $1 AND id = $2
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare get note: %w", err)
	}

	purge, err := db.PrepareContext(ctx, `DELETE FROM notes WHERE user_id = $1 AND id = $2 AND is_deleted`)
	if err != nil {
		return nil, fmt.Errorf("prepare purge note: %w", err)
	}

	getTag, err := db.PrepareContext(ctx, `
		SELECT `+tagColumns+`
		FROM tags
		WHERE user_id = $1 AND id = $2
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare get tag: %w", err)
	}

	tagName, err := db.PrepareContext(ctx, `
		SELECT `+tagColumns+`
		FROM tags
		WHERE user_id = $1 AND lower(name) = lower($2)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare find tag: %w", err)
	}

	return &Repository{
		db:          db,
		stmtGet:     get,
		stmtPurge:   purge,
		stmtGetTag:  getTag,
		stmtTagName: tagName,
	}, nil
}

func (r *Repository) Close() error {
	for _, s := range []*sql.Stmt{r.stmtGet, r.stmtPurge, r.stmtGetTag, r.stmtTagName} {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.TagID,
		&n.Pinned, &n.Trashed, &n.DeletedAt, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, model.ErrNotFound
	}
	return n, err
}

func scanTag(row rowScanner) (model.Tag, error) {
	var t model.Tag
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, model.ErrNotFound
	}
	return t, err
}

func listNotesQuery(userID string, trashed bool) (string, []any, error) {
	q := psql.Select(noteColumns...).
		From("notes").
		Where(squirrel.Eq{"user_id": userID, "is_deleted": trashed})
	if trashed {
		q = q.OrderBy("deleted_at DESC", "updated_at DESC")
	} else {
		q = q.OrderBy("updated_at DESC")
	}
	return q.ToSql()
}

func (r *Repository) ListNotes(ctx context.Context, userID string, trashed bool) (_ []model.Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.repo.ListNotes", attribute.Bool("trashed", trashed))
	defer func() { tracing.End(span, err) }()

	query, args, err := listNotesQuery(userID, trashed)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	out := make([]model.Note, 0, 32)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) GetNote(ctx context.Context, userID, id string) (model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "notes.repo.GetNote", attribute.String("note.id", id))
	defer span.End()
	return scanNote(r.stmtGet.QueryRowContext(ctx, userID, id))
}

func (r *Repository) CreateNote(ctx context.Context, n model.Note) (model.Note, error) {
	ctx, span := tracing.StartSpan(ctx, "notes.repo.CreateNote")
	defer span.End()

	query, args, err := psql.Insert("notes").
		Columns(noteColumns...).
		Values(n.ID, n.UserID, n.Title, n.Content, n.TagID,
			n.Pinned, n.Trashed, n.DeletedAt, n.CreatedAt, n.UpdatedAt).
		Suffix("RETURNING " + strings.Join(noteColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Note{}, fmt.Errorf("build insert: %w", err)
	}
	saved, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return saved, nil
}

func updateNoteQuery(n model.Note) (string, []any, error) {
	return psql.Update("notes").
		SetMap(map[string]any{
			"title":      n.Title,
			"content":    n.Content,
			"tag_id":     n.TagID,
			"is_pinned":  n.Pinned,
			"is_deleted": n.Trashed,
			"deleted_at": n.DeletedAt,
			"updated_at": n.UpdatedAt,
		}).
		Where(squirrel.Eq{"user_id": n.UserID, "id": n.ID}).
		Suffix("RETURNING " + strings.Join(noteColumns, ", ")).
		ToSql()
}

// UpdateNote writes every mutable column of n.
func (r *Repository) UpdateNote(ctx context.Context, n model.Note) (_ model.Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.repo.UpdateNote", attribute.String("note.id", n.ID))
	defer func() { tracing.End(span, err) }()

	query, args, err := updateNoteQuery(n)
	if err != nil {
		return model.Note{}, fmt.Errorf("build update: %w", err)
	}
	return scanNote(r.db.QueryRowContext(ctx, query, args...))
}

func (r *Repository) PurgeNote(ctx context.Context, userID, id string) error {
	res, err := r.stmtPurge.ExecContext(ctx, userID, id)
	if err != nil {
		return err
	}
	a, _ := res.RowsAffected()
	if a == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *Repository) PurgeTrash(ctx context.Context, userID string) (int64, error) {
	query, args, err := psql.Delete("notes").
		Where(squirrel.Eq{"user_id": userID, "is_deleted": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) ListTags(ctx context.Context, userID string) ([]model.Tag, error) {
	ctx, span := tracing.StartSpan(ctx, "notes.repo.ListTags")
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+tagColumns+`
		FROM tags
		WHERE user_id = $1
		ORDER BY lower(name), id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	out := make([]model.Tag, 0, 16)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) GetTag(ctx context.Context, userID, id string) (model.Tag, error) {
	return scanTag(r.stmtGetTag.QueryRowContext(ctx, userID, id))
}

func (r *Repository) FindTagByName(ctx context.Context, userID, name string) (model.Tag, error) {
	return scanTag(r.stmtTagName.QueryRowContext(ctx, userID, name))
}

// CreateTag inserts t unless the user already has a tag with the same name
// ignoring case, in which case the existing tag is returned.
func (r *Repository) CreateTag(ctx context.Context, t model.Tag) (model.Tag, error) {
	saved, err := scanTag(r.db.QueryRowContext(ctx, `
		INSERT INTO tags (id, user_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, lower(name)) DO NOTHING
		RETURNING `+tagColumns,
		t.ID, t.UserID, t.Name, t.Color, t.CreatedAt))
	if errors.Is(err, model.ErrNotFound) {
		return r.FindTagByName(ctx, t.UserID, t.Name)
	}
	if err != nil {
		return model.Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	return saved, nil
}

// DeleteTag uses explicit transaction: clear note references, then delete the tag.
func (r *Repository) DeleteTag(ctx context.Context, userID, id string) (_ int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "notes.repo.DeleteTag", attribute.String("tag.id", id))
	defer func() { tracing.End(span, err) }()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE notes SET tag_id = NULL WHERE user_id = $1 AND tag_id = $2`, userID, id)
	if err != nil {
		return 0, fmt.Errorf("clear tag: %w", err)
	}
	cleared, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM tags WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return 0, fmt.Errorf("delete tag: %w", err)
	}
	if a, _ := res.RowsAffected(); a == 0 {
		return 0, model.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return cleared, nil
}
