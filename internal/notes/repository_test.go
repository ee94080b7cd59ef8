package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/notes-api/internal/model"
)

func TestListNotesQuery(t *testing.T) {
	sql, args, err := listNotesQuery("u1", false)
	require.NoError(t, err)
	require.Contains(t, sql, "FROM notes WHERE is_deleted = $1 AND user_id = $2 ORDER BY updated_at DESC")
	require.Equal(t, []any{false, "u1"}, args)

	sql, args, err = listNotesQuery("u1", true)
	require.NoError(t, err)
	require.Contains(t, sql, "ORDER BY deleted_at DESC, updated_at DESC")
	require.Equal(t, []any{true, "u1"}, args)
}

func TestUpdateNoteQuery_ScopesByOwner(t *testing.T) {
	tag := "t1"
	n := model.Note{ID: "n1", UserID: "u1", Title: "t", TagID: &tag, UpdatedAt: time.Unix(5, 0).UTC()}
	sql, args, err := updateNoteQuery(n)
	require.NoError(t, err)
	require.Contains(t, sql, "UPDATE notes SET content = $1, deleted_at = $2, is_deleted = $3, is_pinned = $4, tag_id = $5, title = $6, updated_at = $7")
	require.Contains(t, sql, "WHERE id = $8 AND user_id = $9 RETURNING id, user_id")
	require.Len(t, args, 9)
	require.Equal(t, "n1", args[7])
	require.Equal(t, "u1", args[8])
}
