package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/notes-api/internal/model"
)

func titles(ns []model.Note) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Title)
	}
	return out
}

func scenario() ([]model.Note, []model.Tag) {
	tags := []model.Tag{{ID: "fin", Name: "finance"}}
	notes := []model.Note{
		{ID: "1", Title: "Shopping"},
		{ID: "2", Title: "Budget", TagID: ptr("fin"), Pinned: true},
	}
	return notes, tags
}

func TestDisplay_Scenarios(t *testing.T) {
	notes, tags := scenario()

	t.Run("title search", func(t *testing.T) {
		res := Display(Input{Notes: notes, Tags: tags, View: ViewNotes, Filter: All, Search: "budget"})
		require.Equal(t, []string{"Budget"}, titles(res.Notes))
		require.True(t, res.Searching)
	})

	t.Run("tag search", func(t *testing.T) {
		res := Display(Input{Notes: notes, Tags: tags, View: ViewNotes, Filter: All, Search: "tag:finance"})
		require.Equal(t, []string{"Budget"}, titles(res.Notes))
		require.Equal(t, []model.Tag{{ID: "fin", Name: "finance"}}, res.Suggestions.Tags)
		require.False(t, res.Suggestions.Untagged)
	})

	t.Run("after deleting the tag", func(t *testing.T) {
		cleared := []model.Note{notes[0], notes[1]}
		cleared[1].TagID = nil
		res := Display(Input{Notes: cleared, Tags: nil, View: ViewNotes, Filter: All, Search: "tag:finance"})
		require.Empty(t, res.Notes)
		require.True(t, res.Suggestions.Empty())
	})

	t.Run("no search sorts pinned first", func(t *testing.T) {
		res := Display(Input{Notes: notes, Tags: tags, View: ViewNotes, Filter: All})
		require.Equal(t, []string{"Budget", "Shopping"}, titles(res.Notes))
		require.False(t, res.Searching)
	})
}

func TestDisplay_ViewExcludesTrash(t *testing.T) {
	notes := []model.Note{
		{ID: "1", Title: "live"},
		{ID: "2", Title: "gone", Trashed: true},
	}
	require.Equal(t, []string{"live"}, titles(Display(Input{Notes: notes, View: ViewNotes}).Notes))
	require.Equal(t, []string{"live"}, titles(Display(Input{Notes: notes, View: ViewAI}).Notes))
	require.Equal(t, []string{"gone"}, titles(Display(Input{Notes: notes, View: ViewTrash}).Notes))
}

func TestDisplay_SearchIntersectsFilter(t *testing.T) {
	tags := []model.Tag{{ID: "w", Name: "work"}, {ID: "h", Name: "home"}}
	notes := []model.Note{
		{ID: "1", Title: "report", TagID: ptr("w")},
		{ID: "2", Title: "report", TagID: ptr("h")},
		{ID: "3", Title: "report"},
		{ID: "4", Title: "other", TagID: ptr("w")},
	}

	res := Display(Input{Notes: notes, Tags: tags, View: ViewNotes, Filter: ByTag("w"), Search: "report"})
	require.Len(t, res.Notes, 1)
	require.Equal(t, "1", res.Notes[0].ID)

	res = Display(Input{Notes: notes, Tags: tags, View: ViewNotes, Filter: Untagged, Search: "report"})
	require.Len(t, res.Notes, 1)
	require.Equal(t, "3", res.Notes[0].ID)

	// A tag search for another tag inside a tag filter yields nothing.
	res = Display(Input{Notes: notes, Tags: tags, View: ViewNotes, Filter: ByTag("w"), Search: "tag:home"})
	require.Empty(t, res.Notes)
	require.Equal(t, []model.Tag{tags[1]}, res.Suggestions.Tags)
}

func TestDisplay_StableWithinGroups(t *testing.T) {
	notes := []model.Note{
		{ID: "a"}, {ID: "b", Pinned: true}, {ID: "c"}, {ID: "d", Pinned: true}, {ID: "e"},
	}
	res := Display(Input{Notes: notes, View: ViewNotes})
	ids := make([]string, 0, len(res.Notes))
	for _, n := range res.Notes {
		ids = append(ids, n.ID)
	}
	require.Equal(t, []string{"b", "d", "a", "c", "e"}, ids)
}

func TestDisplay_DoesNotMutateInput(t *testing.T) {
	notes := []model.Note{{ID: "a"}, {ID: "b", Pinned: true}}
	_ = Display(Input{Notes: notes, View: ViewNotes})
	require.Equal(t, "a", notes[0].ID)
}
