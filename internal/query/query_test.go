package query

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"example.com/notes-api/internal/model"
)

func ptr(s string) *string { return &s }

func TestParseQuery_Table(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{"empty", "", Query{Kind: KindNone}},
		{"whitespace", " \t\n", Query{Kind: KindNone}},
		{"general", "  Budget ", Query{Kind: KindGeneral, Term: "budget"}},
		{"tag prefix", "tag:Work", Query{Kind: KindTag, Term: "work"}},
		{"tag prefix upper", "TAG: Finance ", Query{Kind: KindTag, Term: "finance"}},
		{"open tag", "tag:", Query{Kind: KindTag}},
		{"open tag spaces", "  tag:   ", Query{Kind: KindTag}},
		{"prefix not at start", "my tag:x", Query{Kind: KindGeneral, Term: "my tag:x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseQuery(tt.raw))
		})
	}
}

func TestQuery_MatchNote(t *testing.T) {
	tagged := model.Note{Title: "Plan", Content: "<p>call the <b>bank</b></p>", TagID: ptr("t1")}
	bare := model.Note{Title: "Groceries", Content: "milk"}

	tests := []struct {
		name    string
		raw     string
		note    model.Note
		tagName string
		want    bool
	}{
		{"title", "PLAN", tagged, "Finance", true},
		{"content", "bank", tagged, "Finance", true},
		{"tag name via general", "fin", tagged, "Finance", true},
		{"general miss", "zzz", tagged, "Finance", false},
		{"tag fragment", "tag:fin", tagged, "Finance", true},
		{"tag fragment does not search title", "tag:plan", tagged, "Finance", false},
		{"tag fragment on untagged note", "tag:fin", bare, "", false},
		{"untagged keyword keeps bare", "tag:untagged", bare, "", true},
		{"untagged keyword drops tagged", "tag:untagged", tagged, "Finance", false},
		{"open tag search keeps all", "tag:", tagged, "Finance", true},
		{"no search keeps all", "", bare, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseQuery(tt.raw).MatchNote(tt.note, tt.tagName))
		})
	}
}

func TestQuery_Suggest(t *testing.T) {
	tags := []model.Tag{{ID: "1", Name: "Work"}, {ID: "2", Name: "workout"}, {ID: "3", Name: "Home"}}

	t.Run("no search", func(t *testing.T) {
		s := ParseQuery(" ").Suggest(tags)
		require.True(t, s.Empty())
	})

	t.Run("open tag search lists everything", func(t *testing.T) {
		s := ParseQuery("tag:").Suggest(tags)
		require.Equal(t, tags, s.Tags)
		require.True(t, s.Untagged)
	})

	t.Run("tag fragment", func(t *testing.T) {
		s := ParseQuery("tag:wor").Suggest(tags)
		require.Equal(t, []model.Tag{tags[0], tags[1]}, s.Tags)
		require.False(t, s.Untagged)
	})

	t.Run("untagged prefix", func(t *testing.T) {
		s := ParseQuery("tag:unt").Suggest(tags)
		require.Empty(t, s.Tags)
		require.True(t, s.Untagged)
	})

	t.Run("general search surfaces tags", func(t *testing.T) {
		s := ParseQuery("home").Suggest(tags)
		require.Equal(t, []model.Tag{tags[2]}, s.Tags)
		require.False(t, s.Untagged)
	})
}

func TestFilter_ParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want Filter
	}{
		{"", All},
		{"all", All},
		{"untagged", Untagged},
		{"tag:abc", ByTag("abc")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			back, err := ParseFilter(got.String())
			require.NoError(t, err)
			require.Equal(t, got, back)
		})
	}

	for _, bad := range []string{"tag:", "pinned", "tag: "} {
		_, err := ParseFilter(bad)
		require.ErrorIs(t, err, ErrInvalidFilter, bad)
	}
}

func TestFilter_Match(t *testing.T) {
	a := model.Note{TagID: ptr("a")}
	none := model.Note{}
	empty := model.Note{TagID: ptr("")}

	require.True(t, All.Match(a))
	require.True(t, Untagged.Match(none))
	require.True(t, Untagged.Match(empty))
	require.False(t, Untagged.Match(a))
	require.True(t, ByTag("a").Match(a))
	require.False(t, ByTag("b").Match(a))
	require.False(t, ByTag("a").Match(none))
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	require.Equal(t, ViewNotes, v)

	v, err = ParseView("trash")
	require.NoError(t, err)
	require.Equal(t, ViewTrash, v)

	_, err = ParseView("settings")
	require.Error(t, err)

	require.True(t, ViewTrash.Shows(true))
	require.False(t, ViewTrash.Shows(false))
	require.True(t, ViewAI.Shows(false))
}

func TestCountStats(t *testing.T) {
	require.Equal(t, Stats{}, CountStats(""))
	require.Equal(t, Stats{Words: 2, Characters: 7}, CountStats("<p>one</p><p>two</p>"))
	require.Equal(t, Stats{Words: 3, Characters: 11}, CountStats("Tom &amp; Jerry"))
}

func TestPreview(t *testing.T) {
	require.Equal(t, "", Preview(""))
	require.Equal(t, "one two", Preview("<p>one</p>\n\n<p>two</p>"))

	long := Preview("<p>" + strings.Repeat("ж", 200) + "</p>")
	require.Equal(t, previewLength, utf8.RuneCountInString(long))
}
