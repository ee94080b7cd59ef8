package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUser_DisplayNameAndInitials(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		display  string
		initials string
	}{
		{"full name", User{FullName: "ada lovelace", Email: "a@b.c"}, "ada lovelace", "AL"},
		{"three words", User{FullName: "Jean Luc Picard"}, "Jean Luc Picard", "JL"},
		{"email", User{Email: "grace@navy.mil"}, "grace", "G"},
		{"fallback", User{}, "User", "U"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.display, tt.user.DisplayName())
			require.Equal(t, tt.initials, tt.user.Initials())
		})
	}
}

func TestNotePatch_TagIDDecoding(t *testing.T) {
	var absent, null, set NotePatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"tag_id":null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"tag_id":"t1"}`), &set))

	require.False(t, absent.TagID.Set)
	require.True(t, null.TagID.Set)
	require.Nil(t, null.TagID.Ptr())
	require.Equal(t, "t1", *set.TagID.Ptr())

	require.True(t, absent.Edits())
	require.True(t, null.Edits())
	require.False(t, NotePatch{}.Edits())
}

func TestNotePatch_EncodingOmitsUnsetTag(t *testing.T) {
	title := "x"
	b, err := json.Marshal(NotePatch{Title: &title})
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"x"}`, string(b))

	b, err = json.Marshal(NotePatch{TagID: ClearID()})
	require.NoError(t, err)
	require.JSONEq(t, `{"tag_id":null}`, string(b))
}
