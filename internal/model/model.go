package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

type (
	User struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		FullName  string    `json:"full_name,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	Note struct {
		ID        string     `json:"id"`
		UserID    string     `json:"user_id"`
		Title     string     `json:"title"`
		Content   string     `json:"content"`
		TagID     *string    `json:"tag_id"`
		Pinned    bool       `json:"is_pinned"`
		Trashed   bool       `json:"is_deleted"`
		DeletedAt *time.Time `json:"deleted_at"`
		CreatedAt time.Time  `json:"created_at"`
		UpdatedAt time.Time  `json:"updated_at"`
	}

	Tag struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Name      string    `json:"name"`
		Color     string    `json:"color,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
)

// Authenticated reports whether u identifies a signed-in user.
func (u User) Authenticated() bool { return u.ID != "" }

// DisplayName falls back from the full name to the email local part.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if local, _, _ := strings.Cut(u.Email, "@"); local != "" {
		return local
	}
	return "User"
}

// Initials returns up to two upper-cased initials of the display name.
func (u User) Initials() string {
	var r []rune
	for _, word := range strings.Fields(u.DisplayName()) {
		r = append(r, []rune(word)[0])
		if len(r) == 2 {
			break
		}
	}
	return strings.ToUpper(string(r))
}

// HasTag reports whether n references a tag.
func (n Note) HasTag() bool { return n.TagID != nil && *n.TagID != "" }

// TagIs reports whether n references the tag with the given id.
func (n Note) TagIs(id string) bool { return n.HasTag() && *n.TagID == id }

// NotePatch is a partial note update. Nil fields are left untouched.
type NotePatch struct {
	Title   *string    `json:"title,omitempty"`
	Content *string    `json:"content,omitempty"`
	TagID   OptionalID `json:"tag_id,omitzero"`
	Pinned  *bool      `json:"is_pinned,omitempty"`
	Deleted *bool      `json:"is_deleted,omitempty"`
}

// Edits reports whether the patch changes anything besides the trashed flag.
func (p NotePatch) Edits() bool {
	return p.Title != nil || p.Content != nil || p.TagID.Set || p.Pinned != nil
}

// OptionalID tells apart an absent JSON field, an explicit null and a value.
// A null or empty value means "no tag".
type OptionalID struct {
	Set   bool
	Value string
}

func SetID(id string) OptionalID { return OptionalID{Set: true, Value: id} }

func ClearID() OptionalID { return OptionalID{Set: true} }

// Ptr returns the referenced id, or nil when the reference is cleared.
func (o OptionalID) Ptr() *string {
	if !o.Set || o.Value == "" {
		return nil
	}
	v := o.Value
	return &v
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero lets encoders using omitzero skip an unset reference.
func (o OptionalID) IsZero() bool { return !o.Set }
