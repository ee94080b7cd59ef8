package notes

import (
	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/query"
)

type CreateNoteRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	TagID   *string `json:"tag_id"`
}

type ToggleTagRequest struct {
	TagID string `json:"tag_id"`
}

type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type DeleteTagResponse struct {
	ClearedNotes int64 `json:"cleared_notes"`
}

type EmptyTrashResponse struct {
	Purged int64 `json:"purged"`
}

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Profile is the signed-in user as the sidebar footer shows it.
type Profile struct {
	model.User
	DisplayName string `json:"display_name"`
	Initials    string `json:"initials"`
}

func newProfile(u model.User) Profile {
	return Profile{User: u, DisplayName: u.DisplayName(), Initials: u.Initials()}
}

type SidebarResponse struct {
	View   query.View   `json:"view"`
	Filter query.Filter `json:"filter"`
	Search string       `json:"search"`
	query.Result
	Previews map[string]string `json:"previews"`
}
