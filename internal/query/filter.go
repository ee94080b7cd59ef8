package query

import (
	"errors"
	"fmt"
	"strings"

	"example.com/notes-api/internal/model"
)

var ErrInvalidFilter = errors.New("invalid filter")

type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterUntagged
	FilterTag
)

// Filter is the sidebar's persistent view restriction.
type Filter struct {
	Kind  FilterKind
	TagID string
}

var (
	All      = Filter{Kind: FilterAll}
	Untagged = Filter{Kind: FilterUntagged}
)

func ByTag(id string) Filter { return Filter{Kind: FilterTag, TagID: id} }

// ParseFilter accepts "all", "untagged" or "tag:<id>". Empty input means all.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "all":
		return All, nil
	case s == UntaggedKeyword:
		return Untagged, nil
	case strings.HasPrefix(s, tagPrefix):
		id := strings.TrimSpace(s[len(tagPrefix):])
		if id == "" {
			return Filter{}, fmt.Errorf("%w: missing tag id", ErrInvalidFilter)
		}
		return ByTag(id), nil
	}
	return Filter{}, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

func (f Filter) String() string {
	switch f.Kind {
	case FilterUntagged:
		return UntaggedKeyword
	case FilterTag:
		return tagPrefix + f.TagID
	default:
		return "all"
	}
}

// Match reports whether n passes the filter.
func (f Filter) Match(n model.Note) bool {
	switch f.Kind {
	case FilterUntagged:
		return !n.HasTag()
	case FilterTag:
		return n.TagIs(f.TagID)
	default:
		return true
	}
}

func (f Filter) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Filter) UnmarshalText(b []byte) error {
	parsed, err := ParseFilter(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// View is the top-level screen the sidebar is attached to.
type View string

const (
	ViewNotes View = "notes"
	ViewTrash View = "trash"
	ViewAI    View = "ai"
)

// ParseView defaults to the notes view for empty input.
func ParseView(s string) (View, error) {
	switch v := View(strings.TrimSpace(s)); v {
	case "":
		return ViewNotes, nil
	case ViewNotes, ViewTrash, ViewAI:
		return v, nil
	}
	return "", fmt.Errorf("invalid view %q", s)
}

// Shows reports whether a note with the given trashed flag belongs in v.
func (v View) Shows(trashed bool) bool {
	if v == ViewTrash {
		return trashed
	}
	return !trashed
}
