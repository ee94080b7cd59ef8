// Package query interprets sidebar search input and filter selections and
// turns a user's notes and tags into the ordered list the sidebar displays.
package query

import (
	"strings"

	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/stringsx"
)

const (
	tagPrefix = "tag:"

	// UntaggedKeyword names the pseudo-tag for notes without a tag.
	UntaggedKeyword = "untagged"
)

type Kind int

const (
	KindNone Kind = iota
	KindGeneral
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindGeneral:
		return "general"
	case KindTag:
		return "tag"
	default:
		return "none"
	}
}

// Query is the interpreted form of the search box.
// Term is trimmed and lower-cased; for KindTag it is the fragment after "tag:".
type Query struct {
	Kind Kind
	Term string
}

// ParseQuery interprets raw search input.
func ParseQuery(raw string) Query {
	s := stringsx.Normalize(raw)
	if s == "" {
		return Query{Kind: KindNone}
	}
	if rest, ok := strings.CutPrefix(s, tagPrefix); ok {
		return Query{Kind: KindTag, Term: strings.TrimSpace(rest)}
	}
	return Query{Kind: KindGeneral, Term: s}
}

// Active reports whether the query narrows anything.
func (q Query) Active() bool { return q.Kind != KindNone }

// Open reports a "tag:" search with no fragment yet.
func (q Query) Open() bool { return q.Kind == KindTag && q.Term == "" }

// MatchNote applies the query's note predicate. tagName is the name of the
// tag the note references, or "" when it has none.
func (q Query) MatchNote(n model.Note, tagName string) bool {
	switch q.Kind {
	case KindGeneral:
		return stringsx.ContainsFold(n.Title, q.Term) ||
			stringsx.ContainsFold(n.Content, q.Term) ||
			stringsx.ContainsFold(tagName, q.Term)
	case KindTag:
		if q.Term == "" {
			return true
		}
		if q.Term == UntaggedKeyword {
			return !n.HasTag()
		}
		return tagName != "" && stringsx.ContainsFold(tagName, q.Term)
	default:
		return true
	}
}

// Suggestions is the "search by tag" result group.
type Suggestions struct {
	Tags     []model.Tag `json:"tags"`
	Untagged bool        `json:"untagged"`
}

func (s Suggestions) Empty() bool { return len(s.Tags) == 0 && !s.Untagged }

// Suggest lists the tags a user can pivot to for this query, in input order.
func (q Query) Suggest(tags []model.Tag) Suggestions {
	out := Suggestions{Tags: []model.Tag{}}
	if !q.Active() {
		return out
	}
	if q.Open() {
		out.Tags = append(out.Tags, tags...)
		out.Untagged = true
		return out
	}
	for _, t := range tags {
		if stringsx.ContainsFold(t.Name, q.Term) {
			out.Tags = append(out.Tags, t)
		}
	}
	out.Untagged = strings.Contains(UntaggedKeyword, q.Term)
	return out
}
