package query

import (
	"slices"

	"example.com/notes-api/internal/model"
)

type Input struct {
	Notes  []model.Note
	Tags   []model.Tag
	View   View
	Filter Filter
	Search string
}

type Result struct {
	Notes       []model.Note `json:"notes"`
	Suggestions Suggestions  `json:"suggestions"`
	Searching   bool         `json:"searching"`
}

// Display filters and orders notes for the sidebar:
// view, then active filter, then search (intersected), then pinned first.
// Order within the pinned and unpinned groups follows in.Notes.
func Display(in Input) Result {
	q := ParseQuery(in.Search)

	names := make(map[string]string, len(in.Tags))
	for _, t := range in.Tags {
		names[t.ID] = t.Name
	}

	out := make([]model.Note, 0, len(in.Notes))
	for _, n := range in.Notes {
		if !in.View.Shows(n.Trashed) || !in.Filter.Match(n) {
			continue
		}
		var tagName string
		if n.HasTag() {
			tagName = names[*n.TagID]
		}
		if !q.MatchNote(n, tagName) {
			continue
		}
		out = append(out, n)
	}

	slices.SortStableFunc(out, func(a, b model.Note) int {
		switch {
		case a.Pinned == b.Pinned:
			return 0
		case a.Pinned:
			return -1
		default:
			return 1
		}
	})

	return Result{
		Notes:       out,
		Suggestions: q.Suggest(in.Tags),
		Searching:   q.Active(),
	}
}
