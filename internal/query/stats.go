package query

import (
	"strings"
	"unicode/utf8"

	"example.com/notes-api/internal/stringsx"
)

// Stats are the editor footer counters.
type Stats struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
}

// CountStats counts words and characters of the note text with markup removed.
func CountStats(content string) Stats {
	text := stringsx.PlainText(content)
	return Stats{
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(strings.TrimSpace(text)),
	}
}

const previewLength = 80

// Preview is the one-line content snippet shown under a note title.
func Preview(content string) string {
	text := strings.Join(strings.Fields(stringsx.PlainText(content)), " ")
	return stringsx.Clip(text, previewLength)
}
