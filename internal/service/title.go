package service

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultThreadTitle labels a thread whose first message has no text.
const DefaultThreadTitle = "New conversation"

const titleEllipsis = "…"

// SummarizeTitle derives a thread title from the first user message. The
// result fits in maxWidth terminal cells and is cut at a word boundary.
func SummarizeTitle(text string, maxWidth int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return DefaultThreadTitle
	}
	full := strings.Join(words, " ")
	if runewidth.StringWidth(full) <= maxWidth {
		return full
	}

	budget := maxWidth - runewidth.StringWidth(titleEllipsis)
	var b strings.Builder
	width := 0
	for _, word := range words {
		w := runewidth.StringWidth(word)
		sep := 0
		if b.Len() > 0 {
			sep = 1
		}
		if width+sep+w > budget {
			break
		}
		if sep == 1 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
		width += sep + w
	}

	// A single word wider than the budget has no boundary to cut at.
	if b.Len() == 0 {
		return runewidth.Truncate(words[0], maxWidth, titleEllipsis)
	}
	return b.String() + titleEllipsis
}
