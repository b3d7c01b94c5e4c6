package slack

import (
	"unicode/utf8"
)

const (
	// maxHeaderLength is the limit of a header block's plain text
	maxHeaderLength = 150
	// maxSectionLength is the limit of a section block's text
	maxSectionLength = 3000
	// maxMessageLength keeps plain messages well below the API limit
	maxMessageLength = 4000
)

// truncateText cuts s to at most maxRunes characters, ending with an
// ellipsis when cut. Invalid UTF-8 bytes are counted as one character.
func truncateText(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	const ellipsis = "…"
	keep := maxRunes - 1
	if keep <= 0 {
		return ellipsis
	}

	count := 0
	for i := range s {
		if count == keep {
			return s[:i] + ellipsis
		}
		count++
	}
	return s
}
