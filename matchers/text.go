package matchers

import "strings"

// Contains reports whether keyword occurs anywhere in text. Both sides
// are expected to be lower-cased by the caller; matching is plain
// substring containment, not word-boundary aware.
func Contains(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(text, keyword)
}

const snippetLen = 200

// PostSnippet is the match_text recorded for a submission hit.
func PostSnippet(title string) string {
	return "Title: " + truncate(title, snippetLen) + "..."
}

// CommentSnippet is the match_text recorded for a comment hit.
func CommentSnippet(body string) string {
	return truncate(body, snippetLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary so multibyte text isn't split mid-character.
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
