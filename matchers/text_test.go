package matchers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains_Match(t *testing.T) {
	assert.True(t, Contains("application", "app"))
	assert.True(t, Contains("hello world", "hello"))
	assert.True(t, Contains("hello world", "world"))
	assert.True(t, Contains("launch day", "launch"))
}

func TestContains_NoMatch(t *testing.T) {
	assert.False(t, Contains("hello", "world"))
	assert.False(t, Contains("golang", "rust"))
}

func TestContains_EdgeCases(t *testing.T) {
	assert.True(t, Contains("app", "app"))
	assert.False(t, Contains("", "app"))
	assert.False(t, Contains("app", ""), "empty keyword never matches")
}

func TestPostSnippet(t *testing.T) {
	assert.Equal(t, "Title: Launch day...", PostSnippet("Launch day"))

	long := strings.Repeat("a", 300)
	snippet := PostSnippet(long)
	assert.Equal(t, "Title: "+strings.Repeat("a", 200)+"...", snippet)
}

func TestCommentSnippet(t *testing.T) {
	assert.Equal(t, "short body", CommentSnippet("short body"))

	long := strings.Repeat("b", 300)
	assert.Equal(t, strings.Repeat("b", 200), CommentSnippet(long))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// 2-byte runes; a cut at an odd offset must back up to a boundary.
	s := strings.Repeat("é", 120)
	out := truncate(s, 201)
	assert.Equal(t, 200, len(out))
	assert.True(t, strings.HasSuffix(out, "é"))
}
