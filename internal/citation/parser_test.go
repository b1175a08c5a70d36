package citation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdesk/internal/citation"
	"chatdesk/internal/model"
)

func TestParse_RoundTrip(t *testing.T) {
	citations := citation.Parse("msg1", "A;;;B;;;C", "a<|||>b<|||>c")

	require.Len(t, citations, 3)
	assert.Equal(t, "A", citations[0].Title)
	assert.Equal(t, "a", citations[0].Snippet)
	assert.Equal(t, "B", citations[1].Title)
	assert.Equal(t, "b", citations[1].Snippet)
	assert.Equal(t, "C", citations[2].Title)
	assert.Equal(t, "c", citations[2].Snippet)
}

func TestParse_DeterministicIDs(t *testing.T) {
	first := citation.Parse("base", "A;;;B", "a<|||>b")
	second := citation.Parse("base", "A;;;B", "a<|||>b")

	require.Len(t, first, 2)
	assert.Equal(t, "base-c0", first[0].ID)
	assert.Equal(t, "base-c1", first[1].ID)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
}

func TestParse_EscapedDelimiterVariants(t *testing.T) {
	t.Run("backslash escaped", func(t *testing.T) {
		citations := citation.Parse("m", "A;;;B", `first<\|\|\|>second`)
		require.Len(t, citations, 2)
		assert.Equal(t, "first", citations[0].Snippet)
		assert.Equal(t, "second", citations[1].Snippet)
	})

	t.Run("entity encoded", func(t *testing.T) {
		citations := citation.Parse("m", "A;;;B", "first&lt;|||&gt;second")
		require.Len(t, citations, 2)
		assert.Equal(t, "first", citations[0].Snippet)
		assert.Equal(t, "second", citations[1].Snippet)
	})
}

// When the content string has no delimiter at all but several titles exist,
// the parser falls back to equal-length chunking. The chunks must be
// non-empty and concatenate back to the original content.
func TestParse_EqualChunkFallback(t *testing.T) {
	content := "the quick brown fox jumps over the lazy dog"
	citations := citation.Parse("m", "First;;;Second", content)

	require.Len(t, citations, 2)
	assert.NotEmpty(t, citations[0].Snippet)
	assert.NotEmpty(t, citations[1].Snippet)
	assert.Equal(t, content, citations[0].Snippet+citations[1].Snippet)
}

func TestParse_MismatchedCountsDropTail(t *testing.T) {
	t.Run("more titles than contents", func(t *testing.T) {
		citations := citation.Parse("m", "A;;;B;;;C", "a<|||>b")
		require.Len(t, citations, 2)
		assert.Equal(t, "A", citations[0].Title)
		assert.Equal(t, "B", citations[1].Title)
	})

	t.Run("more contents than titles", func(t *testing.T) {
		citations := citation.Parse("m", "A", "a<|||>b<|||>c")
		require.Len(t, citations, 1)
		assert.Equal(t, "a", citations[0].Snippet)
	})
}

func TestParse_EmptyAndWhitespaceEntries(t *testing.T) {
	citations := citation.Parse("m", "A;;; ;;;B", "a<|||>b")

	require.Len(t, citations, 2)
	assert.Equal(t, "A", citations[0].Title)
	assert.Equal(t, "B", citations[1].Title)
}

func TestParse_NoTitles(t *testing.T) {
	assert.Nil(t, citation.Parse("m", "", "content without titles"))
	assert.Nil(t, citation.Parse("m", " ;;; ", "content"))
}

func TestParse_SingleTitleNoDelimiter(t *testing.T) {
	citations := citation.Parse("m", "Only title", "  plain content  ")

	require.Len(t, citations, 1)
	assert.Equal(t, "Only title", citations[0].Title)
	assert.Equal(t, "plain content", citations[0].Snippet)
	assert.Equal(t, model.SourceKnowledgeBase, citations[0].SourceKind)
}

func TestParse_UnicodeChunking(t *testing.T) {
	content := strings.Repeat("й", 7)
	citations := citation.Parse("m", "A;;;B;;;C", content)

	require.Len(t, citations, 3)
	assert.Equal(t, content, citations[0].Snippet+citations[1].Snippet+citations[2].Snippet)
}
