// Package citation decodes the delimited title/content string pair the
// external responder attaches to a reply into structured citation records.
package citation

import (
	"fmt"
	"strings"

	"chatdesk/internal/model"
)

// The responder joins citation titles with one delimiter and citation bodies
// with another. The content delimiter additionally shows up in escaped and
// entity-encoded variants depending on which workflow produced the reply.
const (
	titleDelimiter   = ";;;"
	contentDelimiter = "<|||>"
)

var contentDelimiterVariants = []string{
	contentDelimiter,
	`<\|\|\|>`,
	"&lt;|||&gt;",
}

// Parse reconstructs citations by positionally pairing the delimited title
// list with the delimited content list. Mismatched counts drop the unmatched
// tail rather than erroring. Citation ids are derived from baseID and the
// pair index so repeated parses of the same message are stable.
func Parse(baseID, rawTitles, rawContents string) []model.Citation {
	titles := splitAndTrim(rawTitles, titleDelimiter)
	if len(titles) == 0 {
		return nil
	}

	contents := splitContents(rawContents, len(titles))

	n := len(titles)
	if len(contents) < n {
		n = len(contents)
	}

	citations := make([]model.Citation, 0, n)
	for i := 0; i < n; i++ {
		citations = append(citations, model.Citation{
			ID:         fmt.Sprintf("%s-c%d", baseID, i),
			SourceKind: model.SourceKnowledgeBase,
			Title:      titles[i],
			Snippet:    contents[i],
		})
	}
	return citations
}

// splitContents tries each known delimiter form in order. If none is present
// but several titles exist, the content string is segmented into equal-length
// chunks as a last-resort alignment. That fallback is approximate: the
// responder gives no contract for delimiter-less replies, so the grouping may
// be wrong but is preserved for compatibility.
func splitContents(raw string, titleCount int) []string {
	for _, delim := range contentDelimiterVariants {
		if strings.Contains(raw, delim) {
			return splitAndTrim(raw, delim)
		}
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if titleCount <= 1 {
		return []string{trimmed}
	}
	return chunkEqually(raw, titleCount)
}

// chunkEqually slices s into n contiguous segments of near-equal rune length.
// The segments concatenate back to the original string.
func chunkEqually(s string, n int) []string {
	runes := []rune(s)
	if len(runes) < n {
		n = len(runes)
	}
	chunks := make([]string, 0, n)
	size := len(runes) / n
	rem := len(runes) % n

	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rem {
			end++
		}
		chunks = append(chunks, string(runes[start:end]))
		start = end
	}
	return chunks
}

func splitAndTrim(s, delim string) []string {
	var out []string
	for _, part := range strings.Split(s, delim) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
