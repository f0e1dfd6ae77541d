package feedback

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-shiori/go-readability"
)

// Extractions shorter than this are treated as failures: a cookie banner or
// login wall distilled to a sentence would otherwise replace the feed snippet
// in rendered documents.
const minExtractedLength = 80

// ContentExtractor pulls readable text out of HTML pages linked from
// accepted feedback items (forum threads, changelog posts), so the rendered
// specification documents carry the full discussion instead of a snippet.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := collapseBlankRuns(article.TextContent)
	if len(text) < minExtractedLength {
		return "", fmt.Errorf("extracted content too short (%d chars)", len(text))
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(text))

	return text, nil
}

// collapseBlankRuns trims each line and squeezes runs of blank lines down to
// one paragraph break. Readability output from forum markup tends to keep the
// vertical whitespace of the page layout.
func collapseBlankRuns(text string) string {
	lines := strings.Split(text, "\n")

	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
