package feedback

import (
	"strings"
	"testing"
)

func TestContentExtractor_ExtractsArticleText(t *testing.T) {
	extractor := NewContentExtractor()

	html := `<!DOCTYPE html>
	<html>
	<head><title>Feature request thread</title></head>
	<body>
		<nav><a href="/home">Home</a><a href="/forum">Forum</a></nav>
		<article>
			<h1>Please add keyboard shortcuts</h1>
			<p>Our team spends most of the day inside the editor and the lack of
			keyboard shortcuts slows everyone down considerably. Being able to save,
			switch tabs and trigger a build without reaching for the mouse would be
			a substantial quality of life improvement for power users.</p>
			<p>Several other tools in this space already support configurable
			bindings, and it is the single feature our team misses most after
			migrating. We would happily beta test an early version of this.</p>
		</article>
		<footer>Copyright 2026</footer>
	</body>
	</html>`

	content, err := extractor.Run([]byte(html))
	if err != nil {
		t.Fatalf("Expected successful extraction, got error: %v", err)
	}

	if !strings.Contains(content, "keyboard shortcuts") {
		t.Errorf("Extracted content should contain the article text, got: %q", content)
	}
}

func TestContentExtractor_CollapsesWhitespace(t *testing.T) {
	extractor := NewContentExtractor()

	html := `<!DOCTYPE html>
	<html>
	<head><title>Forum thread</title></head>
	<body>
		<article>
			<p>The search index stops updating after roughly ten thousand
			documents and new entries silently never appear in results.</p>
			<div><br/><br/></div>
			<p>Rebuilding the index from scratch fixes it for a while, but the
			problem always comes back once the corpus grows past that point.</p>
		</article>
	</body>
	</html>`

	content, err := extractor.Run([]byte(html))
	if err != nil {
		t.Fatalf("Expected successful extraction, got error: %v", err)
	}

	if strings.Contains(content, "\n\n\n") {
		t.Errorf("Blank-line runs should be collapsed, got: %q", content)
	}
	if content != strings.TrimSpace(content) {
		t.Error("Extracted content should carry no surrounding whitespace")
	}
}

func TestContentExtractor_ShortContentRejected(t *testing.T) {
	extractor := NewContentExtractor()

	html := `<html><head><title>Login</title></head><body><p>Please sign in.</p></body></html>`

	if _, err := extractor.Run([]byte(html)); err == nil {
		t.Error("Near-empty extractions should be reported as errors")
	}
}

func TestContentExtractor_EmptyData(t *testing.T) {
	extractor := NewContentExtractor()

	if _, err := extractor.Run(nil); err == nil {
		t.Error("Empty HTML data should return an error")
	}
	if _, err := extractor.Run([]byte{}); err == nil {
		t.Error("Empty HTML data should return an error")
	}
}
