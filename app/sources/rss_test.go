package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/feedbackspec/ingest/app/feedback"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Product Forum</title>
    <link>https://forum.example.com</link>
    <item>
      <title>Search is painfully slow on large projects</title>
      <link>https://forum.example.com/t/123</link>
      <guid>forum-123</guid>
      <description>Searching across a project with a few thousand files takes close to a minute.</description>
      <author>poweruser@example.com (Power User)</author>
      <pubDate>Mon, 24 Aug 2026 10:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	config := &Config{
		Name:     "forum",
		Platform: "rss",
		RSS:      RSSSettings{URL: server.URL},
		// Wide window so the fixed pubDate stays inside it.
		Settings: ConfigSettings{MaxItems: 50, WindowHours: 24 * 365 * 10, Timeout: 5},
	}

	source := NewRSSSource(config, server.Client(), "test-agent")

	items, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Platform != feedback.PlatformRSS {
		t.Errorf("Expected rss platform, got %q", item.Platform)
	}
	if item.SourceID != "forum-123" {
		t.Errorf("GUID should be the source ID, got %q", item.SourceID)
	}
	if item.Subject != "Search is painfully slow on large projects" {
		t.Errorf("Title should map to subject, got %q", item.Subject)
	}
	if item.Link != "https://forum.example.com/t/123" {
		t.Errorf("Link not mapped, got %q", item.Link)
	}
	if item.InternalTimestamp == 0 {
		t.Error("Published date should map to the internal timestamp")
	}
	if item.Body == "" {
		t.Error("Description should map to the body")
	}
}

func TestRSSSource_FetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	config := &Config{
		Name:     "forum",
		Platform: "rss",
		RSS:      RSSSettings{URL: server.URL},
		Settings: ConfigSettings{MaxItems: 50, WindowHours: 24, Timeout: 5},
	}

	source := NewRSSSource(config, server.Client(), "test-agent")
	if _, err := source.Fetch(context.Background()); err == nil {
		t.Error("HTTP error should surface as a fetch error")
	}
}

func TestNew_UnsupportedPlatform(t *testing.T) {
	if _, err := New(&Config{Platform: "carrier-pigeon"}, http.DefaultClient, "ua"); err == nil {
		t.Error("Unsupported platform should return an error")
	}
}
