package sources

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/feedbackspec/ingest/app/feedback"
)

// RSSSource ingests public RSS/Atom feeds (community forums, changelog
// comment feeds) as a feedback channel.
type RSSSource struct {
	config       *Config
	httpClient   *http.Client
	userAgent    string
	gofeedParser *gofeed.Parser
}

var _ SourceInterface = (*RSSSource)(nil)

func NewRSSSource(config *Config, httpClient *http.Client, userAgent string) *RSSSource {
	return &RSSSource{
		config:       config,
		httpClient:   httpClient,
		userAgent:    userAgent,
		gofeedParser: gofeed.NewParser(),
	}
}

func (s *RSSSource) Fetch(ctx context.Context) ([]feedback.RawItem, error) {
	data, err := s.fetchFeed(ctx, s.config.RSS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := s.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	cutoff := time.Now().UTC().Add(-time.Duration(s.config.Settings.WindowHours) * time.Hour)

	items := make([]feedback.RawItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry.PublishedParsed != nil && entry.PublishedParsed.Before(cutoff) {
			continue
		}

		items = append(items, s.toRawItem(entry))
		if len(items) >= s.config.Settings.MaxItems {
			break
		}
	}

	return items, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (s *RSSSource) toRawItem(entry *gofeed.Item) feedback.RawItem {
	item := feedback.RawItem{
		Subject:    entry.Title,
		Body:       cmp.Or(entry.Content, entry.Description),
		SourceID:   cmp.Or(entry.GUID, entry.Link),
		Platform:   feedback.PlatformRSS,
		Link:       entry.Link,
		From:       extractAuthor(entry),
		ReceivedAt: time.Now().UTC(),
	}

	if entry.PublishedParsed != nil {
		item.InternalTimestamp = entry.PublishedParsed.UnixMilli()
	}

	return item
}

func extractAuthor(entry *gofeed.Item) string {
	var authors []string

	if len(entry.Authors) > 0 {
		for _, author := range entry.Authors {
			if author != nil {
				if formatted := formatAuthor(author.Name, author.Email); formatted != "" {
					authors = append(authors, formatted)
				}
			}
		}
	} else if entry.Author != nil {
		if formatted := formatAuthor(entry.Author.Name, entry.Author.Email); formatted != "" {
			authors = append(authors, formatted)
		}
	}

	return strings.Join(authors, ", ")
}

func formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	}
	return email
}
