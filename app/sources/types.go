package sources

import (
	"context"

	"github.com/feedbackspec/ingest/app/feedback"
)

// SourceInterface is implemented by every integration connector. Fetch
// returns recent raw items; deduplication against already-processed items
// happens downstream against storage.
type SourceInterface interface {
	Fetch(ctx context.Context) ([]feedback.RawItem, error)
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Platform string         `yaml:"platform"`
	Settings ConfigSettings `yaml:"settings"`
	Gmail    GmailSettings  `yaml:"gmail"`
	RSS      RSSSettings    `yaml:"rss"`
}

type ConfigSettings struct {
	Enabled        bool `yaml:"enabled"`
	SyncInterval   int  `yaml:"sync_interval"` // seconds
	MaxItems       int  `yaml:"max_items"`     // per-run item cap
	WindowHours    int  `yaml:"window_hours"`  // recency window for a sync run
	Timeout        int  `yaml:"timeout"`       // seconds
	ExtractContent bool `yaml:"extract_content"`
}

type GmailSettings struct {
	// Token is a ready-to-use OAuth bearer token. Token acquisition and
	// refresh live outside this service.
	Token string `yaml:"token"`
	Query string `yaml:"query"` // extra Gmail search terms, optional
}

type RSSSettings struct {
	URL string `yaml:"url"`
}
