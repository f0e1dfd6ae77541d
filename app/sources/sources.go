package sources

import (
	"fmt"
	"net/http"
)

// New builds the connector for a source configuration.
func New(config *Config, httpClient *http.Client, userAgent string) (SourceInterface, error) {
	switch config.Platform {
	case "gmail":
		return NewGmailSource(config, httpClient, userAgent), nil
	case "rss":
		return NewRSSSource(config, httpClient, userAgent), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", config.Platform)
	}
}
