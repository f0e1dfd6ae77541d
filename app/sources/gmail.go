package sources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/feedbackspec/ingest/app/feedback"
)

const gmailAPIBase = "https://gmail.googleapis.com/gmail/v1/users/me"

// GmailSource polls a Gmail inbox through the REST API using a configured
// bearer token. Token refresh is out of scope; a 401 surfaces as a fetch
// error and the run is retried once the operator rotates the token.
type GmailSource struct {
	config     *Config
	httpClient *http.Client
	userAgent  string
	apiBase    string
}

var _ SourceInterface = (*GmailSource)(nil)

func NewGmailSource(config *Config, httpClient *http.Client, userAgent string) *GmailSource {
	return &GmailSource{
		config:     config,
		httpClient: httpClient,
		userAgent:  userAgent,
		apiBase:    gmailAPIBase,
	}
}

type gmailListResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type gmailMessage struct {
	ID           string       `json:"id"`
	Snippet      string       `json:"snippet"`
	InternalDate string       `json:"internalDate"` // epoch milliseconds as string
	Payload      gmailPayload `json:"payload"`
}

type gmailPayload struct {
	MimeType string         `json:"mimeType"`
	Headers  []gmailHeader  `json:"headers"`
	Body     gmailBody      `json:"body"`
	Parts    []gmailPayload `json:"parts"`
}

type gmailHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type gmailBody struct {
	Data string `json:"data"` // base64url
}

func (s *GmailSource) Fetch(ctx context.Context) ([]feedback.RawItem, error) {
	ids, err := s.listRecentMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	items := make([]feedback.RawItem, 0, len(ids))
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		message, err := s.getMessage(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", id, err)
		}

		items = append(items, s.toRawItem(message))
	}

	return items, nil
}

func (s *GmailSource) listRecentMessages(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("in:inbox newer_than:%dh", s.config.Settings.WindowHours)
	if s.config.Gmail.Query != "" {
		query += " " + s.config.Gmail.Query
	}

	endpoint := fmt.Sprintf("%s/messages?q=%s&maxResults=%d",
		s.apiBase, url.QueryEscape(query), s.config.Settings.MaxItems)

	data, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var list gmailListResponse
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse message list: %w", err)
	}

	ids := make([]string, 0, len(list.Messages))
	for _, m := range list.Messages {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (s *GmailSource) getMessage(ctx context.Context, id string) (*gmailMessage, error) {
	data, err := s.get(ctx, fmt.Sprintf("%s/messages/%s?format=full", s.apiBase, id))
	if err != nil {
		return nil, err
	}

	var message gmailMessage
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &message, nil
}

func (s *GmailSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.Gmail.Token)
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (s *GmailSource) toRawItem(message *gmailMessage) feedback.RawItem {
	item := feedback.RawItem{
		Snippet:    message.Snippet,
		SourceID:   message.ID,
		Platform:   feedback.PlatformGmail,
		ReceivedAt: time.Now().UTC(),
	}

	for _, header := range message.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "subject":
			item.Subject = header.Value
		case "from":
			item.From = header.Value
		case "date":
			item.DateHeader = header.Value
		}
	}

	if message.InternalDate != "" {
		if millis, err := strconv.ParseInt(message.InternalDate, 10, 64); err == nil {
			item.InternalTimestamp = millis
		}
	}

	item.Body = extractPlainText(message.Payload)

	return item
}

// extractPlainText walks the MIME tree and returns the first text/plain part.
// Multipart messages nest parts arbitrarily deep.
func extractPlainText(payload gmailPayload) string {
	if strings.HasPrefix(payload.MimeType, "text/plain") && payload.Body.Data != "" {
		if decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(payload.Body.Data); err == nil {
			return string(decoded)
		}
	}

	for _, part := range payload.Parts {
		if text := extractPlainText(part); text != "" {
			return text
		}
	}

	return ""
}
