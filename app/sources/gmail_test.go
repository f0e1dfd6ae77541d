package sources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feedbackspec/ingest/app/feedback"
)

func gmailTestConfig() *Config {
	return &Config{
		Name:     "support-inbox",
		Platform: "gmail",
		Gmail:    GmailSettings{Token: "test-token"},
		Settings: ConfigSettings{MaxItems: 50, WindowHours: 24, Timeout: 5},
	}
}

func b64url(s string) string {
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(s))
}

func TestGmailSource_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Expected bearer token header, got %q", r.Header.Get("Authorization"))
		}

		if strings.Contains(r.URL.Path, "/messages/msg-1") {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":           "msg-1",
				"snippet":      "The login button does nothing...",
				"internalDate": "1700000000000",
				"payload": map[string]interface{}{
					"mimeType": "multipart/alternative",
					"headers": []map[string]string{
						{"name": "Subject", "value": "Bug report: Login broken"},
						{"name": "From", "value": "user@example.com"},
						{"name": "Date", "value": "Tue, 14 Nov 2023 22:13:20 +0000"},
					},
					"parts": []map[string]interface{}{
						{
							"mimeType": "text/plain",
							"body":     map[string]string{"data": b64url("The login button does nothing when clicked.")},
						},
					},
				},
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]string{{"id": "msg-1"}},
		})
	}))
	defer server.Close()

	source := NewGmailSource(gmailTestConfig(), server.Client(), "test-agent")
	source.apiBase = server.URL

	items, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Platform != feedback.PlatformGmail || item.SourceID != "msg-1" {
		t.Errorf("Item identity mismatch: %+v", item)
	}
	if item.Subject != "Bug report: Login broken" {
		t.Errorf("Subject header not mapped, got %q", item.Subject)
	}
	if item.From != "user@example.com" {
		t.Errorf("From header not mapped, got %q", item.From)
	}
	if item.Body != "The login button does nothing when clicked." {
		t.Errorf("Plain text body not decoded, got %q", item.Body)
	}
	if item.InternalTimestamp != 1700000000000 {
		t.Errorf("Internal date not parsed, got %d", item.InternalTimestamp)
	}
	if item.DateHeader == "" {
		t.Error("Date header should be carried for normalization")
	}
}

func TestGmailSource_SnippetWhenNoPlainText(t *testing.T) {
	payload := gmailPayload{
		MimeType: "text/html",
		Body:     gmailBody{Data: b64url("<p>html only</p>")},
	}

	if text := extractPlainText(payload); text != "" {
		t.Errorf("HTML-only payload should yield no plain text, got %q", text)
	}
}

func TestGmailSource_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer server.Close()

	source := NewGmailSource(gmailTestConfig(), server.Client(), "test-agent")
	source.apiBase = server.URL

	if _, err := source.Fetch(context.Background()); err == nil {
		t.Error("Auth failure should surface as a fetch error")
	}
}
