package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feedbackspec/ingest/app/feedback"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Missing bearer auth header, got %q", r.Header.Get("Authorization"))
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testItem() feedback.RawItem {
	return feedback.RawItem{
		Subject:  "Bug report",
		Body:     "The login button does nothing when clicked.",
		From:     "user@example.com",
		SourceID: "msg-1",
		Platform: feedback.PlatformGmail,
	}
}

func TestClient_Run(t *testing.T) {
	server := chatServer(t, `{"category":"bug","confidence":0.92,"sentiment":"negative","priority":"high","summary":"Login broken"}`)
	defer server.Close()

	client := NewClient(server.URL, "test-model", "test-key", 5*time.Second)

	result, err := client.Run(context.Background(), testItem())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Category != feedback.CategoryBug {
		t.Errorf("Expected category bug, got %q", result.Category)
	}
	if result.Confidence != 0.92 {
		t.Errorf("Expected confidence 0.92, got %v", result.Confidence)
	}
	if result.Priority != feedback.PriorityHigh || result.Sentiment != feedback.SentimentNegative {
		t.Errorf("Unexpected result: %+v", result)
	}
	if result.Summary != "Login broken" {
		t.Errorf("Summary should pass through, got %q", result.Summary)
	}
}

func TestClient_MarkdownFencedResponse(t *testing.T) {
	server := chatServer(t, "```json\n{\"category\":\"feature\",\"confidence\":0.8}\n```")
	defer server.Close()

	client := NewClient(server.URL, "test-model", "test-key", 5*time.Second)

	result, err := client.Run(context.Background(), testItem())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Category != feedback.CategoryFeature {
		t.Errorf("Expected category feature, got %q", result.Category)
	}
	if result.Sentiment != feedback.SentimentNeutral {
		t.Errorf("Missing sentiment should default to neutral, got %q", result.Sentiment)
	}
	if result.Priority != feedback.PriorityMedium {
		t.Errorf("Missing priority should default to medium, got %q", result.Priority)
	}
}

func TestClient_MalformedResults(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "I think this is a bug report."},
		{"missing category", `{"confidence":0.9}`},
		{"unknown category", `{"category":"question","confidence":0.9}`},
		{"missing confidence", `{"category":"bug"}`},
		{"confidence out of range", `{"category":"bug","confidence":1.4}`},
		{"invalid sentiment", `{"category":"bug","confidence":0.9,"sentiment":"angry"}`},
		{"invalid priority", `{"category":"bug","confidence":0.9,"priority":"critical"}`},
	}

	for _, tc := range cases {
		server := chatServer(t, tc.content)
		client := NewClient(server.URL, "test-model", "test-key", 5*time.Second)

		if _, err := client.Run(context.Background(), testItem()); err == nil {
			t.Errorf("Case %q should fail validation", tc.name)
		}
		server.Close()
	}
}

func TestClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-model", "test-key", 5*time.Second)

	if _, err := client.Run(context.Background(), testItem()); err == nil {
		t.Error("HTTP error status should surface as an error")
	}
}

func TestClient_Misconfigured(t *testing.T) {
	client := NewClient("", "", "", time.Second)

	if _, err := client.Run(context.Background(), testItem()); err == nil {
		t.Error("Missing configuration should fail fast")
	}
}
