package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/feedbackspec/ingest/app/feedback"
)

// Client calls an OpenAI-compatible chat-completions endpoint to classify a
// raw item. The model is instructed to answer with a single JSON object;
// anything that does not validate against the result contract is an error,
// never a silent default.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ feedback.ClassifierInterface = (*Client)(nil)

func NewClient(endpoint, model, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Run(ctx context.Context, item feedback.RawItem) (feedback.ClassificationResult, error) {
	if c.endpoint == "" || c.model == "" || c.apiKey == "" {
		return feedback.ClassificationResult{}, fmt.Errorf("classifier client misconfigured")
	}

	raw, err := c.complete(ctx, buildPrompt(item))
	if err != nil {
		return feedback.ClassificationResult{}, err
	}

	return parseResult(raw)
}

const systemPrompt = "You are a product feedback analyst. You classify inbound " +
	"messages about a software product and respond with JSON only."

func buildPrompt(item feedback.RawItem) string {
	var sb strings.Builder

	sb.WriteString("Classify the following message as product feedback.\n\n")
	fmt.Fprintf(&sb, "Platform: %s\n", item.Platform)
	fmt.Fprintf(&sb, "From: %s\n", item.From)
	fmt.Fprintf(&sb, "Subject: %s\n", item.Subject)
	sb.WriteString("Message:\n")
	sb.WriteString(item.Text())
	sb.WriteString("\n\n")

	sb.WriteString(`Return a JSON object with this structure:
{
  "category": "bug|feature|improvement|complaint|praise|suggestion|general",
  "confidence": 0.0,
  "sentiment": "positive|neutral|negative",
  "priority": "low|medium|high|urgent",
  "summary": "one sentence summary"
}

Rules:
- "category" is "general" when the message mentions the product without asking for or reporting anything specific
- "confidence" is 0.0-1.0 for how certain the category assignment is
- "priority" reflects user impact, not sentiment strength

Return ONLY the JSON, no other text.`)

	return sb.String()
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("classifier error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read classifier response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal classifier response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("classifier error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty classifier response")
	}

	return chatResp.Choices[0].Message.Content, nil
}
