package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/feedbackspec/ingest/app/feedback"
)

type rawResult struct {
	Category   string   `json:"category"`
	Confidence *float64 `json:"confidence"`
	Sentiment  string   `json:"sentiment"`
	Priority   string   `json:"priority"`
	Summary    string   `json:"summary"`
}

var validCategories = map[feedback.Category]bool{
	feedback.CategoryBug:         true,
	feedback.CategoryFeature:     true,
	feedback.CategoryImprovement: true,
	feedback.CategoryComplaint:   true,
	feedback.CategoryPraise:      true,
	feedback.CategorySuggestion:  true,
	feedback.CategoryGeneral:     true,
}

var validSentiments = map[feedback.Sentiment]bool{
	feedback.SentimentPositive: true,
	feedback.SentimentNeutral:  true,
	feedback.SentimentNegative: true,
}

var validPriorities = map[feedback.Priority]bool{
	feedback.PriorityLow:    true,
	feedback.PriorityMedium: true,
	feedback.PriorityHigh:   true,
	feedback.PriorityUrgent: true,
}

// parseResult turns the model's text answer into a validated result.
// Category and confidence are required; sentiment and priority are advisory
// and default when absent, but an unrecognized value is still a contract
// violation.
func parseResult(text string) (feedback.ClassificationResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw rawResult
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return feedback.ClassificationResult{}, fmt.Errorf("parse classifier result: %w", err)
	}

	category := feedback.Category(strings.ToLower(strings.TrimSpace(raw.Category)))
	if !validCategories[category] {
		return feedback.ClassificationResult{}, fmt.Errorf("classifier result has invalid category: %q", raw.Category)
	}

	if raw.Confidence == nil {
		return feedback.ClassificationResult{}, fmt.Errorf("classifier result missing confidence")
	}
	confidence := *raw.Confidence
	if confidence < 0 || confidence > 1 {
		return feedback.ClassificationResult{}, fmt.Errorf("classifier confidence out of range: %v", confidence)
	}

	sentiment := feedback.Sentiment(strings.ToLower(strings.TrimSpace(raw.Sentiment)))
	if sentiment == "" {
		sentiment = feedback.SentimentNeutral
	}
	if !validSentiments[sentiment] {
		return feedback.ClassificationResult{}, fmt.Errorf("classifier result has invalid sentiment: %q", raw.Sentiment)
	}

	priority := feedback.Priority(strings.ToLower(strings.TrimSpace(raw.Priority)))
	if priority == "" {
		priority = feedback.PriorityMedium
	}
	if !validPriorities[priority] {
		return feedback.ClassificationResult{}, fmt.Errorf("classifier result has invalid priority: %q", raw.Priority)
	}

	return feedback.ClassificationResult{
		Category:   category,
		Confidence: confidence,
		Sentiment:  sentiment,
		Priority:   priority,
		Summary:    strings.TrimSpace(raw.Summary),
	}, nil
}
