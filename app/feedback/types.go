package feedback

import (
	"context"
	"time"
)

// Feedback processing types

type Platform string

const (
	PlatformGmail   Platform = "gmail"
	PlatformTwitter Platform = "twitter"
	PlatformRSS     Platform = "rss"
	PlatformManual  Platform = "manual"
)

type Category string

const (
	CategoryBug         Category = "bug"
	CategoryFeature     Category = "feature"
	CategoryImprovement Category = "improvement"
	CategoryComplaint   Category = "complaint"
	CategoryPraise      Category = "praise"
	CategorySuggestion  Category = "suggestion"
	CategoryGeneral     Category = "general"
)

// ActionableCategories is the allow-list used by the acceptance gate.
// "general" is deliberately excluded: it is the classifier's catch-all
// for messages that mention the product without asking for anything.
var ActionableCategories = map[Category]bool{
	CategoryBug:         true,
	CategoryFeature:     true,
	CategoryImprovement: true,
	CategoryComplaint:   true,
	CategoryPraise:      true,
	CategorySuggestion:  true,
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// RawItem is an inbound message before any filtering or classification.
// Missing fields are represented as empty strings, never as errors.
type RawItem struct {
	Subject  string
	Body     string
	Snippet  string // short preview, stands in for Body when Body is empty
	From     string
	SourceID string // platform-specific unique id, e.g. Gmail message id
	Platform Platform

	// Link is the URL of the originating post for platforms that have one
	// (forum threads, changelog comments). Used for full-text extraction.
	Link string

	// DateHeader is the platform's explicit date header, if any (e.g. the
	// RFC 2822 Date header of an email). May be empty or unparseable.
	DateHeader string

	// InternalTimestamp is the platform's internal epoch-millisecond
	// timestamp (e.g. Gmail internalDate). Zero means absent.
	InternalTimestamp int64

	ReceivedAt time.Time
}

// Text returns the message body, falling back to the snippet. Both the
// pre-filter heuristics and the persisted content operate on the same text.
func (i RawItem) Text() string {
	if i.Body != "" {
		return i.Body
	}
	return i.Snippet
}

// ClassificationResult is the validated output of the external classifier.
// Field validation happens at the classifier boundary; the gate can assume
// the enums are well-formed and confidence is within [0,1].
type ClassificationResult struct {
	Category   Category
	Confidence float64
	Sentiment  Sentiment
	Priority   Priority

	// Advisory fields, passed through to the normalized record unchanged.
	Summary string
}

// ClassifierInterface is the collaborator contract for the external AI
// classifier. Failures propagate to the caller; they are never converted
// into rejection decisions.
type ClassifierInterface interface {
	Run(ctx context.Context, item RawItem) (ClassificationResult, error)
}

type RejectionReason string

const (
	ReasonNone                  RejectionReason = "none"
	ReasonObviousNonFeedback    RejectionReason = "obvious_non_feedback"
	ReasonLowConfidenceCategory RejectionReason = "low_confidence_category"
)

// RecordMetadata carries the normalized envelope of an accepted item.
type RecordMetadata struct {
	Subject     string
	From        string
	Date        string // RFC 3339
	ProcessedAt string // RFC 3339
}

// NormalizedRecord is the persistable form of an accepted item.
type NormalizedRecord struct {
	Content   string
	Category  Category
	Priority  Priority
	Sentiment Sentiment
	Summary   string
	Metadata  RecordMetadata
}

// Decision is the core's output for a single item. Rejections are normal,
// expected outcomes, not errors.
type Decision struct {
	Accepted bool
	Reason   RejectionReason
	// Detail is a human-readable explanation of a rejection, persisted for
	// filter tuning. Empty for accepted items.
	Detail string
	// Record is only present when Accepted is true.
	Record *NormalizedRecord
}
