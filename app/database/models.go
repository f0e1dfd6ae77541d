package database

import (
	"time"
)

type Source struct {
	ID           string // Database UUID
	Name         string // Configuration source identifier derived from filename
	Platform     string
	LastSyncedAt *time.Time
	NextSyncAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Item is a stored feedback decision. Rejected items are kept as thin
// markers (reason only) for filter tuning; accepted items carry the full
// normalized record.
type Item struct {
	ID              string
	SourceName      string
	Platform        string
	SourceID        string
	SourceHash      string
	Accepted        bool
	RejectionReason string
	RejectionDetail string

	Content   string
	Category  string
	Priority  string
	Sentiment string
	Summary   string
	Subject   string
	Sender    string
	ItemDate  *time.Time

	Link             string
	ExtractedContent string
	ExtractionStatus string // pending, success, failed, skipped
	ExtractionError  string
	ExtractedAt      *time.Time

	ProcessedAt time.Time
	CreatedAt   time.Time
}

// DecisionRecord is the write model handed to StoreDecision.
type DecisionRecord struct {
	Platform        string
	SourceID        string
	SourceHash      string
	Accepted        bool
	RejectionReason string
	RejectionDetail string

	Content   string
	Category  string
	Priority  string
	Sentiment string
	Summary   string
	Subject   string
	Sender    string
	ItemDate  *time.Time
	Link      string

	ProcessedAt time.Time
}

type ItemForExtraction struct {
	ID   string
	Link string
}
