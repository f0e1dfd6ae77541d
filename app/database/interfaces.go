package database

import (
	"time"
)

type SourceRepository interface {
	GetSource(sourceName string) (*Source, error)
	GetSourceCount() (int, error)

	UpsertSource(sourceName, platform string) error
	UpdateSyncStatus(sourceName string, nextSync time.Time) error
}

type ItemRepository interface {
	// IsProcessed reports whether the (source, platform, source_id) triple
	// already has a stored decision. Checked before the pipeline runs so
	// re-processing the same item is idempotent.
	IsProcessed(sourceName, platform, sourceID string) (bool, error)

	StoreDecision(sourceName string, record DecisionRecord) error

	GetAcceptedItems(sourceName string, limit int) ([]Item, error)
	GetItemCount(sourceName string) (int, error)
	GetItemStats(sourceName string) (total, accepted, rejected int, err error)

	GetItemsForExtraction(sourceName string, limit int) ([]ItemForExtraction, error)
	UpdateExtractedContent(itemID string, content string, extractedAt *time.Time) error
	UpdateExtractionStatus(itemID string, status string, extractedAt *time.Time, errorMsg string) error
}
