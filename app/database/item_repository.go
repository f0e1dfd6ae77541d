package database

import (
	"database/sql"
	"fmt"
	"time"
)

// ItemRepositoryImpl handles database operations for feedback items
type ItemRepositoryImpl struct {
	db *DB
}

var _ ItemRepository = (*ItemRepositoryImpl)(nil)

func NewItemRepository(db *DB) *ItemRepositoryImpl {
	return &ItemRepositoryImpl{db: db}
}

func (r *ItemRepositoryImpl) IsProcessed(sourceName, platform, sourceID string) (bool, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM feedback_items
		WHERE source_name = $1 AND platform = $2 AND source_id = $3
		LIMIT 1
	`, sourceName, platform, sourceID).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check processed state: %w", err)
	}

	return true, nil
}

// StoreDecision persists a pipeline decision. Conflicting inserts are
// ignored: the first decision for a source item wins, keeping re-processing
// idempotent.
func (r *ItemRepositoryImpl) StoreDecision(sourceName string, record DecisionRecord) error {
	_, err := r.db.Exec(`
		INSERT INTO feedback_items (
			source_name, platform, source_id, source_hash,
			accepted, rejection_reason, rejection_detail,
			content, category, priority, sentiment, summary,
			subject, sender, item_date, link, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (source_name, platform, source_id) DO NOTHING
	`, sourceName, record.Platform, record.SourceID, record.SourceHash,
		record.Accepted, record.RejectionReason, record.RejectionDetail,
		record.Content, record.Category, record.Priority, record.Sentiment, record.Summary,
		record.Subject, record.Sender, record.ItemDate, record.Link, record.ProcessedAt)

	if err != nil {
		return fmt.Errorf("failed to store decision: %w", err)
	}

	return nil
}

func (r *ItemRepositoryImpl) GetAcceptedItems(sourceName string, limit int) ([]Item, error) {
	rows, err := r.db.Query(`
		SELECT id, source_name, platform, source_id, source_hash,
		       accepted, COALESCE(rejection_reason, 'none'), COALESCE(rejection_detail, ''),
		       COALESCE(content, ''), COALESCE(category, ''), COALESCE(priority, ''),
		       COALESCE(sentiment, ''), COALESCE(summary, ''),
		       COALESCE(subject, ''), COALESCE(sender, ''), item_date,
		       COALESCE(link, ''), COALESCE(extracted_content, ''),
		       COALESCE(extraction_status, 'pending'), COALESCE(extraction_error, ''),
		       content_extracted_at, processed_at, created_at
		FROM feedback_items
		WHERE source_name = $1
		  AND accepted = true
		ORDER BY COALESCE(item_date, created_at) DESC
		LIMIT $2
	`, sourceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get accepted items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var itemDate, extractedAt sql.NullTime
		err := rows.Scan(
			&item.ID, &item.SourceName, &item.Platform, &item.SourceID, &item.SourceHash,
			&item.Accepted, &item.RejectionReason, &item.RejectionDetail,
			&item.Content, &item.Category, &item.Priority,
			&item.Sentiment, &item.Summary,
			&item.Subject, &item.Sender, &itemDate,
			&item.Link, &item.ExtractedContent,
			&item.ExtractionStatus, &item.ExtractionError,
			&extractedAt, &item.ProcessedAt, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}

		if itemDate.Valid {
			item.ItemDate = &itemDate.Time
		}
		if extractedAt.Valid {
			item.ExtractedAt = &extractedAt.Time
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func (r *ItemRepositoryImpl) GetItemCount(sourceName string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feedback_items WHERE source_name = $1", sourceName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

func (r *ItemRepositoryImpl) GetItemStats(sourceName string) (total, accepted, rejected int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN accepted = true THEN 1 ELSE 0 END), 0) as accepted,
			COALESCE(SUM(CASE WHEN accepted = false THEN 1 ELSE 0 END), 0) as rejected
		FROM feedback_items
		WHERE source_name = $1
	`, sourceName).Scan(&total, &accepted, &rejected)

	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get item stats: %w", err)
	}

	return total, accepted, rejected, nil
}

// GetItemsForExtraction returns accepted, link-bearing items whose full text
// has not been fetched yet.
func (r *ItemRepositoryImpl) GetItemsForExtraction(sourceName string, limit int) ([]ItemForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, link
		FROM feedback_items
		WHERE source_name = $1
		  AND accepted = true
		  AND link != ''
		  AND extraction_status = 'pending'
		ORDER BY created_at ASC
		LIMIT $2
	`, sourceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for extraction: %w", err)
	}
	defer rows.Close()

	var items []ItemForExtraction
	for rows.Next() {
		var item ItemForExtraction
		if err := rows.Scan(&item.ID, &item.Link); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction rows: %w", err)
	}

	return items, nil
}

func (r *ItemRepositoryImpl) UpdateExtractedContent(itemID string, content string, extractedAt *time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feedback_items
		SET extracted_content = $2, extraction_status = 'success',
		    extraction_error = '', content_extracted_at = $3
		WHERE id = $1
	`, itemID, content, extractedAt)

	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	return nil
}

func (r *ItemRepositoryImpl) UpdateExtractionStatus(itemID string, status string, extractedAt *time.Time, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE feedback_items
		SET extraction_status = $2, content_extracted_at = $3, extraction_error = $4
		WHERE id = $1
	`, itemID, status, extractedAt, errorMsg)

	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}

	return nil
}
