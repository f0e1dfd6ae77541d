package feedback

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"time"
)

const (
	defaultSubject = "No Subject"
	defaultSender  = "Unknown Sender"
)

type Normalizer struct {
	// now is stubbed in tests; defaults to time.Now.
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Run builds the persistable record for an accepted item. It never fails:
// every missing or unparseable field has a defined fallback.
func (n *Normalizer) Run(item RawItem, result ClassificationResult) *NormalizedRecord {
	processedAt := n.now().UTC()

	return &NormalizedRecord{
		Content:   item.Text(),
		Category:  result.Category,
		Priority:  result.Priority,
		Sentiment: result.Sentiment,
		Summary:   result.Summary,
		Metadata: RecordMetadata{
			Subject:     orDefault(item.Subject, defaultSubject),
			From:        orDefault(item.From, defaultSender),
			Date:        n.resolveDate(item).Format(time.RFC3339),
			ProcessedAt: processedAt.Format(time.RFC3339),
		},
	}
}

// resolveDate picks the item timestamp in priority order: explicit date
// header, platform internal epoch-millisecond timestamp, current time.
// Parse failures fall through to the next source rather than failing the item.
func (n *Normalizer) resolveDate(item RawItem) time.Time {
	if item.DateHeader != "" {
		if t, err := mail.ParseDate(item.DateHeader); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse(time.RFC3339, item.DateHeader); err == nil {
			return t.UTC()
		}
	}

	if item.InternalTimestamp > 0 {
		return time.UnixMilli(item.InternalTimestamp).UTC()
	}

	return n.now().UTC()
}

// SourceHash identifies an item for deduplication across poll cycles.
func SourceHash(item RawItem) string {
	content := fmt.Sprintf("%s|%s", item.Platform, item.SourceID)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ManualSourceID derives a source id for manual submissions, which have no
// platform-assigned identifier. Identical bodies submitted at the same
// instant collapse into one item.
func ManualSourceID(body string, submittedAt time.Time) string {
	content := fmt.Sprintf("%d|%s", submittedAt.Unix(), body)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:16])
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
