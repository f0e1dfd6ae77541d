package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/feedbackspec/ingest/app/database"
	"github.com/feedbackspec/ingest/app/feedback"
	"github.com/feedbackspec/ingest/app/sources"
)

// SyncSourceTask runs one unattended ingestion cycle for a source: fetch
// recent items, skip already-processed ones, run the decision pipeline with
// the strict gate, and persist the decisions. Items whose classification
// fails are deferred: no decision is stored, so the next cycle retries them.
type SyncSourceTask struct {
	Task
	SourceConfig *sources.Config
	httpClient   *http.Client
	pipeline     *feedback.Pipeline
	sourceRepo   database.SourceRepository
	itemRepo     database.ItemRepository
	userAgent    string
}

func NewSyncSourceTask(sourceName string, sourceConfig *sources.Config, httpClient *http.Client,
	pipeline *feedback.Pipeline, sourceRepo database.SourceRepository,
	itemRepo database.ItemRepository, userAgent string) *SyncSourceTask {
	return &SyncSourceTask{
		Task:         NewTask(TaskTypeSyncSource, sourceName),
		SourceConfig: sourceConfig,
		httpClient:   httpClient,
		pipeline:     pipeline,
		sourceRepo:   sourceRepo,
		itemRepo:     itemRepo,
		userAgent:    userAgent,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	connector, err := sources.New(t.SourceConfig, t.httpClient, t.userAgent)
	if err != nil {
		return fmt.Errorf("failed to build source connector: %w", err)
	}

	items, err := connector.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch items: %w", err)
	}

	// Per-run cap bounds latency and classifier cost of a single cycle.
	if len(items) > t.SourceConfig.Settings.MaxItems {
		items = items[:t.SourceConfig.Settings.MaxItems]
	}

	duplicateCount := 0
	acceptedCount := 0
	rejectedCount := 0
	deferredCount := 0

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		processed, err := t.itemRepo.IsProcessed(t.SourceName, string(item.Platform), item.SourceID)
		if err != nil {
			return fmt.Errorf("failed to check processed state: %w", err)
		}
		if processed {
			duplicateCount++
			continue
		}

		decision, err := t.pipeline.Run(ctx, item)
		if err != nil {
			// Deferred: nothing is stored, so the next cycle retries.
			slog.Warn("Item deferred", "source", t.SourceName, "source_id", item.SourceID, "error", err)
			deferredCount++
			continue
		}

		if err := t.itemRepo.StoreDecision(t.SourceName, buildDecisionRecord(item, decision)); err != nil {
			return fmt.Errorf("failed to store decision: %w", err)
		}

		if decision.Accepted {
			acceptedCount++
		} else {
			rejectedCount++
		}
	}

	if err := t.updateSyncStatus(); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "SyncSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(items),
		"duplicates", duplicateCount,
		"accepted", acceptedCount,
		"rejected", rejectedCount,
		"deferred", deferredCount)

	return nil
}

func (t *SyncSourceTask) updateSyncStatus() error {
	nextSync := time.Now().UTC().Add(time.Duration(t.SourceConfig.Settings.SyncInterval) * time.Second)

	if err := t.sourceRepo.UpdateSyncStatus(t.SourceName, nextSync); err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	return nil
}

// buildDecisionRecord flattens a pipeline decision into the storage write
// model. Rejected items keep only the identity and the reason.
func buildDecisionRecord(item feedback.RawItem, decision *feedback.Decision) database.DecisionRecord {
	record := database.DecisionRecord{
		Platform:        string(item.Platform),
		SourceID:        item.SourceID,
		SourceHash:      feedback.SourceHash(item),
		Accepted:        decision.Accepted,
		RejectionReason: string(decision.Reason),
		RejectionDetail: decision.Detail,
		Link:            item.Link,
		ProcessedAt:     time.Now().UTC(),
	}

	if decision.Record != nil {
		record.Content = decision.Record.Content
		record.Category = string(decision.Record.Category)
		record.Priority = string(decision.Record.Priority)
		record.Sentiment = string(decision.Record.Sentiment)
		record.Summary = decision.Record.Summary
		record.Subject = decision.Record.Metadata.Subject
		record.Sender = decision.Record.Metadata.From

		if date, err := time.Parse(time.RFC3339, decision.Record.Metadata.Date); err == nil {
			record.ItemDate = &date
		}
		if processedAt, err := time.Parse(time.RFC3339, decision.Record.Metadata.ProcessedAt); err == nil {
			record.ProcessedAt = processedAt
		}
	}

	return record
}
