package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedbackspec/ingest/app/database"
	"github.com/feedbackspec/ingest/app/feedback"
	"github.com/feedbackspec/ingest/app/sources"
	"github.com/feedbackspec/ingest/app/tasks"
)

func NewHandler(configCache *sources.ConfigCache, sourceRepo database.SourceRepository,
	itemRepo database.ItemRepository, classifier feedback.ClassifierInterface,
	scheduler tasks.TaskSchedulerInterface, httpClient *http.Client) *Handler {
	return &Handler{
		sourceRepo:     sourceRepo,
		itemRepo:       itemRepo,
		generator:      feedback.NewGenerator(),
		configCache:    configCache,
		scheduler:      scheduler,
		httpClient:     httpClient,
		syncPipeline:   feedback.NewPipeline(feedback.PolicyStrict, classifier),
		submitPipeline: feedback.NewPipeline(feedback.PolicyLenient, classifier),
	}
}

// GetSpec renders the accepted feedback of a source as a markdown document.
func (h *Handler) GetSpec(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	sourceConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	source, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if source == nil {
		slog.Error("Source not found in database", "source", name)
		c.Status(http.StatusNotFound)
		return
	}

	items, err := h.itemRepo.GetAcceptedItems(name, sourceConfig.Settings.MaxItems)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "source", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	doc, err := h.generator.Run(name, items)
	if err != nil {
		slog.Error("Document generation error", "source", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.Header("X-Feedback-Items", strconv.Itoa(len(items)))
	c.Header("X-Source-Name", name)
	c.Header("X-Last-Updated", source.UpdatedAt.Format(time.RFC3339))

	c.String(http.StatusOK, doc)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := make([]map[string]interface{}, 0)

	for name := range h.configCache.GetConfigs() {
		total, accepted, rejected, err := h.itemRepo.GetItemStats(name)
		if err != nil {
			continue
		}
		stats = append(stats, map[string]interface{}{
			"source":   name,
			"total":    total,
			"accepted": accepted,
			"rejected": rejected,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": stats,
		"total":   len(stats),
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sourceList := make([]map[string]interface{}, 0, len(configs))

	for _, sourceConfig := range configs {
		sourceInfo := map[string]interface{}{
			"name":          sourceConfig.Name,
			"platform":      sourceConfig.Platform,
			"enabled":       sourceConfig.Settings.Enabled,
			"max_items":     sourceConfig.Settings.MaxItems,
			"window_hours":  sourceConfig.Settings.WindowHours,
			"sync_interval": (time.Duration(sourceConfig.Settings.SyncInterval) * time.Second).String(),
		}

		if source, err := h.sourceRepo.GetSource(sourceConfig.Name); err == nil && source != nil {
			sourceInfo["last_synced_at"] = source.LastSyncedAt
			sourceInfo["next_sync_at"] = source.NextSyncAt
			sourceInfo["updated_at"] = source.UpdatedAt
		}

		if itemCount, err := h.itemRepo.GetItemCount(sourceConfig.Name); err == nil {
			sourceInfo["item_count"] = itemCount
		}

		sourceList = append(sourceList, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sourceList,
		"total":   len(sourceList),
	})
}

func (h *Handler) APIGetSourceDetails(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	sourceConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	source, err := h.sourceRepo.GetSource(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if source == nil {
		slog.Error("Source not found in database", "source", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found in database"})
		return
	}

	details := map[string]interface{}{
		"name":            name,
		"platform":        sourceConfig.Platform,
		"enabled":         sourceConfig.Settings.Enabled,
		"max_items":       sourceConfig.Settings.MaxItems,
		"window_hours":    sourceConfig.Settings.WindowHours,
		"sync_interval":   (time.Duration(sourceConfig.Settings.SyncInterval) * time.Second).String(),
		"timeout":         (time.Duration(sourceConfig.Settings.Timeout) * time.Second).String(),
		"extract_content": sourceConfig.Settings.ExtractContent,
	}

	details["database"] = map[string]interface{}{
		"id":             source.ID,
		"name":           source.Name,
		"last_synced_at": source.LastSyncedAt,
		"next_sync_at":   source.NextSyncAt,
		"created_at":     source.CreatedAt,
		"updated_at":     source.UpdatedAt,
	}

	if total, accepted, rejected, err := h.itemRepo.GetItemStats(name); err == nil {
		details["items"] = map[string]interface{}{
			"total":    total,
			"accepted": accepted,
			"rejected": rejected,
		}
	}

	c.JSON(http.StatusOK, details)
}

// APIListFeedback returns accepted feedback items for a source as JSON.
func (h *Handler) APIListFeedback(c *gin.Context) {
	name := c.Query("source")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source query parameter"})
		return
	}

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	items, err := h.itemRepo.GetAcceptedItems(name, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	feedbackList := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		feedbackList = append(feedbackList, map[string]interface{}{
			"id":           item.ID,
			"platform":     item.Platform,
			"category":     item.Category,
			"priority":     item.Priority,
			"sentiment":    item.Sentiment,
			"summary":      item.Summary,
			"subject":      item.Subject,
			"sender":       item.Sender,
			"content":      item.Content,
			"link":         item.Link,
			"item_date":    item.ItemDate,
			"processed_at": item.ProcessedAt,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"source":   name,
		"feedback": feedbackList,
		"total":    len(feedbackList),
	})
}

// APISyncSource reloads a source configuration and enqueues an immediate
// ingestion cycle for it.
func (h *Handler) APISyncSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	_, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	configTask := tasks.NewSyncSourceConfigTask(name, sourceConfig, h.sourceRepo)
	if err := h.scheduler.EnqueueTask(configTask); err != nil {
		slog.Error("Error enqueueing config task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue config task",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceTask(name, sourceConfig, h.httpClient,
		h.syncPipeline, h.sourceRepo, h.itemRepo, c.Request.UserAgent())
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Configuration reloaded and sync enqueued successfully",
		"source": gin.H{
			"name":     name,
			"platform": sourceConfig.Platform,
		},
		"tasks": []gin.H{
			{
				"id":   configTask.ID,
				"type": configTask.Type,
			},
			{
				"id":   syncTask.ID,
				"type": syncTask.Type,
			},
		},
	})
}

// APISubmitFeedback runs a manually submitted message through the lenient
// decision pipeline and stores the outcome.
func (h *Handler) APISubmitFeedback(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sourceName := req.Source
	if sourceName == "" {
		sourceName = "manual"
	}

	item := feedback.RawItem{
		Subject:    req.Subject,
		Body:       req.Body,
		From:       req.From,
		Platform:   feedback.PlatformManual,
		SourceID:   feedback.ManualSourceID(req.Body, time.Now().UTC()),
		ReceivedAt: time.Now().UTC(),
	}

	decision, err := h.submitPipeline.Run(c.Request.Context(), item)
	if err != nil {
		slog.Error("Classification failed", "source", sourceName, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Classification failed", "details": err.Error()})
		return
	}

	// Stored decisions reference a registered source row. Manual submissions
	// may target a name no scheduled config ever registered, so register it
	// here; configured sources keep their configured platform.
	platform := string(feedback.PlatformManual)
	if sourceConfig, err := h.configCache.GetConfig(sourceName); err == nil {
		platform = sourceConfig.Platform
	}
	if err := h.sourceRepo.UpsertSource(sourceName, platform); err != nil {
		slog.Error("Database error", "operation", "upsert_source", "source", sourceName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register source"})
		return
	}

	record := buildSubmissionRecord(item, decision)
	if err := h.itemRepo.StoreDecision(sourceName, record); err != nil {
		slog.Error("Database error", "operation", "store_decision", "source", sourceName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store decision"})
		return
	}

	response := gin.H{
		"accepted": decision.Accepted,
	}
	if decision.Accepted {
		response["record"] = gin.H{
			"category":  decision.Record.Category,
			"priority":  decision.Record.Priority,
			"sentiment": decision.Record.Sentiment,
			"summary":   decision.Record.Summary,
			"subject":   decision.Record.Metadata.Subject,
			"date":      decision.Record.Metadata.Date,
		}
	} else {
		response["rejection_reason"] = decision.Reason
		response["rejection_detail"] = decision.Detail
	}

	c.JSON(http.StatusOK, response)
}

func buildSubmissionRecord(item feedback.RawItem, decision *feedback.Decision) database.DecisionRecord {
	record := database.DecisionRecord{
		Platform:        string(item.Platform),
		SourceID:        item.SourceID,
		SourceHash:      feedback.SourceHash(item),
		Accepted:        decision.Accepted,
		RejectionReason: string(decision.Reason),
		RejectionDetail: decision.Detail,
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
