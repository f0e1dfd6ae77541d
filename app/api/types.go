package api

import (
	"net/http"

	"github.com/feedbackspec/ingest/app/database"
	"github.com/feedbackspec/ingest/app/feedback"
	"github.com/feedbackspec/ingest/app/sources"
	"github.com/feedbackspec/ingest/app/tasks"
)

type GeneratorInterface interface {
	Run(sourceName string, items []database.Item) (string, error)
}

var _ GeneratorInterface = (*feedback.Generator)(nil)

type Handler struct {
	sourceRepo  database.SourceRepository
	itemRepo    database.ItemRepository
	generator   GeneratorInterface
	configCache *sources.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
	httpClient  *http.Client

	// syncPipeline mirrors the scheduler's strict gate; submitPipeline uses
	// the lenient gate for manual submissions.
	syncPipeline   *feedback.Pipeline
	submitPipeline *feedback.Pipeline
}

// SubmitFeedbackRequest is the body of POST /api/feedback.
type SubmitFeedbackRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body" binding:"required"`
	From    string `json:"from"`
	Source  string `json:"source"`
}
