package feedback

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/feedbackspec/ingest/app/cfg"
	"github.com/feedbackspec/ingest/app/database"
)

// categoryOrder fixes the section order of generated documents so output is
// stable across runs regardless of item ordering.
var categoryOrder = []Category{
	CategoryBug,
	CategoryFeature,
	CategoryImprovement,
	CategorySuggestion,
	CategoryComplaint,
	CategoryPraise,
	CategoryGeneral,
}

var categoryTitles = map[Category]string{
	CategoryBug:         "Bug Reports",
	CategoryFeature:     "Feature Requests",
	CategoryImprovement: "Improvements",
	CategorySuggestion:  "Suggestions",
	CategoryComplaint:   "Complaints",
	CategoryPraise:      "Praise",
	CategoryGeneral:     "General Feedback",
}

// Generator renders accepted feedback items into a markdown document,
// grouped by category and ordered by priority within each section.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(sourceName string, items []database.Item) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Feedback: %s\n\n", sourceName))
	buf.WriteString(fmt.Sprintf("Generated by FeedbackSpec Ingest/%s at %s.\n\n",
		cfg.Get().Version, time.Now().In(time.Local).Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("%d accepted items.\n", len(items)))

	grouped := groupByCategory(items)

	for _, category := range categoryOrder {
		section := grouped[category]
		if len(section) == 0 {
			continue
		}

		buf.WriteString(fmt.Sprintf("\n## %s (%d)\n", categoryTitles[category], len(section)))

		for _, item := range sortByPriority(section) {
			g.writeItem(&buf, item)
		}
	}

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item database.Item) {
	buf.WriteString(fmt.Sprintf("\n### %s\n\n", item.Subject))

	buf.WriteString(fmt.Sprintf("- Priority: %s\n", item.Priority))
	buf.WriteString(fmt.Sprintf("- Sentiment: %s\n", item.Sentiment))
	if item.Sender != "" {
		buf.WriteString(fmt.Sprintf("- From: %s\n", item.Sender))
	}
	if item.ItemDate != nil {
		buf.WriteString(fmt.Sprintf("- Date: %s\n", item.ItemDate.UTC().Format(time.RFC3339)))
	}
	if item.Link != "" {
		buf.WriteString(fmt.Sprintf("- Link: %s\n", item.Link))
	}

	if item.Summary != "" {
		buf.WriteString(fmt.Sprintf("\n%s\n", item.Summary))
	}

	content := item.Content
	if item.ExtractionStatus == "success" && item.ExtractedContent != "" {
		content = item.ExtractedContent
	}
	if content != "" {
		buf.WriteString("\n> ")
		buf.WriteString(strings.ReplaceAll(strings.TrimSpace(content), "\n", "\n> "))
		buf.WriteString("\n")
	}
}

func groupByCategory(items []database.Item) map[Category][]database.Item {
	grouped := make(map[Category][]database.Item)
	for _, item := range items {
		grouped[Category(item.Category)] = append(grouped[Category(item.Category)], item)
	}
	return grouped
}

var priorityRank = map[string]int{
	string(PriorityUrgent): 0,
	string(PriorityHigh):   1,
	string(PriorityMedium): 2,
	string(PriorityLow):    3,
}

// sortByPriority is stable: items within the same priority keep their
// repository ordering (newest first).
func sortByPriority(items []database.Item) []database.Item {
	sorted := make([]database.Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		return priorityRank[sorted[i].Priority] < priorityRank[sorted[j].Priority]
	})

	return sorted
}
