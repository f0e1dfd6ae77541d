package feedback

import (
	"context"
	"errors"
	"testing"
)

type fakeClassifier struct {
	result ClassificationResult
	err    error
	calls  int
}

func (f *fakeClassifier) Run(ctx context.Context, item RawItem) (ClassificationResult, error) {
	f.calls++
	return f.result, f.err
}

func TestPipeline_BugReportAccepted(t *testing.T) {
	classifier := &fakeClassifier{result: ClassificationResult{
		Category:   CategoryBug,
		Confidence: 0.92,
		Sentiment:  SentimentNegative,
		Priority:   PriorityHigh,
	}}
	pipeline := NewPipeline(PolicyStrict, classifier)

	item := RawItem{
		Subject:  "Bug report: Login broken",
		Body:     "The login button does nothing when clicked.",
		From:     "user@example.com",
		SourceID: "msg-100",
		Platform: PlatformGmail,
	}

	decision, err := pipeline.Run(context.Background(), item)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !decision.Accepted {
		t.Errorf("Bug report at confidence 0.92 should pass the strict gate: %+v", decision)
	}
	if classifier.calls != 1 {
		t.Errorf("Classifier should be called exactly once, got %d", classifier.calls)
	}
}

func TestPipeline_NewsletterStopsBeforeClassifier(t *testing.T) {
	classifier := &fakeClassifier{}
	pipeline := NewPipeline(PolicyStrict, classifier)

	item := RawItem{
		Subject:  "Newsletter subscription",
		Body:     "Thank you for subscribing to our newsletter!",
		From:     "news@vendor.com",
		SourceID: "msg-101",
		Platform: PlatformGmail,
	}

	decision, err := pipeline.Run(context.Background(), item)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Accepted {
		t.Error("Newsletter should be rejected by the pre-filter")
	}
	if decision.Reason != ReasonObviousNonFeedback {
		t.Errorf("Expected reason %q, got %q", ReasonObviousNonFeedback, decision.Reason)
	}
	if classifier.calls != 0 {
		t.Errorf("Pre-filter rejection must not reach the classifier, got %d calls", classifier.calls)
	}
}

func TestPipeline_GeneralCategoryPolicySplit(t *testing.T) {
	result := ClassificationResult{Category: CategoryGeneral, Confidence: 0.95}
	item := RawItem{
		Body:     "I have been using the product daily and wanted to share overall impressions of how it fits into our workflow at the office across several different teams and projects over the last quarter.",
		From:     "user@example.com",
		SourceID: "msg-102",
		Platform: PlatformManual,
	}

	strict := NewPipeline(PolicyStrict, &fakeClassifier{result: result})
	decision, err := strict.Run(context.Background(), item)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decision.Accepted {
		t.Error("Strict gate must reject 'general' despite high confidence")
	}

	lenient := NewPipeline(PolicyLenient, &fakeClassifier{result: result})
	decision, err = lenient.Run(context.Background(), item)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !decision.Accepted {
		t.Error("Lenient gate should accept 'general' at confidence 0.95")
	}
}

func TestPipeline_ClassifierFailureIsDeferred(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("upstream timeout")}
	pipeline := NewPipeline(PolicyStrict, classifier)

	item := RawItem{
		Body:     cleanBody,
		From:     "user@example.com",
		SourceID: "msg-103",
		Platform: PlatformGmail,
	}

	decision, err := pipeline.Run(context.Background(), item)
	if err == nil {
		t.Fatal("Classifier failure must surface as an error, not a decision")
	}
	if decision != nil {
		t.Errorf("No decision should accompany a classifier failure, got %+v", decision)
	}
}

func TestPipeline_InvalidItem(t *testing.T) {
	classifier := &fakeClassifier{}
	pipeline := NewPipeline(PolicyStrict, classifier)

	if _, err := pipeline.Run(context.Background(), RawItem{SourceID: "x"}); err == nil {
		t.Error("Missing platform should fail fast")
	}
	if _, err := pipeline.Run(context.Background(), RawItem{Platform: PlatformGmail}); err == nil {
		t.Error("Missing source ID should fail fast")
	}
	if classifier.calls != 0 {
		t.Errorf("Contract violations must not reach the classifier, got %d calls", classifier.calls)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	classifier := &fakeClassifier{result: ClassificationResult{Category: CategoryFeature, Confidence: 0.85}}
	pipeline := NewPipeline(PolicyStrict, classifier)

	item := RawItem{
		Body:     cleanBody,
		From:     "user@example.com",
		SourceID: "msg-104",
		Platform: PlatformGmail,
	}

	first, err := pipeline.Run(context.Background(), item)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := pipeline.Run(context.Background(), item)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first.Accepted != second.Accepted || first.Reason != second.Reason {
		t.Errorf("Same input must yield the same decision: %+v vs %+v", first, second)
	}
}
