package feedback

import (
	"context"
	"fmt"
)

// Pipeline runs the two decision stages around the external classifier:
// pre-filter (cheap rejection before the classifier is paid for) and
// acceptance gate (policy over the classifier's result).
//
// A classifier failure is returned as an error with no decision: the item is
// deferred, not rejected, so the caller leaves it unprocessed and a later
// cycle retries it.
type Pipeline struct {
	preFilter  *PreFilter
	gate       *Gate
	classifier ClassifierInterface
}

func NewPipeline(policy Policy, classifier ClassifierInterface) *Pipeline {
	return &Pipeline{
		preFilter:  NewPreFilter(),
		gate:       NewGate(policy),
		classifier: classifier,
	}
}

func (p *Pipeline) Run(ctx context.Context, item RawItem) (*Decision, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if rejected, reason := p.preFilter.Run(item); rejected {
		return &Decision{
			Accepted: false,
			Reason:   ReasonObviousNonFeedback,
			Detail:   reason,
		}, nil
	}

	result, err := p.classifier.Run(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("classifier failed: %w", err)
	}

	decision := p.gate.Run(item, result)
	return &decision, nil
}

// validateItem fails fast on items that violate the RawItem contract.
// Missing subject, body or date are not errors; they have defined fallbacks.
func validateItem(item RawItem) error {
	if item.Platform == "" {
		return fmt.Errorf("invalid item: platform is required")
	}
	if item.SourceID == "" {
		return fmt.Errorf("invalid item: source ID is required")
	}
	return nil
}
