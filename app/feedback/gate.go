package feedback

import "fmt"

// Policy selects how demanding the acceptance gate is. The two policies are
// intentionally different and are not meant to converge: scheduled ingestion
// has no human in the loop, so precision wins; manual submission was already
// vetted by a human, so recall wins.
type Policy string

const (
	// PolicyStrict accepts only actionable categories classified with
	// confidence strictly above 0.8. Used by unattended source syncs.
	PolicyStrict Policy = "strict"

	// PolicyLenient accepts anything the classifier did not file under
	// "general", any result with confidence above 0.7, or any actionable
	// category. Used by the interactive submission path.
	PolicyLenient Policy = "lenient"
)

const (
	strictConfidenceThreshold  = 0.8
	lenientConfidenceThreshold = 0.7
)

type Gate struct {
	policy     Policy
	normalizer *Normalizer
}

func NewGate(policy Policy) *Gate {
	return &Gate{
		policy:     policy,
		normalizer: NewNormalizer(),
	}
}

func (g *Gate) Policy() Policy {
	return g.policy
}

// Run decides whether a classified item qualifies as feedback. Rejection is
// a normal outcome carried in the decision, never an error.
func (g *Gate) Run(item RawItem, result ClassificationResult) Decision {
	accepted := g.evaluate(result)
	if !accepted {
		return Decision{
			Accepted: false,
			Reason:   ReasonLowConfidenceCategory,
			Detail: fmt.Sprintf("Rejected by %s gate: category '%s' with confidence %.2f",
				g.policy, result.Category, result.Confidence),
		}
	}

	return Decision{
		Accepted: true,
		Reason:   ReasonNone,
		Record:   g.normalizer.Run(item, result),
	}
}

func (g *Gate) evaluate(result ClassificationResult) bool {
	switch g.policy {
	case PolicyLenient:
		return result.Category != CategoryGeneral ||
			result.Confidence > lenientConfidenceThreshold ||
			ActionableCategories[result.Category]
	default:
		// Boundary is a strict inequality: confidence of exactly 0.8 rejects.
		return ActionableCategories[result.Category] &&
			result.Confidence > strictConfidenceThreshold
	}
}
