package domain

// LLMVerdict is the provider's judgment for one rule. Nil pointers stand for
// fields the provider did not supply.
type LLMVerdict struct {
	Status      *string
	Evidence    *string
	Reasoning   *string
	Confidence  *int
	RawResponse string
	Error       string
}

func (v LLMVerdict) HasError() bool {
	return v.Error != ""
}

// IsValid reports whether the verdict can be trusted for aggregation.
func (v LLMVerdict) IsValid() bool {
	if v.HasError() {
		return false
	}
	if v.Status == nil || v.Evidence == nil || v.Reasoning == nil || v.Confidence == nil {
		return false
	}
	return *v.Confidence >= MinConfidence && *v.Confidence <= MaxConfidence
}

// RuleResult converts a valid verdict into the pipeline's per-rule outcome.
// Callers must check IsValid first.
func (v LLMVerdict) RuleResult(rule string) RuleResult {
	return RuleResult{
		Rule:       rule,
		Status:     RuleStatus(deref(v.Status)),
		Evidence:   deref(v.Evidence),
		Reasoning:  deref(v.Reasoning),
		Confidence: derefInt(v.Confidence),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
