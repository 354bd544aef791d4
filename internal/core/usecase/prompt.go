package usecase

import (
	"fmt"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

const systemPrompt = `You are a document compliance checker. Your task is to analyze documents
and verify if they comply with specific rules.

For each rule, you must respond ONLY with a valid JSON object in this exact format:
{
    "status": "PASS" or "FAIL",
    "evidence": "A specific sentence or phrase from the document that supports your decision",
    "reasoning": "Brief explanation of why the rule passed or failed",
    "confidence": <number between 0-100>
}

Guidelines:
- Be precise and objective
- Use exact quotes from the document as evidence
- Confidence should reflect how certain you are about the decision
- If the rule is satisfied, status should be "PASS"
- If the rule is not satisfied, status should be "FAIL"
- Always provide clear reasoning
`

const userPromptTemplate = `Document to analyze:
---
%s
---

Rule to check:
"%s"

Please analyze the document and respond with ONLY a JSON object as specified.
`

// PreparedDocument is document text after the truncation policy was applied.
type PreparedDocument struct {
	Text      string
	Truncated bool
}

type PromptBuilder struct {
	maxChars int
}

func NewPromptBuilder(maxChars int) *PromptBuilder {
	if maxChars <= 0 {
		maxChars = domain.DefaultTruncateChars
	}
	return &PromptBuilder{maxChars: maxChars}
}

func (b *PromptBuilder) BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt truncates text and interpolates it with the rule.
func (b *PromptBuilder) BuildUserPrompt(text, rule string) string {
	return b.BuildUserPromptFor(b.Prepare(text), rule)
}

func (b *PromptBuilder) BuildUserPromptFor(doc PreparedDocument, rule string) string {
	return fmt.Sprintf(userPromptTemplate, doc.Text, rule)
}

// Prepare keeps the first maxChars characters and appends the truncation marker.
// The cutoff counts characters, not tokens.
func (b *PromptBuilder) Prepare(text string) PreparedDocument {
	runes := []rune(text)
	if len(runes) <= b.maxChars {
		return PreparedDocument{Text: text}
	}
	return PreparedDocument{
		Text:      string(runes[:b.maxChars]) + domain.TruncationMarker,
		Truncated: true,
	}
}
