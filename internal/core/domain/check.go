package domain

import "time"

const (
	DefaultMaxPages      = 50
	DefaultMaxFileSizeMB = 10
	DefaultMaxRules      = 10
	DefaultMaxRuleLength = 500
	DefaultTruncateChars = 8000
	DefaultModel         = "gpt-4"
	DefaultMaxTokens     = 1000
	DefaultTemperature   = 0.3

	MinConfidence = 0
	MaxConfidence = 100

	PDFExtension        = ".pdf"
	TruncationMarker    = "... [truncated]"
	NoEvidenceAvailable = "No evidence available"
	RuleFailurePrefix   = "Failed to process rule: "
)

type RuleStatus string

const (
	RuleStatusPass  RuleStatus = "PASS"
	RuleStatusFail  RuleStatus = "FAIL"
	RuleStatusError RuleStatus = "ERROR"
)

// CheckRequest is the logical input of one pipeline run.
type CheckRequest struct {
	Document []byte
	Filename string
	Rules    []string
}

type ExtractedDocument struct {
	Text  string
	Pages int
}

// LLMInvocation is built once per (document, rule) pair.
type LLMInvocation struct {
	Model        string
	DocumentText string
	Rule         string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
	UserPrompt   string
}

type RuleResult struct {
	Rule       string     `json:"rule"`
	Status     RuleStatus `json:"status"`
	Evidence   string     `json:"evidence"`
	Reasoning  string     `json:"reasoning"`
	Confidence int        `json:"confidence"`
}

func (r RuleResult) Passed() bool  { return r.Status == RuleStatusPass }
func (r RuleResult) Failed() bool  { return r.Status == RuleStatusFail }
func (r RuleResult) Errored() bool { return r.Status == RuleStatusError }

// ErrorResult is the RuleResult recorded when a rule could not be judged.
func ErrorResult(rule, reasoning string) RuleResult {
	return RuleResult{
		Rule:       rule,
		Status:     RuleStatusError,
		Evidence:   NoEvidenceAvailable,
		Reasoning:  reasoning,
		Confidence: 0,
	}
}

type CheckReport struct {
	FileName         string        `json:"fileName"`
	TotalPages       int           `json:"totalPages"`
	Results          []RuleResult  `json:"results"`
	OverallStatus    OverallStatus `json:"overallStatus"`
	ProcessingTimeMs int64         `json:"processingTimeMs"`
	Timestamp        time.Time     `json:"timestamp"`
}
