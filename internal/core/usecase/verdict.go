package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

const verdictSchemaURL = "verdict.json"

// verdictSchema describes the object the system prompt asks for. Range of
// confidence is left to LLMVerdict.IsValid.
const verdictSchema = `{
  "type": "object",
  "required": ["status", "evidence", "reasoning", "confidence"],
  "properties": {
    "status":     {"type": "string"},
    "evidence":   {"type": "string"},
    "reasoning":  {"type": "string"},
    "confidence": {"type": "integer"}
  }
}`

type VerdictParser struct {
	schema *jsonschema.Schema
}

func NewVerdictParser() (*VerdictParser, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(verdictSchemaURL, strings.NewReader(verdictSchema)); err != nil {
		return nil, fmt.Errorf("add verdict schema: %w", err)
	}
	schema, err := compiler.Compile(verdictSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile verdict schema: %w", err)
	}
	return &VerdictParser{schema: schema}, nil
}

// MustVerdictParser panics if the embedded schema does not compile.
func MustVerdictParser() *VerdictParser {
	p, err := NewVerdictParser()
	if err != nil {
		panic(err)
	}
	return p
}

// Parse decodes raw provider text into a verdict. On failure the returned
// verdict carries the raw text and the error message, and the error is a
// *domain.MalformedResponseError.
func (p *VerdictParser) Parse(raw string) (domain.LLMVerdict, error) {
	body := stripCodeFence(raw)

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return malformedVerdict(raw, fmt.Errorf("decode json: %w", err))
	}
	if dec.More() {
		return malformedVerdict(raw, fmt.Errorf("decode json: trailing data after object"))
	}
	if err := p.schema.Validate(doc); err != nil {
		return malformedVerdict(raw, fmt.Errorf("verdict does not match schema: %w", err))
	}

	// The schema guarantees an object with string fields and an integral confidence.
	obj := doc.(map[string]any)
	confidence, err := integralNumber(obj["confidence"].(json.Number))
	if err != nil {
		return malformedVerdict(raw, fmt.Errorf("decode verdict: %w", err))
	}
	status := obj["status"].(string)
	evidence := obj["evidence"].(string)
	reasoning := obj["reasoning"].(string)

	return domain.LLMVerdict{
		Status:      &status,
		Evidence:    &evidence,
		Reasoning:   &reasoning,
		Confidence:  &confidence,
		RawResponse: raw,
	}, nil
}

// integralNumber accepts 85 as well as 85.0.
func integralNumber(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("confidence %s is not a supported integer", n.String())
	}
	return int(f), nil
}

func malformedVerdict(raw string, cause error) (domain.LLMVerdict, error) {
	err := &domain.MalformedResponseError{Raw: raw, Err: cause}
	return domain.LLMVerdict{RawResponse: raw, Error: err.Error()}, err
}

// stripCodeFence removes a surrounding ```json ... ``` block if present,
// on one line or several.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimLeftFunc(text, unicode.IsLetter)
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
