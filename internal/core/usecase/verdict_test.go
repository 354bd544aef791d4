package usecase

import (
	"errors"
	"testing"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

func TestParseValidVerdict(t *testing.T) {
	raw := `{"status":"PASS","evidence":"x","reasoning":"y","confidence":85}`
	v, err := MustVerdictParser().Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsValid() {
		t.Fatalf("expected valid verdict")
	}
	if *v.Status != "PASS" || *v.Evidence != "x" || *v.Reasoning != "y" || *v.Confidence != 85 {
		t.Fatalf("unexpected verdict fields: %+v", v)
	}
	if v.RawResponse != raw {
		t.Fatalf("raw response not kept")
	}
}

func TestParseMissingConfidence(t *testing.T) {
	raw := `{"status":"PASS","evidence":"x","reasoning":"y"}`
	v, err := MustVerdictParser().Parse(raw)
	if !domain.IsKind(err, domain.ErrResponseMalformed) {
		t.Fatalf("expected ErrResponseMalformed, got %v", err)
	}
	var malformed *domain.MalformedResponseError
	if !errors.As(err, &malformed) || malformed.Raw != raw {
		t.Fatalf("expected malformed error carrying raw text, got %#v", err)
	}
	if !v.HasError() || v.IsValid() {
		t.Fatalf("verdict must carry the parse error")
	}
}

func TestParseConfidenceOutOfRangeIsInvalid(t *testing.T) {
	v, err := MustVerdictParser().Parse(`{"status":"PASS","evidence":"x","reasoning":"y","confidence":150}`)
	if err != nil {
		t.Fatalf("confidence 150 must parse syntactically: %v", err)
	}
	if v.IsValid() {
		t.Fatalf("confidence 150 must fail the validity check")
	}
}

func TestParseRejectsWrongTypesAndGarbage(t *testing.T) {
	cases := map[string]string{
		"not json":          "I think it passes",
		"string confidence": `{"status":"PASS","evidence":"x","reasoning":"y","confidence":"high"}`,
		"null status":       `{"status":null,"evidence":"x","reasoning":"y","confidence":10}`,
		"array":             `[1,2,3]`,
		"trailing data":     `{"status":"PASS","evidence":"x","reasoning":"y","confidence":1} extra`,
	}
	p := MustVerdictParser()
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := p.Parse(raw); !domain.IsKind(err, domain.ErrResponseMalformed) {
				t.Fatalf("expected ErrResponseMalformed, got %v", err)
			}
		})
	}
}

func TestParseStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"status\":\"FAIL\",\"evidence\":\"e\",\"reasoning\":\"r\",\"confidence\":40}\n```"
	v, err := MustVerdictParser().Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *v.Status != "FAIL" || *v.Confidence != 40 {
		t.Fatalf("unexpected verdict: %+v", v)
	}
}

func TestParseStripsSingleLineCodeFence(t *testing.T) {
	for _, raw := range []string{
		"```json {\"status\":\"PASS\",\"evidence\":\"e\",\"reasoning\":\"r\",\"confidence\":70}```",
		"```{\"status\":\"PASS\",\"evidence\":\"e\",\"reasoning\":\"r\",\"confidence\":70}```",
	} {
		v, err := MustVerdictParser().Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", raw, err)
		}
		if *v.Status != "PASS" || *v.Confidence != 70 {
			t.Fatalf("unexpected verdict: %+v", v)
		}
	}
}

func TestParseAcceptsIntegralFloatConfidence(t *testing.T) {
	v, err := MustVerdictParser().Parse(`{"status":"PASS","evidence":"x","reasoning":"y","confidence":85.0}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsValid() || *v.Confidence != 85 {
		t.Fatalf("expected confidence 85, got %+v", v)
	}

	if _, err := MustVerdictParser().Parse(`{"status":"PASS","evidence":"x","reasoning":"y","confidence":85.5}`); !domain.IsKind(err, domain.ErrResponseMalformed) {
		t.Fatalf("fractional confidence must be malformed, got %v", err)
	}
}
