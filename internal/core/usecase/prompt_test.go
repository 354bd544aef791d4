package usecase

import (
	"strings"
	"testing"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

func TestPrepareKeepsTextAtLimit(t *testing.T) {
	b := NewPromptBuilder(8000)
	text := strings.Repeat("a", 8000)

	doc := b.Prepare(text)
	if doc.Truncated || doc.Text != text {
		t.Fatalf("text of exactly 8000 characters must be unchanged")
	}
}

func TestPrepareTruncatesAboveLimit(t *testing.T) {
	b := NewPromptBuilder(8000)
	text := strings.Repeat("a", 8000) + "b"

	doc := b.Prepare(text)
	if !doc.Truncated {
		t.Fatalf("expected truncation for 8001 characters")
	}
	want := strings.Repeat("a", 8000) + domain.TruncationMarker
	if doc.Text != want {
		t.Fatalf("unexpected truncated text tail: %q", doc.Text[len(doc.Text)-20:])
	}
}

func TestPrepareCountsCharactersNotBytes(t *testing.T) {
	b := NewPromptBuilder(5)
	doc := b.Prepare("привет")
	if doc.Text != "приве"+domain.TruncationMarker {
		t.Fatalf("unexpected truncation: %q", doc.Text)
	}
}

func TestBuildUserPromptInterpolatesDocumentAndRule(t *testing.T) {
	b := NewPromptBuilder(0)
	prompt := b.BuildUserPrompt("Invoice total is 100 EUR.", "Must state a currency")

	if !strings.Contains(prompt, "---\nInvoice total is 100 EUR.\n---") {
		t.Fatalf("document not framed in prompt: %q", prompt)
	}
	if !strings.Contains(prompt, `"Must state a currency"`) {
		t.Fatalf("rule not quoted in prompt: %q", prompt)
	}
}

func TestBuildUserPromptForDoesNotTruncateTwice(t *testing.T) {
	b := NewPromptBuilder(10)
	doc := b.Prepare(strings.Repeat("z", 20))
	prompt := b.BuildUserPromptFor(doc, "rule")
	if strings.Count(prompt, domain.TruncationMarker) != 1 {
		t.Fatalf("expected one truncation marker, got prompt %q", prompt)
	}
}

func TestSystemPromptNamesAllVerdictKeys(t *testing.T) {
	prompt := NewPromptBuilder(0).BuildSystemPrompt()
	for _, key := range []string{`"status"`, `"evidence"`, `"reasoning"`, `"confidence"`} {
		if !strings.Contains(prompt, key) {
			t.Fatalf("system prompt missing key %s", key)
		}
	}
}
