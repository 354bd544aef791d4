package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

// buildPDF writes a minimal uncompressed PDF with one text line per page.
func buildPDF(pageTexts ...string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 0)
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	n := len(pageTexts)
	fontID := 3
	firstPageID := 4

	kids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", firstPageID+2*i))
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", strings.Join(kids, " "), n))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pageTexts {
		contentID := firstPageID + 2*i + 1
		writeObj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontID, contentID))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestExtractReadsTextAndPages(t *testing.T) {
	doc := buildPDF("Payment is due within 30 days", "Signed by the supplier")
	got, err := NewExtractor(50).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", got.Pages)
	}
	if !strings.Contains(got.Text, "Payment") || !strings.Contains(got.Text, "supplier") {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestExtractRejectsTooManyPages(t *testing.T) {
	doc := buildPDF("one", "two", "three")
	_, err := NewExtractor(2).Extract(context.Background(), doc)

	var pageErr *domain.PageLimitError
	if !errors.As(err, &pageErr) {
		t.Fatalf("expected PageLimitError, got %v", err)
	}
	if pageErr.Pages != 3 || pageErr.MaxPages != 2 {
		t.Fatalf("unexpected page limit error: %+v", pageErr)
	}
	if !domain.IsKind(err, domain.ErrTooManyPages) {
		t.Fatalf("expected ErrTooManyPages kind")
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	_, err := NewExtractor(50).Extract(context.Background(), []byte("definitely not a pdf"))
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractRejectsEmpty(t *testing.T) {
	_, err := NewExtractor(50).Extract(context.Background(), nil)
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}
