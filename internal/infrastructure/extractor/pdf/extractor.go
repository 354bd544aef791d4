package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/pdfchecker/internal/core/domain"
)

var disableConfigDir sync.Once

// Extractor rejects documents above maxPages using the pdfcpu page count
// before any text is read with ledongthuc/pdf.
type Extractor struct {
	maxPages int
	conf     *model.Configuration
}

func NewExtractor(maxPages int) *Extractor {
	if maxPages <= 0 {
		maxPages = domain.DefaultMaxPages
	}
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{maxPages: maxPages, conf: conf}
}

func (e *Extractor) Extract(ctx context.Context, document []byte) (domain.ExtractedDocument, error) {
	if len(document) == 0 {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrExtractionFailed, "extract pdf", errors.New("empty document"))
	}

	pages, err := e.pageCount(document)
	if err != nil {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrExtractionFailed, "count pdf pages", err)
	}
	if pages > e.maxPages {
		return domain.ExtractedDocument{}, &domain.PageLimitError{Pages: pages, MaxPages: e.maxPages}
	}

	text, err := extractText(ctx, document)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ExtractedDocument{}, ctx.Err()
		}
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrExtractionFailed, "extract pdf text", err)
	}

	return domain.ExtractedDocument{Text: text, Pages: pages}, nil
}

func (e *Extractor) pageCount(document []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()
	return api.PageCount(bytes.NewReader(document), e.conf)
}

func extractText(ctx context.Context, document []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	fonts := make(map[string]*lpdf.Font)
	parts := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}

		content, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if content = strings.TrimSpace(content); content != "" {
			parts = append(parts, content)
		}
	}

	return strings.Join(parts, "\n"), nil
}
