package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

// Extractor reads PDF text page by page. Pages without extractable text
// (image-only scans, empty pages, pages the parser cannot decode) are skipped and
// the remaining page texts are joined without a separator.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, path string) (result domain.ExtractedText, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.ExtractedText{}
			err = domain.WrapError(domain.ErrInvalidInput, "parse pdf", fmt.Errorf("%w: %v", domain.ErrInvalidPDF, r))
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return domain.ExtractedText{}, domain.WrapError(domain.ErrInvalidInput, "open pdf", fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err))
	}
	defer f.Close()

	total := reader.NumPage()
	var text strings.Builder
	extracted := 0
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ExtractedText{}, err
		}
		pageText, ok := extractPage(reader, i)
		if !ok {
			continue
		}
		text.WriteString(pageText)
		extracted++
	}

	return domain.ExtractedText{
		Text:           text.String(),
		TotalPages:     total,
		ExtractedPages: extracted,
	}, nil
}

func extractPage(reader *pdf.Reader, index int) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("pdf_page_skipped", "page", index, "reason", fmt.Sprint(r))
			text, ok = "", false
		}
	}()

	page := reader.Page(index)
	if page.V.IsNull() {
		return "", false
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		slog.Debug("pdf_page_skipped", "page", index, "reason", err.Error())
		return "", false
	}
	if text == "" {
		return "", false
	}
	return text, true
}
