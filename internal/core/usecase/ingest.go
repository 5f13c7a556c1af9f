package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/core/ports"
)

type IngestPDFUseCase struct {
	storage   ports.UploadStorage
	extractor ports.TextExtractor
	corpus    ports.CorpusStore
	audit     ports.AuditRecorder
}

func NewIngestPDFUseCase(
	storage ports.UploadStorage,
	extractor ports.TextExtractor,
	corpus ports.CorpusStore,
	audit ports.AuditRecorder,
) *IngestPDFUseCase {
	return &IngestPDFUseCase{
		storage:   storage,
		extractor: extractor,
		corpus:    corpus,
		audit:     audit,
	}
}

// Upload extracts the PDF text and makes it the current corpus, replacing any
// previous upload even when no text could be extracted.
func (uc *IngestPDFUseCase) Upload(
	ctx context.Context,
	filename string,
	body io.Reader,
) (*domain.Corpus, error) {
	if body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload pdf", domain.ErrNoFile)
	}

	path, cleanup, err := uc.storage.Save(ctx, sanitizeFilename(filename), body)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	defer cleanup()

	extracted, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	corpus := domain.Corpus{
		ID:             uuid.NewString(),
		Filename:       filename,
		Text:           extracted.Text,
		TotalPages:     extracted.TotalPages,
		ExtractedPages: extracted.ExtractedPages,
		UploadedAt:     time.Now().UTC(),
	}
	if err := uc.corpus.Replace(ctx, corpus); err != nil {
		return nil, fmt.Errorf("replace corpus: %w", err)
	}
	slog.Debug("corpus_replaced",
		"corpus_id", corpus.ID,
		"pages", corpus.TotalPages,
		"extracted_pages", corpus.ExtractedPages,
		"skipped_pages", extracted.SkippedPages(),
		"bytes", len(corpus.Text),
	)

	if uc.audit != nil {
		uc.audit.Submit(domain.NewDocumentAudit(corpus.Text))
	}
	return &corpus, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "upload.pdf"
	}
	return base
}
