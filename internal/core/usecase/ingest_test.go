package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

func TestIngestUploadReplacesCorpus(t *testing.T) {
	storage := &storageFake{}
	extractor := &extractorFake{result: domain.ExtractedText{Text: "page one page two", TotalPages: 3, ExtractedPages: 2}}
	corpus := &corpusFake{}
	audit := &auditFake{}
	uc := NewIngestPDFUseCase(storage, extractor, corpus, audit)

	got, err := uc.Upload(context.Background(), "lecture notes.pdf", bytes.NewBufferString("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got.ID == "" {
		t.Fatalf("expected corpus id")
	}
	if corpus.current == nil || corpus.current.Text != "page one page two" {
		t.Fatalf("expected corpus replaced, got %+v", corpus.current)
	}
	if storage.savedName != "lecture_notes.pdf" {
		t.Fatalf("expected sanitized name, got %s", storage.savedName)
	}
	if extractor.path != "/tmp/lecture_notes.pdf" {
		t.Fatalf("expected extractor to read saved path, got %s", extractor.path)
	}
	if !storage.cleaned {
		t.Fatalf("expected temp upload cleanup")
	}
	if len(audit.records) != 1 || audit.records[0].Document == nil || audit.records[0].Document.Text != "page one page two" {
		t.Fatalf("expected document audit, got %+v", audit.records)
	}
}

func TestIngestUploadWithoutTextStillReplacesCorpus(t *testing.T) {
	corpus := &corpusFake{current: &domain.Corpus{ID: "old", Text: "previous"}}
	uc := NewIngestPDFUseCase(&storageFake{}, &extractorFake{result: domain.ExtractedText{TotalPages: 2}}, corpus, nil)

	if _, err := uc.Upload(context.Background(), "scan.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if corpus.current.Text != "" {
		t.Fatalf("expected empty corpus, got %q", corpus.current.Text)
	}
}

func TestIngestUploadMissingBody(t *testing.T) {
	uc := NewIngestPDFUseCase(&storageFake{}, &extractorFake{}, &corpusFake{}, nil)

	_, err := uc.Upload(context.Background(), "", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) || !errors.Is(err, domain.ErrNoFile) {
		t.Fatalf("expected no file invalid input, got %v", err)
	}
}

func TestIngestUploadExtractionErrorKeepsCorpusAndCleansUp(t *testing.T) {
	storage := &storageFake{}
	corpus := &corpusFake{current: &domain.Corpus{ID: "old", Text: "previous"}}
	extractErr := domain.WrapError(domain.ErrInvalidInput, "open pdf", domain.ErrInvalidPDF)
	uc := NewIngestPDFUseCase(storage, &extractorFake{err: extractErr}, corpus, nil)

	_, err := uc.Upload(context.Background(), "broken.pdf", strings.NewReader("nope"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if corpus.current.Text != "previous" {
		t.Fatalf("corpus must not change on failure, got %q", corpus.current.Text)
	}
	if !storage.cleaned {
		t.Fatalf("expected cleanup on failure path")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"notes.pdf":        "notes.pdf",
		"../../etc/passwd": "passwd",
		"my notes (1).pdf": "my_notes__1_.pdf",
		"":                 "upload.pdf",
		"конспект.pdf":     "________.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
