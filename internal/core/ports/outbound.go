package ports

import (
	"context"
	"image"
	"io"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

// UploadStorage holds an upload in a scoped location until cleanup is called.
type UploadStorage interface {
	Save(ctx context.Context, name string, data io.Reader) (path string, cleanup func(), err error)
}

// TextExtractor extracts plain text from a PDF on disk.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (domain.ExtractedText, error)
}

// CorpusStore holds the single current corpus. Replace is last-writer-wins.
type CorpusStore interface {
	Replace(ctx context.Context, corpus domain.Corpus) error
	Current(ctx context.Context) (domain.Corpus, bool, error)
}

// ImageDecoder decodes raw bytes into a colour image.
type ImageDecoder interface {
	Decode(data []byte) (image.Image, error)
}

// FaceEmotionClassifier detects faces and scores raw emotions per face.
type FaceEmotionClassifier interface {
	Classify(ctx context.Context, img image.Image) ([]domain.FaceReading, error)
}

// ChatCompleter requests a single completion from the language model.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string) (domain.Completion, error)
}

// AuditSink persists audit records.
type AuditSink interface {
	Write(ctx context.Context, record domain.AuditRecord) error
}

// AuditRecorder accepts audit records without blocking the caller. The returned
// channel yields the write result once and may be ignored.
type AuditRecorder interface {
	Submit(record domain.AuditRecord) <-chan error
}
