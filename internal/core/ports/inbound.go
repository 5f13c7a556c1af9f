package ports

import (
	"context"
	"io"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

// DocumentIngestor is the inbound contract for PDF uploads.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*domain.Corpus, error)
}

// EmotionDetector is the inbound contract for webcam emotion detection.
type EmotionDetector interface {
	Detect(ctx context.Context, image []byte) (domain.Emotion, error)
}

// TutorService is the inbound contract for emotion-aware question answering.
type TutorService interface {
	Ask(ctx context.Context, question, emotion string) (*domain.Answer, error)
}
