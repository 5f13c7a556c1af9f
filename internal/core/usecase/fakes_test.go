package usecase

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

type storageFake struct {
	savedName string
	savedBody string
	cleaned   bool
	err       error
}

func (f *storageFake) Save(_ context.Context, name string, data io.Reader) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", nil, err
	}
	f.savedName = name
	f.savedBody = string(raw)
	return "/tmp/" + name, func() { f.cleaned = true }, nil
}

type extractorFake struct {
	result domain.ExtractedText
	err    error
	path   string
}

func (f *extractorFake) Extract(_ context.Context, path string) (domain.ExtractedText, error) {
	f.path = path
	return f.result, f.err
}

type corpusFake struct {
	mu      sync.Mutex
	current *domain.Corpus
	err     error
}

func (f *corpusFake) Replace(_ context.Context, corpus domain.Corpus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.current = &corpus
	return nil
}

func (f *corpusFake) Current(context.Context) (domain.Corpus, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Corpus{}, false, f.err
	}
	if f.current == nil {
		return domain.Corpus{}, false, nil
	}
	return *f.current, true, nil
}

type auditFake struct {
	records []domain.AuditRecord
}

func (f *auditFake) Submit(record domain.AuditRecord) <-chan error {
	f.records = append(f.records, record)
	done := make(chan error, 1)
	done <- errors.New("audit store unavailable")
	close(done)
	return done
}

type decoderFake struct {
	err error
}

func (f decoderFake) Decode(data []byte) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

type classifierFake struct {
	faces []domain.FaceReading
	err   error
}

func (f classifierFake) Classify(context.Context, image.Image) ([]domain.FaceReading, error) {
	return f.faces, f.err
}

type completerFake struct {
	prompts []string
	answer  string
	err     error
}

func (f *completerFake) Complete(_ context.Context, prompt string) (domain.Completion, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return domain.Completion{}, f.err
	}
	return domain.Completion{Text: f.answer, Model: "test-model"}, nil
}
