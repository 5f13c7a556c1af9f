package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/core/ports"
)

type TutorUseCase struct {
	corpus    ports.CorpusStore
	completer ports.ChatCompleter
	audit     ports.AuditRecorder
}

func NewTutorUseCase(
	corpus ports.CorpusStore,
	completer ports.ChatCompleter,
	audit ports.AuditRecorder,
) *TutorUseCase {
	return &TutorUseCase{
		corpus:    corpus,
		completer: completer,
		audit:     audit,
	}
}

// Ask answers a question against the current corpus in a tone chosen by emotion.
// An empty emotion means neutral.
func (uc *TutorUseCase) Ask(ctx context.Context, question, emotion string) (*domain.Answer, error) {
	if emotion == "" {
		emotion = string(domain.EmotionNeutral)
	}
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", domain.ErrNoQuestion)
	}

	corpus, ok, err := uc.corpus.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load current corpus: %w", err)
	}
	if !ok || corpus.Empty() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", domain.ErrNoDocuments)
	}

	completion, err := uc.completer.Complete(ctx, domain.BuildTutorPrompt(corpus.Text, question, emotion))
	if err != nil {
		if domain.IsKind(err, domain.ErrUpstream) {
			return nil, err
		}
		return nil, domain.NewUpstreamError("llm", err)
	}

	if uc.audit != nil {
		uc.audit.Submit(domain.NewQuestionAudit(question, emotion, completion.Text))
	}
	return &domain.Answer{Text: completion.Text, Emotion: emotion}, nil
}
