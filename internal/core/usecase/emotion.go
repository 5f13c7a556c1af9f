package usecase

import (
	"context"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/core/ports"
)

type DetectEmotionUseCase struct {
	decoder    ports.ImageDecoder
	classifier ports.FaceEmotionClassifier
}

func NewDetectEmotionUseCase(decoder ports.ImageDecoder, classifier ports.FaceEmotionClassifier) *DetectEmotionUseCase {
	return &DetectEmotionUseCase{
		decoder:    decoder,
		classifier: classifier,
	}
}

// Detect reports the emotion of the first face found in the image. Scores are not exposed.
func (uc *DetectEmotionUseCase) Detect(ctx context.Context, data []byte) (domain.Emotion, error) {
	if len(data) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "detect emotion", domain.ErrEmptyImage)
	}

	img, err := uc.decoder.Decode(data)
	if err != nil || img == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "detect emotion", domain.ErrInvalidImage)
	}

	faces, err := uc.classifier.Classify(ctx, img)
	if err != nil {
		if domain.IsKind(err, domain.ErrTemporary) || domain.IsKind(err, domain.ErrUpstream) {
			return "", err
		}
		return "", domain.NewUpstreamError("vision", err)
	}
	if len(faces) == 0 {
		return "", domain.WrapError(domain.ErrNotFound, "detect emotion", domain.ErrNoFace)
	}

	raw, ok := faces[0].Scores.Dominant()
	if !ok {
		return domain.EmotionNeutral, nil
	}
	return domain.ReportEmotion(raw), nil
}
