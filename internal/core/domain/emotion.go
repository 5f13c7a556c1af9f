package domain

import (
	"slices"
)

// RawEmotion is a label produced by the face emotion classifier.
type RawEmotion string

const (
	RawAngry    RawEmotion = "angry"
	RawDisgust  RawEmotion = "disgust"
	RawFear     RawEmotion = "fear"
	RawHappy    RawEmotion = "happy"
	RawSad      RawEmotion = "sad"
	RawSurprise RawEmotion = "surprise"
	RawNeutral  RawEmotion = "neutral"
)

// RawEmotions lists classifier labels in classifier order. Ties in
// EmotionScores.Dominant resolve to the earlier entry.
var RawEmotions = []RawEmotion{
	RawAngry,
	RawDisgust,
	RawFear,
	RawHappy,
	RawSad,
	RawSurprise,
	RawNeutral,
}

// Emotion is the simplified label reported to clients and used to pick a tutoring tone.
type Emotion string

const (
	EmotionHappy    Emotion = "happy"
	EmotionStressed Emotion = "stressed"
	EmotionConfused Emotion = "confused"
	EmotionNeutral  Emotion = "neutral"
)

var reportedEmotions = map[RawEmotion]Emotion{
	RawHappy:    EmotionHappy,
	RawAngry:    EmotionStressed,
	RawSad:      EmotionStressed,
	RawSurprise: EmotionConfused,
	RawNeutral:  EmotionNeutral,
	RawFear:     EmotionStressed,
	RawDisgust:  EmotionStressed,
}

var emotionInstructions = map[Emotion]string{
	EmotionHappy:    "Answer enthusiastically and encourage learning.",
	EmotionConfused: "Explain clearly and break down concepts.",
	EmotionStressed: "Be patient and reassuring in your answer.",
	EmotionNeutral:  "Provide a clear and concise answer.",
}

// ReportEmotion collapses a raw classifier label into a reported emotion.
// Unknown labels report neutral.
func ReportEmotion(raw RawEmotion) Emotion {
	if reported, ok := reportedEmotions[raw]; ok {
		return reported
	}
	return EmotionNeutral
}

// ParseEmotion returns the known emotion named by value and whether it was recognised.
// Empty and unknown values, including padded names, yield neutral.
func ParseEmotion(value string) (Emotion, bool) {
	switch e := Emotion(value); e {
	case EmotionHappy, EmotionStressed, EmotionConfused, EmotionNeutral:
		return e, true
	default:
		return EmotionNeutral, false
	}
}

// Instruction is the tone instruction appended to tutor prompts.
func (e Emotion) Instruction() string {
	if instruction, ok := emotionInstructions[e]; ok {
		return instruction
	}
	return emotionInstructions[EmotionNeutral]
}

// EmotionScores holds one probability-like score per raw label.
type EmotionScores map[RawEmotion]float64

// Dominant returns the highest scoring label. Known labels are visited in
// classifier order, then any other labels in lexical order; the first maximum wins.
// It reports false for empty scores.
func (s EmotionScores) Dominant() (RawEmotion, bool) {
	var (
		best  RawEmotion
		score float64
		found bool
	)
	for _, raw := range s.labels() {
		if v := s[raw]; !found || v > score {
			best, score, found = raw, v, true
		}
	}
	return best, found
}

func (s EmotionScores) labels() []RawEmotion {
	labels := make([]RawEmotion, 0, len(s))
	for _, raw := range RawEmotions {
		if _, ok := s[raw]; ok {
			labels = append(labels, raw)
		}
	}
	extra := make([]RawEmotion, 0)
	for raw := range s {
		if !slices.Contains(RawEmotions, raw) {
			extra = append(extra, raw)
		}
	}
	slices.Sort(extra)
	return append(labels, extra...)
}

type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FaceReading is the classifier output for one detected face.
type FaceReading struct {
	Box    BoundingBox   `json:"box"`
	Scores EmotionScores `json:"emotions"`
}
