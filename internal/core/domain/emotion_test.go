package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportEmotionMapsEveryRawLabel(t *testing.T) {
	cases := map[RawEmotion]Emotion{
		RawHappy:    EmotionHappy,
		RawAngry:    EmotionStressed,
		RawSad:      EmotionStressed,
		RawSurprise: EmotionConfused,
		RawNeutral:  EmotionNeutral,
		RawFear:     EmotionStressed,
		RawDisgust:  EmotionStressed,
	}
	require.Len(t, cases, len(RawEmotions))
	for raw, want := range cases {
		require.Equal(t, want, ReportEmotion(raw), "raw=%s", raw)
	}
}

func TestReportEmotionFallsBackToNeutral(t *testing.T) {
	require.Equal(t, EmotionNeutral, ReportEmotion("contempt"))
	require.Equal(t, EmotionNeutral, ReportEmotion(""))
}

func TestDominantPicksHighestScore(t *testing.T) {
	scores := EmotionScores{
		RawAngry:   0.05,
		RawHappy:   0.81,
		RawNeutral: 0.10,
		RawSad:     0.04,
	}
	raw, ok := scores.Dominant()
	require.True(t, ok)
	require.Equal(t, RawHappy, raw)
}

func TestDominantBreaksTiesInClassifierOrder(t *testing.T) {
	scores := EmotionScores{
		RawNeutral:  0.5,
		RawSurprise: 0.5,
		RawFear:     0.5,
	}
	raw, ok := scores.Dominant()
	require.True(t, ok)
	require.Equal(t, RawFear, raw)
}

func TestDominantConsidersUnknownLabels(t *testing.T) {
	scores := EmotionScores{
		RawNeutral: 0.2,
		"contempt": 0.7,
	}
	raw, ok := scores.Dominant()
	require.True(t, ok)
	require.Equal(t, RawEmotion("contempt"), raw)
	require.Equal(t, EmotionNeutral, ReportEmotion(raw))
}

func TestDominantEmptyScores(t *testing.T) {
	_, ok := EmotionScores{}.Dominant()
	require.False(t, ok)
}

func TestParseEmotion(t *testing.T) {
	e, ok := ParseEmotion("confused")
	require.True(t, ok)
	require.Equal(t, EmotionConfused, e)

	e, ok = ParseEmotion("sleepy")
	require.False(t, ok)
	require.Equal(t, EmotionNeutral, e)

	e, ok = ParseEmotion("")
	require.False(t, ok)
	require.Equal(t, EmotionNeutral, e)

	e, ok = ParseEmotion("happy ")
	require.False(t, ok)
	require.Equal(t, EmotionNeutral, e)
}

func TestInstructionFallsBackToNeutral(t *testing.T) {
	require.Equal(t, "Be patient and reassuring in your answer.", EmotionStressed.Instruction())
	require.Equal(t, EmotionNeutral.Instruction(), Emotion("angry").Instruction())
}
