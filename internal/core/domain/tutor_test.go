package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTutorPromptIncludesInputsVerbatim(t *testing.T) {
	corpus := "Photosynthesis converts light\ninto chemical energy."
	question := "What does  photosynthesis produce?"

	prompt := BuildTutorPrompt(corpus, question, "happy")

	require.Contains(t, prompt, "You are a personal AI tutor helping a student.")
	require.Contains(t, prompt, "Teacher notes:\n"+corpus+"\n")
	require.Contains(t, prompt, "Student asked:\n"+question+"\n")
	require.Contains(t, prompt, "Student's current emotion: happy.")
	require.Contains(t, prompt, "Instruction: Answer enthusiastically and encourage learning.")
}

func TestBuildTutorPromptUnknownEmotionUsesNeutralInstruction(t *testing.T) {
	prompt := BuildTutorPrompt("notes", "why?", "bored")

	require.Contains(t, prompt, "Student's current emotion: bored.")
	require.Contains(t, prompt, "Instruction: "+EmotionNeutral.Instruction())
	require.False(t, strings.Contains(prompt, EmotionHappy.Instruction()))
}

func TestBuildTutorPromptPaddedEmotionUsesNeutralInstruction(t *testing.T) {
	prompt := BuildTutorPrompt("notes", "q", "happy ")

	require.Contains(t, prompt, "Student's current emotion: happy .")
	require.Contains(t, prompt, "Instruction: Provide a clear and concise answer.")
	require.NotContains(t, prompt, "enthusiastically")
}
