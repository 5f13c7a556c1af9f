package domain

import "fmt"

// Completion is a single chat completion returned by the language model.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

type Answer struct {
	Text    string `json:"answer"`
	Emotion string `json:"-"`
}

// BuildTutorPrompt renders the tutor prompt. emotionLabel is echoed as given;
// the instruction falls back to neutral for unknown labels.
func BuildTutorPrompt(corpusText, question, emotionLabel string) string {
	emotion, _ := ParseEmotion(emotionLabel)
	return fmt.Sprintf(`
You are a personal AI tutor helping a student.

Teacher notes:
%s

Student asked:
%s

Student's current emotion: %s.

Instruction: %s

Provide a helpful, easy to understand answer:
`, corpusText, question, emotionLabel, emotion.Instruction())
}
