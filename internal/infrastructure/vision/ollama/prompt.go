package ollama

func buildFaceEmotionPrompt() string {
	return `You are a facial expression classifier.
Find every human face in the image, ordered from the largest to the smallest.
Return strict JSON object with key "faces": an array where each item has
"box" (object with integer x, y, width, height in pixels) and
"emotions" (object with keys angry, disgust, fear, happy, sad, surprise, neutral; numbers from 0 to 1 that sum to 1).
Return {"faces": []} when no face is visible.
No markdown, no extra keys.`
}
