package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/imaging"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/resilience"
)

// Client talks to an Ollama server hosting a vision-capable model.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

// FaceClassifier asks the vision model to locate faces and score the seven raw emotions.
type FaceClassifier struct {
	client *Client
}

func NewFaceClassifier(client *Client) *FaceClassifier {
	return &FaceClassifier{client: client}
}

type faceResponse struct {
	Faces []struct {
		Box      domain.BoundingBox `json:"box"`
		Emotions map[string]float64 `json:"emotions"`
	} `json:"faces"`
}

func (c *FaceClassifier) Classify(ctx context.Context, img image.Image) ([]domain.FaceReading, error) {
	raw, err := imaging.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	respText, err := c.client.generateJSON(ctx, buildFaceEmotionPrompt(), base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		return nil, err
	}

	var parsed faceResponse
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &parsed); err != nil {
		return nil, fmt.Errorf("parse face emotion json: %w", err)
	}

	faces := make([]domain.FaceReading, 0, len(parsed.Faces))
	for _, face := range parsed.Faces {
		scores := make(domain.EmotionScores, len(face.Emotions))
		for label, score := range face.Emotions {
			label = strings.ToLower(strings.TrimSpace(label))
			if label == "" {
				continue
			}
			if score < 0 {
				score = 0
			}
			scores[domain.RawEmotion(label)] = score
		}
		faces = append(faces, domain.FaceReading{Box: face.Box, Scores: scores})
	}
	return faces, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string, images ...string) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"images": images,
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": 0,
		},
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(callCtx context.Context) error {
		return c.do(callCtx, "generate", "/api/generate", reqBody, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "vision.generate", call, classifyVisionError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", asTemporary("vision generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
