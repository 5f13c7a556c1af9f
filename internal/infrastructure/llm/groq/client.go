package groq

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/infrastructure/resilience"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

var errMissingAPIKey = errors.New("groq api key is not configured: set GROQ_API_KEY")

type Options struct {
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	Executor *resilience.Executor
}

// Client calls Groq's OpenAI-compatible chat completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(opts Options) *Client {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   opts.Executor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends prompt as a single user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (domain.Completion, error) {
	if c.apiKey == "" {
		return domain.Completion{}, errMissingAPIKey
	}

	request := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	var response chatResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", request, &response)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "llm.chat", call, classifyGroqError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.Completion{}, err
	}
	if len(response.Choices) == 0 {
		return domain.Completion{}, errors.New("groq returned empty choices")
	}

	model := response.Model
	if model == "" {
		model = c.model
	}
	return domain.Completion{
		Text:             response.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     response.Usage.PromptTokens,
		CompletionTokens: response.Usage.CompletionTokens,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}
