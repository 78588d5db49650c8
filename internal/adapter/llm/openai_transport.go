package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"mcq-bot/internal/config"
	"mcq-bot/internal/domain"

	"github.com/sashabaranov/go-openai"
)

// OpenAITransport talks to any OpenAI-compatible chat completion API
// (Groq, OpenAI, local gateways).
type OpenAITransport struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAITransport(cfg config.LLMConfig) (*OpenAITransport, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key is required for provider %s", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm.model is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.CallTimeout}

	return &OpenAITransport{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (t *OpenAITransport) Call(ctx context.Context, prompt domain.Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: prompt.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt.User})

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.model,
		Messages:    messages,
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewTransportError(errors.New("response contained no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return domain.NewRateLimitError(err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return domain.NewRateLimitError(err)
	}
	return classifyTransportError(err)
}

// classifyTransportError maps context and network failures to domain errors.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewTimeoutError(err)
	}
	return domain.NewTransportError(err)
}
