package llm

import (
	"context"
	"errors"
	"net/http"

	"mcq-bot/internal/config"
	"mcq-bot/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

// LangchainTransport adapts a langchaingo model to domain.LLMTransport.
type LangchainTransport struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

func NewLangchainTransport(model llms.Model, temperature float64, maxTokens int) *LangchainTransport {
	return &LangchainTransport{model: model, temperature: temperature, maxTokens: maxTokens}
}

// NewOllamaTransport connects to an ollama server through langchaingo.
func NewOllamaTransport(cfg config.LLMConfig) (*LangchainTransport, error) {
	httpClient := &http.Client{Timeout: cfg.CallTimeout}
	opts := []ollama.Option{ollama.WithModel(cfg.Model), ollama.WithHTTPClient(httpClient)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}
	model, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewLangchainTransport(model, cfg.Temperature, cfg.MaxTokens), nil
}

func (t *LangchainTransport) Call(ctx context.Context, prompt domain.Prompt) (string, error) {
	messages := make([]llms.MessageContent, 0, 2)
	if prompt.System != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, prompt.System))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, prompt.User))

	opts := []llms.CallOption{llms.WithTemperature(t.temperature)}
	if t.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(t.maxTokens))
	}

	resp, err := t.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", classifyTransportError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", domain.NewTransportError(errors.New("response contained no choices"))
	}
	return resp.Choices[0].Content, nil
}
