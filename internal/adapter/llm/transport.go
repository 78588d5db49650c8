package llm

import (
	"fmt"

	"mcq-bot/internal/config"
	"mcq-bot/internal/domain"
)

// NewTransport builds the LLM transport selected by llm.provider.
func NewTransport(cfg config.LLMConfig) (domain.LLMTransport, error) {
	switch cfg.Provider {
	case "groq", "openai":
		return NewOpenAITransport(cfg)
	case "ollama":
		return NewOllamaTransport(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
