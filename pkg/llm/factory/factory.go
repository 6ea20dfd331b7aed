package factory

import (
	"errors"
	"fmt"

	"grant-assistant-be/pkg/llm"
	"grant-assistant-be/pkg/llm/huggingface"
	"grant-assistant-be/pkg/llm/ollama"
)

// ErrDisabled is returned for the "none" provider; callers run without deep-dive generation
var ErrDisabled = errors.New("llm provider disabled")

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "huggingface":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("huggingface provider needs an API key")
		}
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "", "none":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
