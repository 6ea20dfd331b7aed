package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-assistant-be/pkg/llm/huggingface"
	"grant-assistant-be/pkg/llm/ollama"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Config{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", o.BaseURL)

	p, err = NewLLMProvider(Config{Provider: "huggingface", Model: "m", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)

	_, err = NewLLMProvider(Config{Provider: "huggingface"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Config{Provider: "none"})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = NewLLMProvider(Config{Provider: "gpt-9"})
	assert.Error(t, err)
}
