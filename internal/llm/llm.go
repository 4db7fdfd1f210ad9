// Package llm provides the chat-model collaborator used for answer
// synthesis. It is only invoked when a caller explicitly requests an answer.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// ChatModel turns a prompt into answer text.
type ChatModel interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Config holds chat-model configuration.
type Config struct {
	Provider string
	Model    string
	Host     string // Ollama only
	APIKey   string // OpenAI only
}

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

// New creates a chat model from configuration. Provider "none" (or empty)
// returns nil: synthesis is then unavailable and answer requests degrade to
// retrieval-only results.
func New(cfg Config) (ChatModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIChat(cfg.APIKey, cfg.Model)
	case ProviderOllama:
		return NewOllamaChat(cfg.Host, cfg.Model), nil
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}
