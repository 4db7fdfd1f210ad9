package embedder

import (
	"fmt"
	"strings"
)

// Config holds embedder configuration.
type Config struct {
	Provider  string
	Model     string
	Dimension int
	APIKey    string
	Host      string // Ollama only
	CacheSize int
}

// New creates an embedder from explicit configuration.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Dimension, cache)
	case ProviderOllama:
		return NewOllamaProvider(cfg.Host, cfg.Model, cfg.Dimension, cache), nil
	case ProviderLocal:
		return NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, cfg.Provider)
	}
}
