package embedder

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Provider names and defaults.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderLocal  = "local"

	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultOllamaModel = "nomic-embed-text"

	OpenAIDimension = 1536
	OllamaDimension = 768
	LocalDimension  = 384

	openAIEmbeddingsURL = "https://api.openai.com/v1/embeddings"
	defaultOllamaHost   = "http://localhost:11434"

	requestTimeout = 30 * time.Second
)

// OpenAIProvider implements Embedder against the OpenAI embeddings API.
type OpenAIProvider struct {
	apiKey     string
	model      string
	dimension  int
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates an OpenAI embedder. model and dimension fall back
// to text-embedding-3-small / 1536 when zero-valued.
func NewOpenAIProvider(apiKey, model string, dimension int, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key not set", ErrNoProviderEnabled)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if dimension <= 0 {
		dimension = OpenAIDimension
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      cache,
	}, nil
}

func (p *OpenAIProvider) Dimension() int { return p.dimension }
func (p *OpenAIProvider) Model() string  { return p.model }

// Embed generates one embedding, consulting the memo cache first.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if p.cache != nil {
		if vec, ok := p.cache.Get(hash); ok {
			return vec, nil
		}
	}

	vec, err := retryWithBackoff(ctx, DefaultRetryConfig(), func() ([]float32, error) {
		return p.callAPI(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	if p.cache != nil {
		p.cache.Set(hash, vec)
	}
	return vec, nil
}

func (p *OpenAIProvider) callAPI(ctx context.Context, text string) ([]float32, error) {
	reqBody := struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: p.model}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEmbeddingsURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}
	if len(apiResp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return apiResp.Data[0].Embedding, nil
}

// OllamaProvider implements Embedder against a local Ollama server.
type OllamaProvider struct {
	host       string
	model      string
	dimension  int
	httpClient *http.Client
	cache      *Cache
}

// NewOllamaProvider creates an Ollama embedder. host, model and dimension
// fall back to localhost / nomic-embed-text / 768 when zero-valued.
func NewOllamaProvider(host, model string, dimension int, cache *Cache) *OllamaProvider {
	if host == "" {
		host = defaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if dimension <= 0 {
		dimension = OllamaDimension
	}
	return &OllamaProvider{
		host:       host,
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      cache,
	}
}

func (p *OllamaProvider) Dimension() int { return p.dimension }
func (p *OllamaProvider) Model() string  { return p.model }

// Embed generates one embedding via the Ollama embeddings endpoint.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if p.cache != nil {
		if vec, ok := p.cache.Get(hash); ok {
			return vec, nil
		}
	}

	vec, err := retryWithBackoff(ctx, DefaultRetryConfig(), func() ([]float32, error) {
		return p.callAPI(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	if p.cache != nil {
		p.cache.Set(hash, vec)
	}
	return vec, nil
}

func (p *OllamaProvider) callAPI(ctx context.Context, text string) ([]float32, error) {
	reqBody := struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}{Model: p.model, Prompt: text}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}
	if len(apiResp.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return apiResp.Embedding, nil
}

// LocalProvider is a deterministic hash-based embedder used for offline runs
// and tests. Vectors are stable per text but carry no semantic signal.
type LocalProvider struct {
	dimension int
}

// NewLocalProvider creates a local embedder with the default dimension.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{dimension: LocalDimension}
}

func (p *LocalProvider) Dimension() int { return p.dimension }
func (p *LocalProvider) Model() string  { return "local-hash" }

// Embed produces a unit-normalized pseudo-embedding derived from the text
// hash.
func (p *LocalProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	seedHex := ComputeHash(text)
	vec := make([]float32, p.dimension)
	var norm float64
	for i := range vec {
		// Spread the 32-byte digest across the vector.
		b := []byte(seedHex)
		v := float64(binary.BigEndian.Uint32([]byte{
			b[(i*4)%len(b)], b[(i*4+1)%len(b)], b[(i*4+2)%len(b)], b[(i*4+3)%len(b)],
		}))
		v = math.Sin(v + float64(i))
		vec[i] = float32(v)
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}
