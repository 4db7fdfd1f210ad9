package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetReturnsCopy(t *testing.T) {
	cache := NewCache(10)
	cache.Set("h", []float32{1, 2, 3})

	vec, ok := cache.Get("h")
	require.True(t, ok)
	vec[0] = 99

	again, ok := cache.Get("h")
	require.True(t, ok)
	assert.Equal(t, float32(1), again[0])
}

func TestCache_Miss(t *testing.T) {
	cache := NewCache(10)
	_, ok := cache.Get("missing")
	assert.False(t, ok)
}

func TestComputeHash_Deterministic(t *testing.T) {
	assert.Equal(t, ComputeHash("abc"), ComputeHash("abc"))
	assert.NotEqual(t, ComputeHash("abc"), ComputeHash("abd"))
	assert.Len(t, ComputeHash("abc"), 64)
}

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
	var calls int32
	result, err := retryWithBackoff(context.Background(), cfg, func() (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, int32(3), calls)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
	_, err := retryWithBackoff(context.Background(), cfg, func() (int, error) {
		return 0, errors.New("always fails")
	})
	assert.EqualError(t, err, "always fails")
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := DefaultRetryConfig()
	_, err := retryWithBackoff(ctx, cfg, func() (int, error) {
		return 0, errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOllamaProvider_Embed(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float32{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "", 3, NewCache(10))
	vec, err := p.Embed(context.Background(), "some code")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	// Second call for the same text is served from the memo cache.
	_, err = p.Embed(context.Background(), "some code")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestOllamaProvider_EmptyText(t *testing.T) {
	p := NewOllamaProvider("http://localhost:0", "", 0, nil)
	_, err := p.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "", 0, nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestLocalProvider_DeterministicUnitVectors(t *testing.T) {
	p := NewLocalProvider()
	a, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	c, err := p.Embed(context.Background(), "other")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, p.Dimension())

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 0.01)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "bogus"})
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestNew_Local(t *testing.T) {
	emb, err := New(Config{Provider: ProviderLocal})
	require.NoError(t, err)
	assert.Equal(t, "local-hash", emb.Model())
}
