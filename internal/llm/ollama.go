package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "qwen2.5:7b"

	chatTimeout = 120 * time.Second
)

// message is one chat turn in the Ollama wire format.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaChat is a chat client for a local Ollama server.
type OllamaChat struct {
	host       string
	model      string
	httpClient *http.Client
}

// NewOllamaChat creates an Ollama chat client with defaults for empty
// host/model.
func NewOllamaChat(host, model string) *OllamaChat {
	if host == "" {
		host = defaultOllamaHost
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaChat{
		host:       host,
		model:      model,
		httpClient: &http.Client{Timeout: chatTimeout},
	}
}

// Chat sends the prompt as a single user message and returns the reply.
func (c *OllamaChat) Chat(ctx context.Context, prompt string) (string, error) {
	reqBody := struct {
		Model    string    `json:"model"`
		Messages []message `json:"messages"`
		Stream   bool      `json:"stream"`
	}{
		Model:    c.model,
		Messages: []message{{Role: "user", Content: prompt}},
		Stream:   false,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp struct {
		Message message `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return chatResp.Message.Content, nil
}
