package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	openAIChatURL      = "https://api.openai.com/v1/chat/completions"
)

// OpenAIChat is a chat client for the OpenAI chat completions API.
type OpenAIChat struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIChat creates an OpenAI chat client.
func NewOpenAIChat(apiKey, model string) (*OpenAIChat, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not set")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIChat{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: chatTimeout},
	}, nil
}

// Chat sends the prompt as a single user message and returns the reply.
func (c *OpenAIChat) Chat(ctx context.Context, prompt string) (string, error) {
	reqBody := struct {
		Model    string    `json:"model"`
		Messages []message `json:"messages"`
	}{
		Model:    c.model,
		Messages: []message{{Role: "user", Content: prompt}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return chatResp.Choices[0].Message.Content, nil
}
