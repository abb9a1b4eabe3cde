package providers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qcoder/qcoder/internal/core"
)

// OpenAIConfig holds connection settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	Endpoint    string
	APIKey      string
	Model       string
	HTTPTimeout time.Duration
}

// OpenAIClient talks to an OpenAI-compatible chat-completions API. It also
// exposes token counting against the endpoint's tokenizer, with a local
// estimate as fallback so counting never fails.
type OpenAIClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 300 * time.Second
	}

	return &OpenAIClient{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

// CountTokens asks the endpoint's /tokenize route for an exact count and
// falls back to a character estimate when the route is missing or the
// response is unusable.
func (c *OpenAIClient) CountTokens(text string) (int, error) {
	requestBody, _ := json.Marshal(map[string]any{"content": text})

	httpResp, err := c.post("/tokenize", requestBody)
	if err != nil {
		return estimateTokens(text), nil
	}
	defer httpResp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return estimateTokens(text), nil
	}

	if tokens, ok := payload["tokens"].([]any); ok {
		return len(tokens), nil
	}

	if count, ok := payload["count"].(float64); ok {
		return int(count), nil
	}

	return estimateTokens(text), nil
}

// SamplingParams are the completion knobs forwarded with each request.
type SamplingParams struct {
	Temperature float64
	MaxTokens   int
}

// Complete sends the message list to /v1/chat/completions and returns the
// first choice's content.
func (c *OpenAIClient) Complete(messages []core.APIMessage, params SamplingParams) (string, error) {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	payload := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": params.Temperature,
		"max_tokens":  maxTokens,
		"stream":      false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpResp, err := c.post("/v1/chat/completions", body)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(httpResp.Body)

		if len(bodyBytes) > 0 {
			return "", fmt.Errorf("completion error: %s: %s",
				httpResp.Status, strings.TrimSpace(string(bodyBytes)))
		}

		return "", fmt.Errorf("completion error: %s", httpResp.Status)
	}

	var responsePayload completionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&responsePayload); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if len(responsePayload.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}

	return responsePayload.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) post(route string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, c.endpoint+route, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return c.client.Do(req)
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func estimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
