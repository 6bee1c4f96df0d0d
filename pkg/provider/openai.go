package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.openai.com"
	defaultTimeout   = 60 * time.Second
	maxErrorBodySize = 4 << 10
)

// Config configures the OpenAI-compatible chat completions client. BaseURL
// may point at any server speaking the same wire format.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// OpenAI talks to an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	cfg    Config
	client *http.Client
}

// NewOpenAI constructs the client, applying endpoint and timeout defaults.
func NewOpenAI(cfg Config) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &OpenAI{cfg: cfg, client: client}
}

func (p *OpenAI) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends the prompt as a chat completion and returns the first
// choice's content.
func (p *OpenAI) Complete(ctx context.Context, req Request) (*Response, error) {
	if p.cfg.APIKey == "" {
		return nil, errors.New("provider: openai API key not configured")
	}

	start := time.Now()

	payload := chatRequest{Model: req.Model}
	if payload.Model == "" {
		payload.Model = p.cfg.Model
	}
	if req.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.System})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.Prompt})

	payload.MaxTokens = req.MaxTokens
	if payload.MaxTokens == 0 {
		payload.MaxTokens = p.cfg.MaxTokens
	}
	payload.Temperature = req.Temperature
	if payload.Temperature == 0 {
		payload.Temperature = p.cfg.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("provider: marshal request: %w", err)
	}

	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("provider: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider: execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("provider: openai status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("provider: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("provider: openai returned no choices")
	}

	return &Response{
		Text:       parsed.Choices[0].Message.Content,
		Model:      parsed.Model,
		TokensUsed: parsed.Usage.TotalTokens,
		Duration:   time.Since(start),
	}, nil
}
