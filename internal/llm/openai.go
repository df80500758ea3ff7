package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
)

// maxErrorBody bounds how much of an error response ends up in logs.
const maxErrorBody = 512

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	payload := chatRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if prompt.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: prompt.System})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: prompt.User})

	body, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, &Error{Kind: KindUnknown, Err: fmt.Errorf("marshal chat payload: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Completion{}, &Error{Kind: KindUnknown, Err: fmt.Errorf("build chat request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Completion{}, &Error{Kind: classifyTransportError(err), Err: fmt.Errorf("request chat completion: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	rawRespBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, &Error{Kind: classifyTransportError(err), StatusCode: resp.StatusCode, Err: fmt.Errorf("read chat response body: %w", err)}
	}
	if resp.StatusCode >= 400 {
		return Completion{}, &Error{
			Kind:       classifyStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("chat completion failed body=%s", truncate(string(rawRespBody), maxErrorBody)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(rawRespBody, &parsed); err != nil {
		return Completion{}, &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode chat completion response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return Completion{}, &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Err: errors.New("empty chat completion choices")}
	}

	text := stripMarkdownSQL(parsed.Choices[0].Message.Content)
	if text == "" {
		return Completion{}, &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Err: errors.New("model returned empty SQL")}
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}
	return Completion{
		Text:  text,
		Model: model,
		Usage: domain.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthFailure
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnknown
	}
}

func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnknown
}

func stripMarkdownSQL(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
