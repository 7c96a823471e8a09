package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/kingdom-engine/pkg/chat"
)

const (
	anthropicProvider = "anthropic"
	anthropicBaseURL  = "https://api.anthropic.com/v1"
	anthropicVersion  = "2023-06-01"

	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 2048
)

// AnthropicService implements LLMService for Anthropic Claude
type AnthropicService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type AnthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []chat.ChatMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
}

type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicChatResponse struct {
	ID         string                  `json:"id"`
	Content    []AnthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicService(apiKey string, modelName string, logger *slog.Logger) *AnthropicService {
	return &AnthropicService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   anthropicBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL points the client at a different API root.
// Returns the AnthropicService for method chaining
func (a *AnthropicService) WithBaseURL(url string) *AnthropicService {
	a.baseURL = url
	return a
}

func (a *AnthropicService) Name() string {
	return anthropicProvider
}

func (a *AnthropicService) InitModel(ctx context.Context, modelName string) error {
	if a.apiKey == "" {
		return missingKeyError(anthropicProvider, "ANTHROPIC_API_KEY")
	}
	return nil
}

// Chat generates an event using Anthropic Claude. System messages are sent
// as the system prompt.
func (a *AnthropicService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	if a.apiKey == "" {
		return nil, missingKeyError(anthropicProvider, "ANTHROPIC_API_KEY")
	}

	systemPrompt, conversation := chat.SplitSystem(messages)
	temperature := DefaultAnthropicTemperature
	reqBody, err := json.Marshal(AnthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: &temperature,
		Messages:    conversation,
		System:      systemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &ExternalServiceError{Provider: anthropicProvider, Kind: KindUnavailable, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExternalServiceError{Provider: anthropicProvider, Kind: KindUnavailable, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(anthropicProvider, resp.StatusCode, body)
	}

	var out AnthropicChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ExternalServiceError{Provider: anthropicProvider, Kind: KindBadResponse, StatusCode: resp.StatusCode, Err: err}
	}
	if out.Error != nil {
		return nil, &ExternalServiceError{Provider: anthropicProvider, Kind: KindBadResponse, StatusCode: resp.StatusCode, Err: errors.New(out.Error.Message)}
	}
	if out.StopReason == "refusal" {
		return nil, &ExternalServiceError{Provider: anthropicProvider, Kind: KindBlocked, StatusCode: resp.StatusCode, Err: errors.New("model refused to respond")}
	}

	var text string
	for _, block := range out.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, &ExternalServiceError{Provider: anthropicProvider, Kind: KindBadResponse, StatusCode: resp.StatusCode, Err: errors.New("no text in response")}
	}

	a.logger.Debug("Anthropic response received",
		"model", out.Model,
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
		"duration", time.Since(start))
	return &chat.ChatResponse{Message: text}, nil
}
