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
	"net/url"
	"time"

	"github.com/jwebster45206/kingdom-engine/pkg/chat"
)

const (
	geminiProvider = "gemini"
	geminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiService implements LLMService for Google Gemini. The whole prompt
// is sent as a single text part.
type GeminiService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiRequest struct {
	Contents []GeminiContent `json:"contents"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content      GeminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewGeminiService(apiKey string, modelName string, logger *slog.Logger) *GeminiService {
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL points the client at a different API root.
// Returns the GeminiService for method chaining
func (g *GeminiService) WithBaseURL(url string) *GeminiService {
	g.baseURL = url
	return g
}

func (g *GeminiService) Name() string {
	return geminiProvider
}

func (g *GeminiService) InitModel(ctx context.Context, modelName string) error {
	if g.apiKey == "" {
		return missingKeyError(geminiProvider, "GEMINI_API_KEY")
	}
	return nil
}

func (g *GeminiService) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.modelName), url.QueryEscape(g.apiKey))
}

// Chat generates an event using Gemini.
func (g *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	if g.apiKey == "" {
		return nil, missingKeyError(geminiProvider, "GEMINI_API_KEY")
	}

	reqBody, err := json.Marshal(GeminiRequest{
		Contents: []GeminiContent{{Parts: []GeminiPart{{Text: chat.Flatten(messages)}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &ExternalServiceError{Provider: geminiProvider, Kind: KindUnavailable, Err: scrubKey(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExternalServiceError{Provider: geminiProvider, Kind: KindUnavailable, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(geminiProvider, resp.StatusCode, body)
	}

	var out GeminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &ExternalServiceError{Provider: geminiProvider, Kind: KindBadResponse, StatusCode: resp.StatusCode, Err: err}
	}
	if out.Error != nil {
		return nil, &ExternalServiceError{Provider: geminiProvider, Kind: KindBadResponse, StatusCode: resp.StatusCode, Err: errors.New(out.Error.Message)}
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return nil, &ExternalServiceError{Provider: geminiProvider, Kind: KindBlocked, StatusCode: resp.StatusCode, Err: fmt.Errorf("prompt blocked: %s", out.PromptFeedback.BlockReason)}
	}
	if len(out.Candidates) == 0 {
		return nil, &ExternalServiceError{Provider: geminiProvider, Kind: KindBadResponse, StatusCode: resp.StatusCode, Err: errors.New("no candidates in response")}
	}
	cand := out.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		return nil, &ExternalServiceError{Provider: geminiProvider, Kind: KindBlocked, StatusCode: resp.StatusCode, Err: errors.New("candidate blocked for safety")}
	}
	if len(cand.Content.Parts) == 0 || cand.Content.Parts[0].Text == "" {
		return nil, &ExternalServiceError{Provider: geminiProvider, Kind: KindBadResponse, StatusCode: resp.StatusCode, Err: errors.New("no text in response")}
	}

	g.logger.Debug("Gemini response received", "model", g.modelName, "duration", time.Since(start))
	return &chat.ChatResponse{Message: cand.Content.Parts[0].Text}, nil
}

// scrubKey keeps the API key, which travels in the query string, out of
// transport errors.
func scrubKey(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request failed: %w", uerr.Op, uerr.Err)
	}
	return err
}
