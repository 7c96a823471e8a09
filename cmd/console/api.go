package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/kingdom-engine/internal/handlers"
)

// APIClient talks to the kingdom API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	return &APIClient{baseURL: baseURL, client: client}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
}

func (c *APIClient) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// CreateKingdom starts a new reign. Empty names use the server defaults.
func (c *APIClient) CreateKingdom(ctx context.Context, playerName, kingdomName string) (*handlers.KingdomView, error) {
	var view handlers.KingdomView
	err := c.do(ctx, http.MethodPost, "/v1/kingdom", handlers.CreateKingdomRequest{
		PlayerName:  playerName,
		KingdomName: kingdomName,
	}, http.StatusCreated, &view)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Current reads the saved reign.
func (c *APIClient) Current(ctx context.Context) (*handlers.KingdomView, error) {
	var view handlers.KingdomView
	if err := c.do(ctx, http.MethodGet, "/v1/kingdom", nil, http.StatusOK, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Choose decides the presented event with a 0-based choice index.
func (c *APIClient) Choose(ctx context.Context, kingdomID uuid.UUID, index int) (*handlers.TurnResponse, error) {
	var out handlers.TurnResponse
	err := c.do(ctx, http.MethodPost, "/v1/kingdom/choice", handlers.ChoiceRequest{
		KingdomID: kingdomID,
		Choice:    &index,
	}, http.StatusOK, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Abandon(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/kingdom", nil, http.StatusNoContent, nil)
}

// Crises lists the crisis catalog.
func (c *APIClient) Crises(ctx context.Context) ([]handlers.CrisisSummary, error) {
	var out []handlers.CrisisSummary
	if err := c.do(ctx, http.MethodGet, "/v1/crises", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: string(data)}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errorResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
