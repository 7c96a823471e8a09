package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/kingdom-engine/internal/handlers"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
)

func newTestAPI(t *testing.T, h http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL, srv.Client())
}

func TestAPIClient_CreateKingdom(t *testing.T) {
	id := uuid.New()
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/kingdom", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req handlers.CreateKingdomRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Elara", req.PlayerName)
		assert.Empty(t, req.KingdomName)

		var res economy.ResourceSet
		res[economy.Wealth] = 500
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(handlers.KingdomView{ID: id, PlayerName: "Elara", KingdomName: "Camelot", Resources: res})
	})

	v, err := api.CreateKingdom(context.Background(), "Elara", "")
	require.NoError(t, err)
	assert.Equal(t, id, v.ID)
	assert.Equal(t, "Camelot", v.KingdomName)
	assert.Equal(t, 500, v.Resources[economy.Wealth])
}

func TestAPIClient_Choose(t *testing.T) {
	id := uuid.New()
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/kingdom/choice", r.URL.Path)
		var req handlers.ChoiceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, id, req.KingdomID)
		if assert.NotNil(t, req.Choice) {
			assert.Equal(t, 2, *req.Choice)
		}

		_ = json.NewEncoder(w).Encode(handlers.TurnResponse{
			Report:  &state.TurnReport{Turn: 1, Date: "February, Year 1"},
			Kingdom: handlers.KingdomView{ID: id, Turn: 1},
		})
	})

	out, err := api.Choose(context.Background(), id, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Report.Turn)
	assert.Equal(t, 1, out.Kingdom.Turn)
}

func TestAPIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json error body", http.StatusConflict, `{"error":"kingdom has changed"}`, "kingdom has changed"},
		{"plain body", http.StatusBadGateway, "upstream down", "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := api.Current(context.Background())
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestAPIClient_AbandonAndCrises(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/kingdom":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/crises":
			_ = json.NewEncoder(w).Encode([]handlers.CrisisSummary{{ID: "famine", Name: "Famine", TriggerType: "resource"}})
		case r.URL.Path == "/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, api.Abandon(context.Background()))

	list, err := api.Crises(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "famine", list[0].ID)

	assert.True(t, api.Healthy(context.Background()))
}

func TestAPIClient_Unreachable(t *testing.T) {
	api := NewAPIClient("http://127.0.0.1:1", http.DefaultClient)
	assert.False(t, api.Healthy(context.Background()))
	_, err := api.Current(context.Background())
	assert.Error(t, err)
}
