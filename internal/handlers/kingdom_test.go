package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/kingdom-engine/internal/services"
	"github.com/jwebster45206/kingdom-engine/internal/worker"
	"github.com/jwebster45206/kingdom-engine/pkg/court"
	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
	"github.com/jwebster45206/kingdom-engine/pkg/storage"
)

type testServer struct {
	handler *KingdomHandler
	store   *storage.MockStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	catalog, err := crisis.DefaultCatalog()
	require.NoError(t, err)
	tables, err := court.DefaultTables()
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rng := rand.New(rand.NewPCG(7, 7))
	store := storage.NewMockStorage()
	engine := state.NewEngine(catalog, rng, log).WithRandomChance(0)
	presenter := worker.NewEventPresenter(services.NewMockLLMAPI(), tables, rng, time.Second, log)
	processor := worker.NewTurnProcessor(engine, presenter, store, log)
	return &testServer{handler: NewKingdomHandler(processor, log), store: store}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func TestKingdomHandler_Create(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodPost, "/v1/kingdom", `{"player_name":"Queen Maud","kingdom_name":"Wessex"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	view := decode[KingdomView](t, rr)
	assert.NotEqual(t, uuid.Nil, view.ID)
	assert.Equal(t, "Queen Maud", view.PlayerName)
	assert.Equal(t, "Wessex", view.KingdomName)
	assert.Equal(t, 0, view.Turn)
	assert.Equal(t, 500, view.Resources[economy.Wealth])
	assert.Equal(t, 50, view.Factions[economy.Clergy])
	assert.Empty(t, view.Crises)
	require.NotNil(t, view.Event)
	assert.Len(t, view.Event.Choices, 3)
}

func TestKingdomHandler_CreateDefaults(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodPost, "/v1/kingdom", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	view := decode[KingdomView](t, rr)
	assert.Equal(t, state.DefaultPlayerName, view.PlayerName)
	assert.Equal(t, state.DefaultKingdomName, view.KingdomName)

	rr = s.do(http.MethodPost, "/v1/kingdom", `{"scenario":"pirates"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestKingdomHandler_ReadAndDelete(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodGet, "/v1/kingdom", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, worker.ErrNoKingdom.Error(), decode[ErrorResponse](t, rr).Error)

	created := decode[KingdomView](t, s.do(http.MethodPost, "/v1/kingdom", ""))

	rr = s.do(http.MethodGet, "/v1/kingdom/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.ID, decode[KingdomView](t, rr).ID)

	rr = s.do(http.MethodDelete, "/v1/kingdom", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(http.MethodGet, "/v1/kingdom", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestKingdomHandler_Choice(t *testing.T) {
	s := newTestServer(t)
	created := decode[KingdomView](t, s.do(http.MethodPost, "/v1/kingdom", ""))

	rr := s.do(http.MethodPost, "/v1/kingdom/choice", fmt.Sprintf(`{"kingdom_id":%q,"choice":0}`, created.ID))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[TurnResponse](t, rr)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 1, resp.Report.Turn)
	assert.Equal(t, resp.Report.Date, resp.Kingdom.Date)
	assert.Equal(t, 700, resp.Kingdom.Resources[economy.Food])
	require.NotEmpty(t, resp.Report.ChoiceDeltas)
	assert.Equal(t, "food", resp.Report.ChoiceDeltas[0].Name)
	assert.NotNil(t, resp.Kingdom.Event)
}

func TestKingdomHandler_ChoiceErrors(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(http.MethodPost, "/v1/kingdom/choice", fmt.Sprintf(`{"kingdom_id":%q,"choice":0}`, uuid.New()))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	created := decode[KingdomView](t, s.do(http.MethodPost, "/v1/kingdom", ""))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", `{"kingdom_id":`, http.StatusBadRequest},
		{"bad id", `{"kingdom_id":"not-a-uuid","choice":0}`, http.StatusBadRequest},
		{"missing id", `{"choice":0}`, http.StatusBadRequest},
		{"missing choice", fmt.Sprintf(`{"kingdom_id":%q}`, created.ID), http.StatusBadRequest},
		{"index too high", fmt.Sprintf(`{"kingdom_id":%q,"choice":3}`, created.ID), http.StatusBadRequest},
		{"negative index", fmt.Sprintf(`{"kingdom_id":%q,"choice":-1}`, created.ID), http.StatusBadRequest},
		{"stale kingdom", fmt.Sprintf(`{"kingdom_id":%q,"choice":0}`, uuid.New()), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(http.MethodPost, "/v1/kingdom/choice", tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rr).Error)
		})
	}
}

func TestKingdomHandler_Routing(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodPut, "/v1/kingdom", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodGet, "/v1/kingdom/choice", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/v1/kingdom/history", "").Code)
}

func TestKingdomHandler_StorageFailure(t *testing.T) {
	s := newTestServer(t)
	s.store.SetSaveError(errors.New("disk full"))

	rr := s.do(http.MethodPost, "/v1/kingdom", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decode[ErrorResponse](t, rr).Error)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{worker.ErrNoKingdom, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", worker.ErrInvalidChoice), http.StatusBadRequest},
		{worker.ErrStaleKingdom, http.StatusConflict},
		{worker.ErrNoEvent, http.StatusConflict},
		{state.ErrGameEnded, http.StatusConflict},
		{errors.New("redis down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

var _ KingdomService = (*worker.TurnProcessor)(nil)

func TestCrisesHandler(t *testing.T) {
	catalog, err := crisis.DefaultCatalog()
	require.NoError(t, err)
	h := NewCrisesHandler(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/crises", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	list := decode[[]CrisisSummary](t, rr)
	assert.Len(t, list, catalog.Len())
	var comet *CrisisSummary
	for i := range list {
		if list[i].ID == "comet_sighted" {
			comet = &list[i]
		}
	}
	require.NotNil(t, comet)
	assert.Equal(t, "Ominous Comet", comet.Name)
	assert.Equal(t, "random", comet.TriggerType)
	assert.Equal(t, 3, comet.Stages)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/crises", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestNewKingdomView_Crises(t *testing.T) {
	catalog, err := crisis.DefaultCatalog()
	require.NoError(t, err)
	def, ok := catalog.Lookup("plague")
	require.True(t, ok)

	gs := state.NewGameState("", "", rand.New(rand.NewPCG(1, 1)))
	gs.Active = append(gs.Active, &state.ActiveCrisis{
		Definition:    def,
		CrisisID:      "plague",
		TurnsActive:   2,
		ChainProgress: "1",
		ChainState:    state.ChainOngoing,
	})

	view := NewKingdomView(gs)
	require.Len(t, view.Crises, 1)
	assert.Equal(t, CrisisView{
		ID:          "plague",
		Name:        def.Name,
		TurnsActive: 2,
		Stage:       "1",
		ChainState:  "ongoing",
		Critical:    def.Critical,
	}, view.Crises[0])

}
