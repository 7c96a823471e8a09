package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/kingdom-engine/internal/middleware"
	"github.com/jwebster45206/kingdom-engine/internal/worker"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
)

const maxBodyBytes = 1 << 20

// KingdomService runs the reign. *worker.TurnProcessor implements it.
type KingdomService interface {
	StartGame(ctx context.Context, playerName, kingdomName string) (*state.GameState, error)
	Current(ctx context.Context) (*state.GameState, error)
	ProcessChoice(ctx context.Context, kingdomID uuid.UUID, index int) (*worker.TurnResult, error)
	Abandon(ctx context.Context) error
}

// CreateKingdomRequest defines the request body for starting a reign.
// Both fields are optional.
type CreateKingdomRequest struct {
	PlayerName  string `json:"player_name,omitempty"`
	KingdomName string `json:"kingdom_name,omitempty"`
}

// ChoiceRequest picks one of the presented choices by 0-based index.
type ChoiceRequest struct {
	KingdomID uuid.UUID `json:"kingdom_id"`
	Choice    *int      `json:"choice"`
}

type KingdomHandler struct {
	kingdoms KingdomService
	logger   *slog.Logger
}

func NewKingdomHandler(kingdoms KingdomService, logger *slog.Logger) *KingdomHandler {
	return &KingdomHandler{
		kingdoms: kingdoms,
		logger:   logger,
	}
}

// ServeHTTP handles HTTP requests for the reign
// Routes:
// POST /v1/kingdom         - Start a new reign, replacing any saved one
// GET /v1/kingdom          - Read the current reign
// DELETE /v1/kingdom       - Abandon the current reign
// POST /v1/kingdom/choice  - Decide the presented event and run a turn
func (h *KingdomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("request_id", middleware.RequestID(r.Context()))
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/kingdom"), "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r, log)
	case path == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, log)
	case path == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, log)
	case path == "/choice" && r.Method == http.MethodPost:
		h.handleChoice(w, r, log)
	case path == "" || path == "/choice":
		log.Warn("Method not allowed for kingdom endpoint", "method", r.Method, "path", r.URL.Path)
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, log, http.StatusNotFound, "Not found")
	}
}

func (h *KingdomHandler) handleCreate(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var req CreateKingdomRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Warn("Invalid create request", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	gs, err := h.kingdoms.StartGame(r.Context(), req.PlayerName, req.KingdomName)
	if err != nil {
		writeProcessorError(w, log, err)
		return
	}
	log.Info("Kingdom created", "game_id", gs.ID.String())
	writeJSON(w, log, http.StatusCreated, NewKingdomView(gs))
}

func (h *KingdomHandler) handleRead(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	gs, err := h.kingdoms.Current(r.Context())
	if err != nil {
		writeProcessorError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, NewKingdomView(gs))
}

func (h *KingdomHandler) handleDelete(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	if err := h.kingdoms.Abandon(r.Context()); err != nil {
		writeProcessorError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *KingdomHandler) handleChoice(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var req ChoiceRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Warn("Invalid choice request", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.KingdomID == uuid.Nil {
		writeError(w, log, http.StatusBadRequest, "kingdom_id is required")
		return
	}
	if req.Choice == nil {
		writeError(w, log, http.StatusBadRequest, "choice is required")
		return
	}

	res, err := h.kingdoms.ProcessChoice(r.Context(), req.KingdomID, *req.Choice)
	if err != nil {
		writeProcessorError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, TurnResponse{
		Report:  res.Report,
		Kingdom: NewKingdomView(res.GameState),
	})
}

// decodeBody reads a JSON body into v. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
