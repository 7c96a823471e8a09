package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/kingdom-engine/internal/worker"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusFor maps a processor error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, worker.ErrNoKingdom):
		return http.StatusNotFound
	case errors.Is(err, worker.ErrInvalidChoice):
		return http.StatusBadRequest
	case errors.Is(err, worker.ErrStaleKingdom),
		errors.Is(err, worker.ErrNoEvent),
		errors.Is(err, state.ErrGameEnded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeProcessorError logs and writes err. Internal failures are not
// described to the client.
func writeProcessorError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Kingdom request failed", "error", err)
		writeError(w, logger, status, "Internal server error")
		return
	}
	logger.Debug("Kingdom request rejected", "error", err, "status", status)
	writeError(w, logger, status, err.Error())
}
