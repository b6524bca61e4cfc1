package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/linkedin-connector/internal/delivery/http/response"
	"github.com/user/linkedin-connector/internal/usecase"
)

// ProgressSource exposes the live state of a run.
type ProgressSource interface {
	Snapshot() usecase.ProgressSnapshot
}

type Handler struct {
	progress ProgressSource
}

func NewHandler(progress ProgressSource) *Handler {
	return &Handler{
		progress: progress,
	}
}

func (h *Handler) HandleGetRunStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.progress.Snapshot()

	resp := response.RunStatusResponse{
		RunID:            snap.RunID,
		State:            snap.State,
		Page:             snap.Page,
		ProfilesObserved: snap.ProfilesObserved,
		ActionsCompleted: snap.ActionsCompleted,
		Failures:         snap.Failures,
		Termination:      snap.Termination,
		StartedAt:        snap.StartedAt,
		UpdatedAt:        snap.UpdatedAt,
		Done:             snap.State == usecase.StateTerminated,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSONError(w, "Not found", http.StatusNotFound)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
