package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/staffsense/staffsense-engine/pkg/apperrors"
	syncpkg "github.com/staffsense/staffsense-engine/pkg/sync"
)

// SyncResponse reports the outcome of one synchronization pass.
type SyncResponse struct {
	Outcome   string  `json:"outcome"`
	Total     int     `json:"total"`
	Updated   int     `json:"updated"`
	Failed    int     `json:"failed"`
	FailedIDs []int64 `json:"failed_ids,omitempty"`
}

// Syncer runs one synchronization pass.
type Syncer interface {
	Sync(ctx context.Context) (*syncpkg.Result, error)
}

// SyncHandler handles the manual synchronization trigger.
type SyncHandler struct {
	engine Syncer
	logger *zap.Logger
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(engine Syncer, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers the sync handler's routes on the given mux.
func (h *SyncHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /sync/manual", h.Trigger)
}

// Trigger handles POST /sync/manual requests. It runs a pass inline and
// reports its counters; a pass already running on the background schedule
// yields 409.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Sync(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncInProgress) {
			if err := ErrorResponse(w, http.StatusConflict, "sync_in_progress", "A synchronization pass is already running"); err != nil {
				h.logger.Error("Failed to encode error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Manual sync failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "sync_failed", "Synchronization pass failed"); err != nil {
			h.logger.Error("Failed to encode error response", zap.Error(err))
		}
		return
	}

	resp := SyncResponse{
		Outcome:   string(result.Outcome),
		Total:     result.Total,
		Updated:   result.Updated,
		Failed:    result.Failed,
		FailedIDs: result.FailedIDs,
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode sync response", zap.Error(err))
	}
}
