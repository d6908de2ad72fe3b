package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/staffsense/staffsense-engine/pkg/config"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Service        string `json:"service"`
	GoVersion      string `json:"go_version"`
	Hostname       string `json:"hostname"`
	Environment    string `json:"environment"`
	IndexDocuments int    `json:"index_documents"`
}

// DocumentCounter reports how many documents the similarity index holds.
type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	index  DocumentCounter
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. index may be nil when the
// similarity index is not yet open.
func NewHealthHandler(cfg *config.Config, index DocumentCounter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, index: index, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ping", h.Ping)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests.
// Returns detailed service information including version, environment, and
// the current similarity index size.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	docs := 0
	if h.index != nil {
		docs, err = h.index.Count(r.Context())
		if err != nil {
			h.logger.Warn("Failed to count index documents", zap.Error(err))
			docs = -1
		}
	}

	response := PingResponse{
		Status:         "ok",
		Version:        h.cfg.Version,
		Service:        "staffsense-engine",
		GoVersion:      runtime.Version(),
		Hostname:       hostname,
		Environment:    h.cfg.Env,
		IndexDocuments: docs,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
