// Package handlers exposes the HTTP surface: question answering, manual
// sync, and health.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/staffsense/staffsense-engine/pkg/apperrors"
	"github.com/staffsense/staffsense-engine/pkg/services"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the answer to one question. SQL carries the generated
// candidate on both paths; Rows is present only on the structured path.
type QueryResponse struct {
	Question     string           `json:"question"`
	Path         string           `json:"path"`
	SQL          string           `json:"sql,omitempty"`
	RejectReason string           `json:"reject_reason,omitempty"`
	Rows         []map[string]any `json:"rows,omitempty"`
	Summary      string           `json:"summary"`
}

// QuestionAnswerer routes one question to an answer.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (*services.Answer, error)
}

// QueryHandler handles natural-language question endpoints.
type QueryHandler struct {
	service QuestionAnswerer
	logger  *zap.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(service QuestionAnswerer, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{service: service, logger: logger}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /query", h.Query)
}

// Query handles POST /query requests.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to encode error response", zap.Error(err))
		}
		return
	}
	if req.Question == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_question", "Question is required"); err != nil {
			h.logger.Error("Failed to encode error response", zap.Error(err))
		}
		return
	}

	answer, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		h.logger.Error("Failed to answer question", zap.String("question", req.Question), zap.Error(err))
		switch {
		case errors.Is(err, apperrors.ErrEmptyCandidate):
			err = ErrorResponse(w, http.StatusBadRequest, "missing_question", "Question is required")
		case errors.Is(err, apperrors.ErrExecution):
			err = ErrorResponse(w, http.StatusBadGateway, "execution_failed", "Validated query failed to execute")
		default:
			err = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to answer question")
		}
		if err != nil {
			h.logger.Error("Failed to encode error response", zap.Error(err))
		}
		return
	}

	resp := QueryResponse{
		Question:     answer.Question,
		Path:         answer.Path,
		SQL:          answer.SQL,
		RejectReason: answer.RejectReason,
		Rows:         answer.Rows,
		Summary:      answer.Summary,
	}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode query response", zap.Error(err))
	}
}
