package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/auth"
	"github.com/canonry/fact-engine/pkg/models"
	"github.com/canonry/fact-engine/pkg/services"
)

// CreateFactRequest is the body for manually entering a fact.
type CreateFactRequest struct {
	FactKey  string `json:"fact_key"`
	Value    string `json:"value"`
	Category string `json:"category,omitempty"`
}

// UpdateFactRequest is the body for a user edit of an existing fact.
type UpdateFactRequest struct {
	Value  string `json:"value"`
	Reason string `json:"reason,omitempty"`
}

// FactsHandler handles fact-related HTTP requests.
type FactsHandler struct {
	factStore services.FactStore
	logger    *zap.Logger
}

// NewFactsHandler creates a new FactsHandler.
func NewFactsHandler(factStore services.FactStore, logger *zap.Logger) *FactsHandler {
	return &FactsHandler{factStore: factStore, logger: logger}
}

// RegisterRoutes registers the facts handler's routes on the given mux.
func (h *FactsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/v1/facts", authMiddleware.ResolveUser(h.List))
	mux.HandleFunc("GET /api/v1/facts/missing", authMiddleware.ResolveUser(h.Missing))
	mux.HandleFunc("GET /api/v1/facts/{key}", authMiddleware.ResolveUser(h.Get))
	mux.HandleFunc("GET /api/v1/facts/{key}/history", authMiddleware.ResolveUser(h.History))
	mux.HandleFunc("POST /api/v1/facts", authMiddleware.ResolveUser(h.Create))
	mux.HandleFunc("PUT /api/v1/facts/{key}", authMiddleware.ResolveUser(h.Update))
}

// List handles GET /api/v1/facts
// Returns all active facts, optionally filtered by ?category=.
func (h *FactsHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !models.FactCategory(category).IsValid() {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_category", "Unknown fact category"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	facts, err := h.factStore.ListFacts(r.Context(), category)
	if err != nil {
		h.logger.Error("Failed to list facts", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list facts"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: facts}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Missing handles GET /api/v1/facts/missing
// Returns the canonical field definitions that have no active fact yet.
func (h *FactsHandler) Missing(w http.ResponseWriter, r *http.Request) {
	missing, err := h.factStore.MissingFacts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list missing facts", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list missing facts"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: missing}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/v1/facts/{key}
func (h *FactsHandler) Get(w http.ResponseWriter, r *http.Request) {
	factKey := r.PathValue("key")

	fact, err := h.factStore.GetFact(r.Context(), factKey)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to get fact",
			zap.String("fact_key", factKey),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get fact"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: fact}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// History handles GET /api/v1/facts/{key}/history
// Returns the fact's ledger entries, newest first.
func (h *FactsHandler) History(w http.ResponseWriter, r *http.Request) {
	factKey := r.PathValue("key")

	fact, err := h.factStore.GetFact(r.Context(), factKey)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to get fact",
			zap.String("fact_key", factKey),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get fact"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	history, err := h.factStore.GetHistory(r.Context(), fact.ID)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to get fact history",
			zap.String("fact_key", factKey),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get fact history"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: history}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/v1/facts
// Manually enters a fact. Returns 409 if an active fact already exists for
// the key.
func (h *FactsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	userID := auth.UserIDFromContext(r.Context())

	fact, err := h.factStore.CreateFact(r.Context(), req.FactKey, req.Value, req.Category, userID)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to create fact",
			zap.String("fact_key", req.FactKey),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to create fact"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: fact}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/v1/facts/{key}
// Applies a user edit. Returns 404 when no active fact exists for the key.
func (h *FactsHandler) Update(w http.ResponseWriter, r *http.Request) {
	factKey := r.PathValue("key")

	var req UpdateFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	userID := auth.UserIDFromContext(r.Context())

	fact, err := h.factStore.ApplyUserEdit(r.Context(), factKey, req.Value, userID, req.Reason)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to update fact",
			zap.String("fact_key", factKey),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to update fact"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: fact}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
