package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/auth"
	"github.com/canonry/fact-engine/pkg/services"
)

// MatchFieldsRequest is the body for an autofill match request.
type MatchFieldsRequest struct {
	FieldNames []string `json:"field_names"`
}

// AutofillHandler resolves external form field names to stored facts.
type AutofillHandler struct {
	autofillService services.AutofillService
	logger          *zap.Logger
}

// NewAutofillHandler creates a new AutofillHandler.
func NewAutofillHandler(autofillService services.AutofillService, logger *zap.Logger) *AutofillHandler {
	return &AutofillHandler{autofillService: autofillService, logger: logger}
}

// RegisterRoutes registers the autofill handler's routes on the given mux.
func (h *AutofillHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/v1/autofill/match", authMiddleware.ResolveUser(h.Match))
}

// Match handles POST /api/v1/autofill/match
// Maps each requested field name to a canonical fact key and current value.
func (h *AutofillHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if len(req.FieldNames) == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "field_names is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	matches, err := h.autofillService.MatchFields(r.Context(), req.FieldNames)
	if err != nil {
		h.logger.Error("Failed to match fields", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to match fields"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: matches}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
