package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/canonry/fact-engine/pkg/auth"
	"github.com/canonry/fact-engine/pkg/services"
)

// DocumentsHandler handles document upload and extraction HTTP requests.
type DocumentsHandler struct {
	docService        services.DocumentService
	extractionService services.ExtractionService
	maxUploadBytes    int64
	logger            *zap.Logger
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(
	docService services.DocumentService,
	extractionService services.ExtractionService,
	maxUploadBytes int64,
	logger *zap.Logger,
) *DocumentsHandler {
	return &DocumentsHandler{
		docService:        docService,
		extractionService: extractionService,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger,
	}
}

// RegisterRoutes registers the documents handler's routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/v1/documents", authMiddleware.ResolveUser(h.Upload))
	mux.HandleFunc("GET /api/v1/documents", authMiddleware.ResolveUser(h.List))
	mux.HandleFunc("GET /api/v1/documents/{id}", authMiddleware.ResolveUser(h.Get))
	mux.HandleFunc("GET /api/v1/documents/{id}/fields", authMiddleware.ResolveUser(h.Fields))
	mux.HandleFunc("DELETE /api/v1/documents/{id}", authMiddleware.ResolveUser(h.Delete))
	mux.HandleFunc("POST /api/v1/documents/{id}/extract", authMiddleware.ResolveUser(h.Extract))
}

// Upload handles POST /api/v1/documents
// Accepts a multipart form with a "file" part plus optional description and
// tags fields.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "Missing or oversized file upload"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	defer file.Close()

	doc, err := h.docService.Upload(
		r.Context(),
		header.Filename,
		header.Header.Get("Content-Type"),
		r.FormValue("description"),
		r.FormValue("tags"),
		header.Size,
		file,
	)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to upload document",
			zap.String("filename", header.Filename),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to upload document"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: doc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/v1/documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list documents"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: docs}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/v1/documents/{id}
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	doc, err := h.docService.Get(r.Context(), documentID)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to get document",
			zap.String("document_id", documentID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get document"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: doc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Fields handles GET /api/v1/documents/{id}/fields
// Returns the raw extracted fields recorded for the document.
func (h *DocumentsHandler) Fields(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	fields, err := h.docService.ListFields(r.Context(), documentID)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to list extracted fields",
			zap.String("document_id", documentID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list extracted fields"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: fields}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/v1/documents/{id}
// Facts sourced from the document are kept; only the document and its file
// are removed.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.docService.Delete(r.Context(), documentID); err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to delete document",
			zap.String("document_id", documentID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to delete document"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Document deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Extract handles POST /api/v1/documents/{id}/extract
// Runs the extraction pipeline synchronously and returns the fields found
// plus the facts that changed.
func (h *DocumentsHandler) Extract(w http.ResponseWriter, r *http.Request) {
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.extractionService.ExtractDocument(r.Context(), documentID)
	if err != nil {
		if serviceError(w, err) {
			return
		}
		h.logger.Error("Failed to extract document",
			zap.String("document_id", documentID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to extract document"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
