package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/internal/server/storage"
	"github.com/driftlabs/driftsync/internal/validation"
	"github.com/driftlabs/driftsync/pkg/api"
)

// ProjectionsHandler maintains the legacy lookup records. Only the sync
// coordinator calls these endpoints; the projection is derived state and
// is never edited directly.
type ProjectionsHandler struct {
	logger      *slog.Logger
	documents   storage.DocumentStorage
	projections storage.ProjectionStorage
}

// NewProjectionsHandler creates a new projections handler
func NewProjectionsHandler(logger *slog.Logger, documents storage.DocumentStorage, projections storage.ProjectionStorage) *ProjectionsHandler {
	return &ProjectionsHandler{
		logger:      logger,
		documents:   documents,
		projections: projections,
	}
}

// HandlePut handles PUT /api/v1/projections/{id}
func (h *ProjectionsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "unauthorized")
		return
	}

	id := r.PathValue("id")

	var req api.ProjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}
	req.DocumentID = id

	if err := validation.ValidateTitle(req.Metadata.Title); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
		return
	}

	// The projection must derive from a document the caller owns.
	doc, err := h.documents.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) || errors.Is(err, storage.ErrDocumentDeleted) {
			writeError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "document not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load document", "document_id", id, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}
	if doc.OwnerID != userID {
		writeError(h.logger, w, http.StatusNotFound, api.CodeNotFound, "document not found")
		return
	}

	p := &models.Projection{
		DocumentID:   id,
		DocumentType: string(doc.Type),
		OwnerID:      doc.OwnerID,
		Title:        req.Metadata.Title,
		Status:       req.Metadata.Status,
		Tags:         req.Metadata.Tags,
		UpdatedAt:    time.Now(),
	}
	if err := h.projections.UpsertProjection(ctx, p); err != nil {
		h.logger.ErrorContext(ctx, "failed to upsert projection", "document_id", id, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	h.logger.DebugContext(ctx, "projection updated", "document_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /api/v1/projections/{id}. Idempotent.
// Ownership comes from the projection row itself: the coordinator calls
// this after the document is already tombstoned.
func (h *ProjectionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "unauthorized")
		return
	}

	id := r.PathValue("id")
	proj, err := h.projections.GetProjection(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProjectionNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load projection", "document_id", id, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}
	if proj.OwnerID != userID {
		// A foreign id answers exactly like a missing one.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.projections.DeleteProjection(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete projection", "document_id", id, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
