package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/internal/server/storage"
	"github.com/driftlabs/driftsync/internal/validation"
	"github.com/driftlabs/driftsync/pkg/api"
)

// DocumentsHandler serves reads and deletes of authoritative documents.
type DocumentsHandler struct {
	logger      *slog.Logger
	documents   storage.DocumentStorage
	projections storage.ProjectionStorage
}

// NewDocumentsHandler creates a new documents handler
func NewDocumentsHandler(logger *slog.Logger, documents storage.DocumentStorage, projections storage.ProjectionStorage) *DocumentsHandler {
	return &DocumentsHandler{
		logger:      logger,
		documents:   documents,
		projections: projections,
	}
}

// HandleGet handles GET /api/v1/documents/{id}.
// A missing document and another owner's document get the same 404, so
// the endpoint never confirms foreign document IDs.
func (h *DocumentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "unauthorized")
		return
	}

	id := r.PathValue("id")
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

	writeJSON(h.logger, w, http.StatusOK, documentToWire(doc))
}

// HandleList handles GET /api/v1/documents?type=&order=. The default
// descending order suits status display; order=asc serves catch-up
// pulls that replay peers' merges oldest first.
func (h *DocumentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "unauthorized")
		return
	}

	docType := r.URL.Query().Get("type")
	if docType != "" {
		if err := validation.ValidateDocumentType(docType); err != nil {
			writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, err.Error())
			return
		}
	}

	var ascending bool
	switch order := r.URL.Query().Get("order"); order {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "order must be asc or desc")
		return
	}

	docs, err := h.documents.ListDocuments(ctx, userID, docType, ascending)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list documents", "user_id", userID, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	out := make([]api.Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *documentToWire(doc))
	}
	writeJSON(h.logger, w, http.StatusOK, api.ListDocumentsResponse{Documents: out})
}

// HandleDelete handles DELETE /api/v1/documents/{id}. The projection is
// removed first so a crash between the two deletes never leaves an
// orphaned legacy record.
func (h *DocumentsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "unauthorized")
		return
	}

	id := r.PathValue("id")
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

	if err := h.projections.DeleteProjection(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete projection", "document_id", id, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}
	if err := h.documents.DeleteDocument(ctx, id); err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		h.logger.ErrorContext(ctx, "failed to delete document", "document_id", id, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "document deleted", "document_id", id, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

func documentToWire(doc *models.Document) *api.Document {
	out := &api.Document{
		ID:           doc.ID,
		DocumentType: string(doc.Type),
		OwnerID:      doc.OwnerID,
		State:        doc.State,
		Heads:        doc.Heads,
		LastSync:     doc.LastSync,
	}
	if doc.Metadata != nil {
		out.Metadata = &api.Metadata{
			Title:  doc.Metadata.Title,
			Tags:   doc.Metadata.Tags,
			Status: doc.Metadata.Status,
		}
	}
	return out
}
