package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/driftlabs/driftsync/internal/crdt"
	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/internal/server/storage"
	"github.com/driftlabs/driftsync/internal/validation"
	"github.com/driftlabs/driftsync/pkg/api"
)

// Notifier wakes a user's other replicas after a merge. Implementations
// must not block.
type Notifier interface {
	Notify(userID string)
}

// SyncHandler merges submitted changes into the authoritative store.
type SyncHandler struct {
	logger    *slog.Logger
	documents storage.DocumentStorage
	engine    crdt.Engine
	notifier  Notifier
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, documents storage.DocumentStorage, engine crdt.Engine, notifier Notifier) *SyncHandler {
	return &SyncHandler{
		logger:    logger,
		documents: documents,
		engine:    engine,
		notifier:  notifier,
	}
}

// HandleSync handles POST /api/v1/sync: one document's changes in, the
// merged authoritative document out. Re-submitting the same changes is
// idempotent; the merge converges to the same state.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "unauthorized")
		return
	}

	var req api.SyncDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	doc, code, status, msg := h.syncOne(ctx, userID, req)
	if code != "" {
		writeError(h.logger, w, status, code, msg)
		return
	}

	h.notifier.Notify(userID)
	writeJSON(h.logger, w, http.StatusOK, api.SyncDocumentResponse{Document: *doc})
}

// HandleBatch handles POST /api/v1/sync/batch. Items are merged
// independently; one item's failure never fails the batch.
func (h *SyncHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		writeError(h.logger, w, http.StatusUnauthorized, api.CodeUnauthenticated, "unauthorized")
		return
	}

	var req api.BatchSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	results := make([]api.BatchItemResult, 0, len(req.Items))
	merged := 0
	for _, item := range req.Items {
		doc, code, _, msg := h.syncOne(ctx, userID, item)
		if code != "" {
			results = append(results, api.BatchItemResult{
				DocumentID: item.ID,
				Code:       code,
				Error:      msg,
			})
			continue
		}
		merged++
		results = append(results, api.BatchItemResult{
			DocumentID: item.ID,
			Document:   doc,
			Success:    true,
		})
	}

	if merged > 0 {
		h.notifier.Notify(userID)
	}

	h.logger.InfoContext(ctx, "batch sync completed",
		"user_id", userID, "items", len(req.Items), "merged", merged)

	writeJSON(h.logger, w, http.StatusOK, api.BatchSyncResponse{Results: results})
}

// syncOne validates, merges and persists a single submitted document.
// On failure it returns an error code, HTTP status and message.
func (h *SyncHandler) syncOne(ctx context.Context, userID string, req api.SyncDocumentRequest) (*api.Document, string, int, string) {
	if err := validation.ValidateDocumentID(req.ID); err != nil {
		return nil, api.CodeInvalidRequest, http.StatusBadRequest, err.Error()
	}
	if err := validation.ValidateDocumentType(req.DocumentType); err != nil {
		return nil, api.CodeInvalidRequest, http.StatusBadRequest, err.Error()
	}

	var base []byte
	existing, err := h.documents.GetDocument(ctx, req.ID)
	switch {
	case err == nil:
		if existing.OwnerID != userID {
			return nil, api.CodeAccessDenied, http.StatusForbidden, "access denied"
		}
		base = existing.State
	case errors.Is(err, storage.ErrDocumentNotFound):
	case errors.Is(err, storage.ErrDocumentDeleted):
		// The document was tombstoned. A replica replaying changes it
		// queued before the delete must not resurrect it.
		return nil, api.CodeNotFound, http.StatusNotFound, "document deleted"
	default:
		h.logger.ErrorContext(ctx, "failed to load document", "document_id", req.ID, "error", err)
		return nil, api.CodeInternal, http.StatusInternalServerError, "internal server error"
	}

	merged, err := h.engine.Merge(ctx, base, req.Changes)
	if err != nil {
		if errors.Is(err, crdt.ErrMergeFailed) {
			h.logger.WarnContext(ctx, "merge rejected", "document_id", req.ID, "error", err)
			return nil, api.CodeMergeFailed, http.StatusUnprocessableEntity, "changes could not be merged"
		}
		h.logger.ErrorContext(ctx, "merge failed", "document_id", req.ID, "error", err)
		return nil, api.CodeInternal, http.StatusInternalServerError, "internal server error"
	}

	heads, err := h.engine.Heads(ctx, merged)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to derive heads", "document_id", req.ID, "error", err)
		return nil, api.CodeInternal, http.StatusInternalServerError, "internal server error"
	}

	doc := &models.Document{
		ID:       req.ID,
		Type:     models.DocumentType(req.DocumentType),
		OwnerID:  userID,
		State:    merged,
		Heads:    heads,
		LastSync: time.Now(),
	}
	if err := h.documents.SaveDocument(ctx, doc); err != nil {
		h.logger.ErrorContext(ctx, "failed to save document", "document_id", req.ID, "error", err)
		return nil, api.CodeInternal, http.StatusInternalServerError, "internal server error"
	}

	meta, err := h.engine.Metadata(ctx, merged)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to extract metadata", "document_id", req.ID, "error", err)
		meta = &models.Metadata{}
	}

	h.logger.InfoContext(ctx, "document merged", "document_id", req.ID, "user_id", userID)

	return &api.Document{
		ID:           doc.ID,
		DocumentType: string(doc.Type),
		OwnerID:      doc.OwnerID,
		State:        doc.State,
		Heads:        doc.Heads,
		LastSync:     doc.LastSync,
		Metadata:     &api.Metadata{Title: meta.Title, Tags: meta.Tags, Status: meta.Status},
	}, "", 0, ""
}
