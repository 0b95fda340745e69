package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftlabs/driftsync/internal/crdt"
	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/internal/server/storage"
	"github.com/driftlabs/driftsync/internal/server/storage/sqlite"
	"github.com/driftlabs/driftsync/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// concatEngine is a deterministic merge: append the change blob to the
// base. Good enough to observe merge inputs and idempotency handling.
func concatEngine() *crdt.EngineMock {
	return &crdt.EngineMock{
		MergeFunc: func(ctx context.Context, base, changes []byte) ([]byte, error) {
			if len(base) == 0 {
				return changes, nil
			}
			if bytes.HasSuffix(base, changes) {
				return base, nil
			}
			return append(append([]byte{}, base...), changes...), nil
		},
		HeadsFunc: func(ctx context.Context, state []byte) ([]string, error) {
			return []string{"head-1"}, nil
		},
		MetadataFunc: func(ctx context.Context, state []byte) (*models.Metadata, error) {
			return &models.Metadata{Title: "Draft"}, nil
		},
	}
}

type countingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (n *countingNotifier) Notify(userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
}

func newTestSyncHandler(t *testing.T, engine crdt.Engine) (*SyncHandler, *sqlite.Storage, *countingNotifier) {
	t.Helper()
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	require.NoError(t, store.CreateUser(context.Background(), &models.User{
		ID: "user-1", Username: "alice", PasswordHash: "h", CreatedAt: time.Now(),
	}))
	require.NoError(t, store.CreateUser(context.Background(), &models.User{
		ID: "user-2", Username: "bob", PasswordHash: "h", CreatedAt: time.Now(),
	}))

	notifier := &countingNotifier{}
	return NewSyncHandler(testLogger(), store, engine, notifier), store, notifier
}

func authedRequest(method, target, userID string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	ctx = context.WithValue(ctx, UsernameKey, "alice")
	return req.WithContext(ctx)
}

func TestSyncHandler_MergeNewDocument(t *testing.T) {
	h, store, notifier := newTestSyncHandler(t, concatEngine())
	docID := uuid.New().String()

	rec := httptest.NewRecorder()
	h.HandleSync(rec, authedRequest(http.MethodPost, "/api/v1/sync", "user-1", api.SyncDocumentRequest{
		ID:           docID,
		DocumentType: "note",
		Changes:      []byte("v1"),
		Heads:        []string{"local-head"},
	}))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.SyncDocumentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, docID, resp.Document.ID)
	assert.Equal(t, []byte("v1"), resp.Document.State)
	assert.Equal(t, "user-1", resp.Document.OwnerID)
	assert.Equal(t, "Draft", resp.Document.Metadata.Title)

	saved, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), saved.State)

	assert.Equal(t, []string{"user-1"}, notifier.users)
}

func TestSyncHandler_ResubmitSameChangesConverges(t *testing.T) {
	h, store, _ := newTestSyncHandler(t, concatEngine())
	docID := uuid.New().String()

	req := api.SyncDocumentRequest{ID: docID, DocumentType: "note", Changes: []byte("v1")}
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.HandleSync(rec, authedRequest(http.MethodPost, "/api/v1/sync", "user-1", req))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	saved, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), saved.State)
}

func TestSyncHandler_ForeignDocumentIsDenied(t *testing.T) {
	h, store, notifier := newTestSyncHandler(t, concatEngine())
	docID := uuid.New().String()

	require.NoError(t, store.SaveDocument(context.Background(), &models.Document{
		ID: docID, Type: models.TypeNote, OwnerID: "user-2", State: []byte("theirs"), LastSync: time.Now(),
	}))

	rec := httptest.NewRecorder()
	h.HandleSync(rec, authedRequest(http.MethodPost, "/api/v1/sync", "user-1", api.SyncDocumentRequest{
		ID: docID, DocumentType: "note", Changes: []byte("mine"),
	}))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, api.CodeAccessDenied, errResp.Code)

	// The document is untouched and nobody got woken.
	saved, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, []byte("theirs"), saved.State)
	assert.Empty(t, notifier.users)
}

func TestSyncHandler_ReplayAfterDeleteStaysDeleted(t *testing.T) {
	// A replica that queued changes before it learned about a delete must
	// not re-create the document by replaying them.
	h, store, notifier := newTestSyncHandler(t, concatEngine())
	docID := uuid.New().String()

	req := api.SyncDocumentRequest{
		ID:           docID,
		DocumentType: "note",
		Changes:      []byte("v1"),
		Heads:        []string{"local-head"},
	}

	rec := httptest.NewRecorder()
	h.HandleSync(rec, authedRequest(http.MethodPost, "/api/v1/sync", "user-1", req))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, store.DeleteDocument(context.Background(), docID))
	notifier.users = nil

	rec = httptest.NewRecorder()
	h.HandleSync(rec, authedRequest(http.MethodPost, "/api/v1/sync", "user-1", req))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, api.CodeNotFound, errResp.Code)

	_, err := store.GetDocument(context.Background(), docID)
	assert.ErrorIs(t, err, storage.ErrDocumentDeleted)
	assert.Empty(t, notifier.users)
}

func TestSyncHandler_InvalidRequest(t *testing.T) {
	h, _, _ := newTestSyncHandler(t, concatEngine())

	tests := []struct {
		name string
		req  api.SyncDocumentRequest
	}{
		{name: "bad id", req: api.SyncDocumentRequest{ID: "not-a-uuid", DocumentType: "note"}},
		{name: "bad type", req: api.SyncDocumentRequest{ID: uuid.New().String(), DocumentType: "spreadsheet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleSync(rec, authedRequest(http.MethodPost, "/api/v1/sync", "user-1", tt.req))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSyncHandler_UnmergeableChanges(t *testing.T) {
	engine := concatEngine()
	engine.MergeFunc = func(ctx context.Context, base, changes []byte) ([]byte, error) {
		return nil, crdt.ErrMergeFailed
	}
	h, _, _ := newTestSyncHandler(t, engine)

	rec := httptest.NewRecorder()
	h.HandleSync(rec, authedRequest(http.MethodPost, "/api/v1/sync", "user-1", api.SyncDocumentRequest{
		ID: uuid.New().String(), DocumentType: "note", Changes: []byte("garbage"),
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, api.CodeMergeFailed, errResp.Code)
}

func TestSyncHandler_BatchPartialFailure(t *testing.T) {
	h, store, notifier := newTestSyncHandler(t, concatEngine())

	okID := uuid.New().String()
	foreignID := uuid.New().String()
	require.NoError(t, store.SaveDocument(context.Background(), &models.Document{
		ID: foreignID, Type: models.TypeNote, OwnerID: "user-2", State: []byte("theirs"), LastSync: time.Now(),
	}))

	rec := httptest.NewRecorder()
	h.HandleBatch(rec, authedRequest(http.MethodPost, "/api/v1/sync/batch", "user-1", api.BatchSyncRequest{
		Items: []api.SyncDocumentRequest{
			{ID: okID, DocumentType: "note", Changes: []byte("a")},
			{ID: foreignID, DocumentType: "note", Changes: []byte("b")},
			{ID: "not-a-uuid", DocumentType: "note", Changes: []byte("c")},
		},
	}))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.BatchSyncResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 3)

	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, okID, resp.Results[0].DocumentID)

	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, api.CodeAccessDenied, resp.Results[1].Code)

	assert.False(t, resp.Results[2].Success)
	assert.Equal(t, api.CodeInvalidRequest, resp.Results[2].Code)

	// One wake for the batch, not one per item.
	assert.Equal(t, []string{"user-1"}, notifier.users)
}

func TestSyncHandler_MissingPrincipal(t *testing.T) {
	h, _, _ := newTestSyncHandler(t, concatEngine())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	h.HandleSync(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

var _ storage.DocumentStorage = (*sqlite.Storage)(nil)
