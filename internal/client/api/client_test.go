package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftlabs/driftsync/pkg/api"
)

func TestClient_SyncDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sync", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var req api.SyncDocumentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "doc-1", req.ID)

		resp := api.SyncDocumentResponse{Document: api.Document{
			ID:           req.ID,
			DocumentType: req.DocumentType,
			OwnerID:      "user-1",
			State:        []byte("merged"),
			Heads:        []string{"h1", "h2"},
			LastSync:     time.Now(),
		}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	doc, err := client.SyncDocument(context.Background(), "token-1", api.SyncDocumentRequest{
		ID:           "doc-1",
		DocumentType: "note",
		Changes:      []byte("changes"),
		Heads:        []string{"h1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, []byte("merged"), doc.State)
	assert.Equal(t, []string{"h1", "h2"}, doc.Heads)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		wantErr    error
		name       string
		statusCode int
		transient  bool
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, wantErr: ErrUnauthenticated},
		{name: "forbidden", statusCode: http.StatusForbidden, wantErr: ErrAccessDenied},
		{name: "not found", statusCode: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "merge rejected", statusCode: http.StatusUnprocessableEntity, wantErr: ErrMergeFailed},
		{name: "server error", statusCode: http.StatusInternalServerError, transient: true},
		{name: "bad gateway", statusCode: http.StatusBadGateway, transient: true},
		{name: "too many requests", statusCode: http.StatusTooManyRequests, transient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_ = json.NewEncoder(w).Encode(api.ErrorResponse{Code: "x", Message: "boom"})
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second)
			_, err := client.SyncDocument(context.Background(), "t", api.SyncDocumentRequest{ID: "doc-1"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.transient, IsTransient(err))
		})
	}
}

func TestClient_GetDocument_NotFoundIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	doc, err := client.GetDocument(context.Background(), "t", "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestClient_ConnectionRefusedIsTransient(t *testing.T) {
	// Grab a port that nothing is listening on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := NewClient(addr, time.Second)
	err := client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestClient_SyncBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sync/batch", r.URL.Path)
		resp := api.BatchSyncResponse{Results: []api.BatchItemResult{
			{DocumentID: "doc-1", Success: true},
			{DocumentID: "doc-2", Success: false, Code: api.CodeAccessDenied, Error: "access denied"},
			{DocumentID: "doc-3", Success: true},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	resp, err := client.SyncBatch(context.Background(), "t", api.BatchSyncRequest{Items: []api.SyncDocumentRequest{
		{ID: "doc-1"}, {ID: "doc-2"}, {ID: "doc-3"},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, api.CodeAccessDenied, resp.Results[1].Code)
	assert.True(t, resp.Results[2].Success)
}

func TestClient_ListDocuments_QueryParams(t *testing.T) {
	var gotType, gotOrder string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.URL.Query().Get("type")
		gotOrder = r.URL.Query().Get("order")
		require.NoError(t, json.NewEncoder(w).Encode(api.ListDocumentsResponse{
			Documents: []api.Document{{ID: "doc-1", DocumentType: "note"}},
		}))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	docs, err := client.ListDocuments(context.Background(), "t", "note", false)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, "note", gotType)
	assert.Empty(t, gotOrder)

	_, err = client.ListDocuments(context.Background(), "t", "", true)
	require.NoError(t, err)
	assert.Empty(t, gotType)
	assert.Equal(t, "asc", gotOrder)
}
