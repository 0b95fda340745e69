package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/driftlabs/driftsync/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI is the transport to the remote document store. It is the only
// way the sync engine talks to the server; implementations must map HTTP
// failures onto the package's error taxonomy so the coordinator can
// decide between retry, requeue and park.
type ClientAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)

	// SyncDocument merges one document's changes into the remote store
	// and returns the merged authoritative document.
	SyncDocument(ctx context.Context, accessToken string, req api.SyncDocumentRequest) (*api.Document, error)

	// SyncBatch submits several documents; per-item outcomes, in order.
	SyncBatch(ctx context.Context, accessToken string, req api.BatchSyncRequest) (*api.BatchSyncResponse, error)

	// GetDocument fetches a document. Returns (nil, nil) both when the
	// document is absent and when the caller does not own it.
	GetDocument(ctx context.Context, accessToken, documentID string) (*api.Document, error)

	// ListDocuments returns the caller's documents, optionally filtered
	// by type, ordered by last sync. Ascending order serves catch-up
	// pulls; descending serves display.
	ListDocuments(ctx context.Context, accessToken, documentType string, ascending bool) ([]api.Document, error)

	// DeleteDocument tombstones a document remotely.
	DeleteDocument(ctx context.Context, accessToken, documentID string) error

	// UpsertProjection re-derives the legacy projection record for a
	// merged document.
	UpsertProjection(ctx context.Context, accessToken string, req api.ProjectionRequest) error

	// DeleteProjection removes the legacy projection record.
	DeleteProjection(ctx context.Context, accessToken, documentID string) error

	// Health probes server reachability.
	Health(ctx context.Context) error
}

// Client is the HTTP implementation of ClientAPI.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ ClientAPI = (*Client)(nil)

// NewClient creates an API client. Every request carries a bounded
// timeout so a dead connection surfaces as a transient failure instead of
// hanging a drain.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) SyncDocument(ctx context.Context, accessToken string, req api.SyncDocumentRequest) (*api.Document, error) {
	var resp api.SyncDocumentResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync", accessToken, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Document, nil
}

func (c *Client) SyncBatch(ctx context.Context, accessToken string, req api.BatchSyncRequest) (*api.BatchSyncResponse, error) {
	var resp api.BatchSyncResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync/batch", accessToken, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetDocument(ctx context.Context, accessToken, documentID string) (*api.Document, error) {
	var resp api.Document
	err := c.doRequest(ctx, http.MethodGet, "/api/v1/documents/"+url.PathEscape(documentID), accessToken, nil, &resp)
	if err != nil {
		// Absence and foreign ownership are indistinguishable at this
		// boundary: both surface as null.
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListDocuments(ctx context.Context, accessToken, documentType string, ascending bool) ([]api.Document, error) {
	params := url.Values{}
	if documentType != "" {
		params.Set("type", documentType)
	}
	if ascending {
		params.Set("order", "asc")
	}
	path := "/api/v1/documents"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var resp api.ListDocumentsResponse
	if err := c.doRequest(ctx, http.MethodGet, path, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

func (c *Client) DeleteDocument(ctx context.Context, accessToken, documentID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/v1/documents/"+url.PathEscape(documentID), accessToken, nil, nil)
}

func (c *Client) UpsertProjection(ctx context.Context, accessToken string, req api.ProjectionRequest) error {
	return c.doRequest(ctx, http.MethodPut, "/api/v1/projections/"+url.PathEscape(req.DocumentID), accessToken, req, nil)
}

func (c *Client) DeleteProjection(ctx context.Context, accessToken, documentID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/v1/projections/"+url.PathEscape(documentID), accessToken, nil, nil)
}

func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

// doRequest performs one HTTP exchange and maps the outcome onto the
// error taxonomy.
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result any) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: all retryable.
		return &TransientError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransientError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapStatusError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// mapStatusError converts a non-2xx response into a taxonomy error.
func mapStatusError(statusCode int, body []byte) error {
	var errResp api.ErrorResponse
	_ = json.Unmarshal(body, &errResp)

	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrAccessDenied
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		return ErrMergeFailed
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return &TransientError{Err: fmt.Errorf("server busy (%d): %s", statusCode, errResp.Message)}
	}
	if statusCode >= 500 {
		return &TransientError{Err: fmt.Errorf("server error (%d): %s", statusCode, errResp.Message)}
	}
	if errResp.Message != "" {
		return fmt.Errorf("request failed (%d): %s", statusCode, errResp.Message)
	}
	return fmt.Errorf("request failed (%d)", statusCode)
}
