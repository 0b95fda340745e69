package sync

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/driftlabs/driftsync/internal/client/api"
	"github.com/driftlabs/driftsync/internal/client/storage"
	"github.com/driftlabs/driftsync/internal/client/storage/boltdb"
	"github.com/driftlabs/driftsync/internal/crdt"
	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeEngine is a deterministic stand-in for the CRDT engine: merge is
// "last blob wins" which is commutative enough for coordinator tests.
func fakeEngine() *crdt.EngineMock {
	return &crdt.EngineMock{
		MergeFunc: func(ctx context.Context, base, changes []byte) ([]byte, error) {
			return changes, nil
		},
		HeadsFunc: func(ctx context.Context, state []byte) ([]string, error) {
			return []string{"head-" + string(state)}, nil
		},
		MetadataFunc: func(ctx context.Context, state []byte) (*models.Metadata, error) {
			return &models.Metadata{Title: "Draft"}, nil
		},
	}
}

// happyAPI acknowledges every call, echoing back the submitted changes as
// the merged state.
func happyAPI() *apiclient.ClientAPIMock {
	return &apiclient.ClientAPIMock{
		SyncDocumentFunc: func(ctx context.Context, token string, req api.SyncDocumentRequest) (*api.Document, error) {
			return &api.Document{
				ID:           req.ID,
				DocumentType: req.DocumentType,
				OwnerID:      "user-1",
				State:        req.Changes,
				Heads:        req.Heads,
				LastSync:     time.Now(),
			}, nil
		},
		DeleteDocumentFunc: func(ctx context.Context, token, id string) error {
			return nil
		},
		UpsertProjectionFunc: func(ctx context.Context, token string, req api.ProjectionRequest) error {
			return nil
		},
		DeleteProjectionFunc: func(ctx context.Context, token, id string) error {
			return nil
		},
		ListDocumentsFunc: func(ctx context.Context, token, docType string, ascending bool) ([]api.Document, error) {
			return nil, nil
		},
	}
}

func newTestCoordinator(t *testing.T, mockAPI *apiclient.ClientAPIMock, engine crdt.Engine) (*Coordinator, *boltdb.Storage) {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	require.NoError(t, store.SaveSession(context.Background(), &storage.Session{
		UserID:      "user-1",
		Username:    "alice",
		AccessToken: "token-1",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	cfg := DefaultConfig()
	cfg.BaseBackoff = time.Millisecond
	cfg.MaxBackoff = 10 * time.Millisecond
	cfg.CallTimeout = time.Second
	coord := NewCoordinator(mockAPI, store, store, store, store, engine, cfg, testLogger())
	return coord, store
}

func stageUpdate(t *testing.T, coord *Coordinator, docID string, payload string) {
	t.Helper()
	_, err := coord.Stage(context.Background(), docID, models.TypeNote, models.OpUpdate, []byte(payload), nil)
	require.NoError(t, err)
}

func TestDrain_NotReachable_SetsOffline(t *testing.T) {
	coord, store := newTestCoordinator(t, happyAPI(), fakeEngine())
	ctx := context.Background()

	result, err := coord.Drain(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, models.StateOffline, result.State)

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateOffline, status.ConnectionState)
}

func TestDrain_NoSession_NotAuthenticated(t *testing.T) {
	coord, store := newTestCoordinator(t, happyAPI(), fakeEngine())
	ctx := context.Background()
	require.NoError(t, store.DeleteSession(ctx))

	_, err := coord.Drain(ctx, true)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestDrain_OverlapGuard(t *testing.T) {
	coord, _ := newTestCoordinator(t, happyAPI(), fakeEngine())

	coord.draining.Store(true)
	_, err := coord.Drain(context.Background(), true)
	assert.ErrorIs(t, err, ErrDrainInProgress)
}

func TestStage_OfflineScenario(t *testing.T) {
	// Offline principal creates a note titled "Draft"; status shows the
	// pending change; after a successful drain the projection exists and
	// the state is online.
	mockAPI := happyAPI()
	coord, _ := newTestCoordinator(t, mockAPI, fakeEngine())
	ctx := context.Background()

	doc, err := coord.Stage(ctx, "note-1", models.TypeNote, models.OpCreate, []byte("n1-state"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Draft", doc.Metadata.Title)

	report, err := coord.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateOffline, report.ConnectionState)
	assert.Equal(t, 1, report.OfflineChangeCount)
	assert.Equal(t, 1, report.PendingSyncs)
	assert.True(t, report.LastFullSync.IsZero())

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, models.StateOnline, result.State)
	assert.Equal(t, 1, result.Acked)

	report, err = coord.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateOnline, report.ConnectionState)
	assert.Zero(t, report.OfflineChangeCount)
	assert.Zero(t, report.PendingSyncs)
	assert.False(t, report.LastFullSync.IsZero())

	require.Len(t, mockAPI.UpsertProjectionCalls(), 1)
	projected := mockAPI.UpsertProjectionCalls()[0].Req
	assert.Equal(t, "note-1", projected.DocumentID)
	assert.Equal(t, "Draft", projected.Metadata.Title)
}

func TestDrain_PerDocumentSequenceOrder(t *testing.T) {
	var mu sync.Mutex
	order := make(map[string][]string)

	mockAPI := happyAPI()
	mockAPI.SyncDocumentFunc = func(ctx context.Context, token string, req api.SyncDocumentRequest) (*api.Document, error) {
		mu.Lock()
		order[req.ID] = append(order[req.ID], string(req.Changes))
		mu.Unlock()
		return &api.Document{ID: req.ID, DocumentType: req.DocumentType, OwnerID: "user-1", State: req.Changes}, nil
	}

	coord, _ := newTestCoordinator(t, mockAPI, fakeEngine())
	ctx := context.Background()

	// Interleave two documents' updates.
	stageUpdate(t, coord, "doc-a", "a1")
	stageUpdate(t, coord, "doc-b", "b1")
	stageUpdate(t, coord, "doc-a", "a2")
	stageUpdate(t, coord, "doc-b", "b2")
	stageUpdate(t, coord, "doc-a", "a3")

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Acked)

	assert.Equal(t, []string{"a1", "a2", "a3"}, order["doc-a"])
	assert.Equal(t, []string{"b1", "b2"}, order["doc-b"])
}

func TestDrain_PartialFailure_NoLossNoDoubleAck(t *testing.T) {
	// Entries 1..k succeed, k+1 fails: 1..k acknowledged, k+1..n queued.
	var mu sync.Mutex
	calls := 0

	mockAPI := happyAPI()
	mockAPI.SyncDocumentFunc = func(ctx context.Context, token string, req api.SyncDocumentRequest) (*api.Document, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n >= 2 {
			return nil, &apiclient.TransientError{Err: context.DeadlineExceeded}
		}
		return &api.Document{ID: req.ID, DocumentType: req.DocumentType, OwnerID: "user-1", State: req.Changes}, nil
	}

	coord, store := newTestCoordinator(t, mockAPI, fakeEngine())
	ctx := context.Background()

	stageUpdate(t, coord, "doc-a", "a1")
	stageUpdate(t, coord, "doc-a", "a2")
	stageUpdate(t, coord, "doc-a", "a3")

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Acked)
	assert.Equal(t, 1, result.Requeued)

	remaining, err := store.Pending(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, []byte("a2"), remaining[0].Payload)
	assert.Equal(t, []byte("a3"), remaining[1].Payload)
	assert.Equal(t, 1, remaining[0].Attempts)
	assert.Zero(t, remaining[1].Attempts)
}

func TestDrain_IndependentDocumentsSurvivePeerFailure(t *testing.T) {
	mockAPI := happyAPI()
	mockAPI.SyncDocumentFunc = func(ctx context.Context, token string, req api.SyncDocumentRequest) (*api.Document, error) {
		if req.ID == "doc-bad" {
			return nil, &apiclient.TransientError{Err: context.DeadlineExceeded}
		}
		return &api.Document{ID: req.ID, DocumentType: req.DocumentType, OwnerID: "user-1", State: req.Changes}, nil
	}

	coord, _ := newTestCoordinator(t, mockAPI, fakeEngine())
	ctx := context.Background()

	stageUpdate(t, coord, "doc-bad", "x1")
	stageUpdate(t, coord, "doc-good", "g1")

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Acked)
	assert.Equal(t, 1, result.Requeued)
	assert.Equal(t, models.StateOnline, result.State)
}

func TestDrain_AccessDeniedParksEntry(t *testing.T) {
	mockAPI := happyAPI()
	mockAPI.SyncDocumentFunc = func(ctx context.Context, token string, req api.SyncDocumentRequest) (*api.Document, error) {
		return nil, apiclient.ErrAccessDenied
	}

	coord, store := newTestCoordinator(t, mockAPI, fakeEngine())
	ctx := context.Background()

	stageUpdate(t, coord, "doc-a", "a1")

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Parked)
	assert.Equal(t, models.StateError, result.State)

	dead, err := store.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "doc-a", dead[0].DocumentID)

	pending, err := store.Pending(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDrain_ExhaustedRetryBudgetParks(t *testing.T) {
	mockAPI := happyAPI()
	mockAPI.SyncDocumentFunc = func(ctx context.Context, token string, req api.SyncDocumentRequest) (*api.Document, error) {
		return nil, &apiclient.TransientError{Err: context.DeadlineExceeded}
	}

	coord, store := newTestCoordinator(t, mockAPI, fakeEngine())
	coord.cfg.MaxAttempts = 2
	ctx := context.Background()

	stageUpdate(t, coord, "doc-a", "a1")

	// First drain requeues; second exhausts the budget and parks.
	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Requeued)

	time.Sleep(5 * time.Millisecond)
	result, err = coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Parked)
	assert.Equal(t, models.StateError, result.State)

	dead, err := store.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
}

func TestDrain_CancelledMidFlight_Requeues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	mockAPI := happyAPI()
	mockAPI.SyncDocumentFunc = func(callCtx context.Context, token string, req api.SyncDocumentRequest) (*api.Document, error) {
		cancel()
		<-callCtx.Done()
		return nil, &apiclient.TransientError{Err: callCtx.Err()}
	}

	coord, store := newTestCoordinator(t, mockAPI, fakeEngine())
	stageUpdate(t, coord, "doc-a", "a1")

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, models.StateOffline, result.State)

	// At-least-once: the in-flight entry is back in the queue, not acked.
	pending, err := store.Pending(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "doc-a", pending[0].DocumentID)
}

func TestRedrive_RestoresParkedEntryForNextDrain(t *testing.T) {
	mockAPI := happyAPI()
	denied := true
	mockAPI.SyncDocumentFunc = func(ctx context.Context, token string, req api.SyncDocumentRequest) (*api.Document, error) {
		if denied {
			return nil, apiclient.ErrAccessDenied
		}
		return &api.Document{ID: req.ID, DocumentType: req.DocumentType, OwnerID: "user-1", State: req.Changes}, nil
	}

	coord, store := newTestCoordinator(t, mockAPI, fakeEngine())
	ctx := context.Background()

	stageUpdate(t, coord, "doc-a", "a1")
	_, err := coord.Drain(ctx, true)
	require.NoError(t, err)

	dead, err := store.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)

	require.NoError(t, coord.Redrive(ctx, dead[0].Sequence))
	denied = false

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Acked)
	assert.Equal(t, models.StateOnline, result.State)
}

func TestStage_Delete_EnqueuesTombstone(t *testing.T) {
	mockAPI := happyAPI()
	coord, store := newTestCoordinator(t, mockAPI, fakeEngine())
	ctx := context.Background()

	stageUpdate(t, coord, "doc-a", "a1")
	_, err := coord.Drain(ctx, true)
	require.NoError(t, err)

	_, err = coord.Stage(ctx, "doc-a", models.TypeNote, models.OpDelete, nil, nil)
	require.NoError(t, err)

	_, err = store.GetDocument(ctx, "doc-a")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Acked)

	require.Len(t, mockAPI.DeleteDocumentCalls(), 1)
	require.Len(t, mockAPI.DeleteProjectionCalls(), 1)
}

func TestDrain_PullsPeerMerges(t *testing.T) {
	// An idle replica with an empty queue still receives documents its
	// peers pushed: the drain ends with a catch-up pull, oldest first.
	mockAPI := happyAPI()
	mockAPI.ListDocumentsFunc = func(ctx context.Context, token, docType string, ascending bool) ([]api.Document, error) {
		return []api.Document{{
			ID:           "peer-doc",
			DocumentType: "note",
			OwnerID:      "user-1",
			State:        []byte("peer-state"),
			Heads:        []string{"head-peer-state"},
			LastSync:     time.Now(),
		}}, nil
	}

	coord, store := newTestCoordinator(t, mockAPI, fakeEngine())
	ctx := context.Background()

	result, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, models.StateOnline, result.State)

	calls := mockAPI.ListDocumentsCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Ascending)

	local, err := store.GetDocument(ctx, "peer-doc")
	require.NoError(t, err)
	assert.Equal(t, []byte("peer-state"), local.State)
	assert.Equal(t, "Draft", local.Metadata.Title)

	report, err := coord.Status(ctx)
	require.NoError(t, err)
	assert.False(t, report.LastFullSync.IsZero())
}

func TestDrain_PullMergesIntoLocalChanges(t *testing.T) {
	// A pulled document that diverged from the local mirror is merged,
	// never copied over pending local edits.
	mockAPI := happyAPI()
	mockAPI.ListDocumentsFunc = func(ctx context.Context, token, docType string, ascending bool) ([]api.Document, error) {
		return []api.Document{{
			ID:           "doc-a",
			DocumentType: "note",
			OwnerID:      "user-1",
			State:        []byte("remote-state"),
			Heads:        []string{"head-remote-state"},
		}}, nil
	}

	merges := 0
	engine := fakeEngine()
	engine.MergeFunc = func(ctx context.Context, base, changes []byte) ([]byte, error) {
		merges++
		return append(append([]byte{}, base...), changes...), nil
	}

	coord, store := newTestCoordinator(t, mockAPI, engine)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &models.Document{
		ID:    "doc-a",
		Type:  models.TypeNote,
		State: []byte("local-"),
		Heads: []string{"head-local"},
	}))

	_, err := coord.Drain(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, merges)

	local, err := store.GetDocument(ctx, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("local-remote-state"), local.State)
}

func TestStage_KicksWhenOnline(t *testing.T) {
	coord, store := newTestCoordinator(t, happyAPI(), fakeEngine())
	ctx := context.Background()

	require.NoError(t, store.SaveStatus(ctx, &models.SyncStatus{ConnectionState: models.StateOnline}))
	stageUpdate(t, coord, "doc-a", "a1")

	select {
	case <-coord.Kicks():
	default:
		t.Fatal("expected an immediate drain kick while online")
	}
}
