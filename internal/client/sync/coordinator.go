// Package sync implements the sync coordinator: the single authority that
// moves data between the sync queue, the document stores and the legacy
// projection, and the only component permitted to change the connection
// state.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	apiclient "github.com/driftlabs/driftsync/internal/client/api"
	"github.com/driftlabs/driftsync/internal/client/storage"
	"github.com/driftlabs/driftsync/internal/crdt"
	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/pkg/api"
)

var (
	// ErrNotAuthenticated indicates there is no stored principal; the
	// call is fatal and never retried.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrDrainInProgress indicates another drain holds the queue.
	ErrDrainInProgress = errors.New("drain already in progress")
)

// Config bounds the coordinator's retry behavior.
type Config struct {
	// MaxAttempts is the number of transient failures an entry may
	// accumulate before it is parked as a terminal sync error.
	MaxAttempts int

	// BaseBackoff is the first requeue delay; it doubles per attempt.
	BaseBackoff time.Duration

	// MaxBackoff caps the requeue delay.
	MaxBackoff time.Duration

	// CallTimeout bounds each remote call.
	CallTimeout time.Duration

	// DocParallelism is how many independent documents may sync
	// concurrently. Entries of one document always run sequentially.
	DocParallelism int
}

// DefaultConfig returns the production retry policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    5,
		BaseBackoff:    2 * time.Second,
		MaxBackoff:     5 * time.Minute,
		CallTimeout:    30 * time.Second,
		DocParallelism: 4,
	}
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	State     models.ConnState
	Processed int
	Acked     int
	Requeued  int
	Parked    int
}

// StatusReport is the caller-facing sync status.
type StatusReport struct {
	LastFullSync       time.Time
	ConnectionState    models.ConnState
	PendingSyncs       int
	OfflineChangeCount int
	DeadLetters        int
}

// Coordinator orchestrates queue draining, connection-state transitions,
// conflict merge and legacy-table reconciliation.
type Coordinator struct {
	apiClient apiclient.ClientAPI
	documents storage.DocumentStorage
	queue     storage.QueueStorage
	status    storage.StatusStorage
	sessions  storage.SessionStorage
	engine    crdt.Engine
	logger    *slog.Logger
	kick      chan struct{}
	cfg       Config
	draining  atomic.Bool
}

// NewCoordinator creates a coordinator over the given collaborators.
func NewCoordinator(
	apiClient apiclient.ClientAPI,
	documents storage.DocumentStorage,
	queue storage.QueueStorage,
	status storage.StatusStorage,
	sessions storage.SessionStorage,
	engine crdt.Engine,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		apiClient: apiClient,
		documents: documents,
		queue:     queue,
		status:    status,
		sessions:  sessions,
		engine:    engine,
		cfg:       cfg,
		logger:    logger,
		kick:      make(chan struct{}, 1),
	}
}

// Kicks delivers a signal whenever a mutation is staged while the
// connection state is online, so the trigger layer can drain immediately
// instead of waiting for the next periodic tick.
func (c *Coordinator) Kicks() <-chan struct{} {
	return c.kick
}

// Stage records a local mutation: it is applied optimistically to the
// local document mirror and appended to the durable sync queue. The
// returned document reflects the optimistic local state.
func (c *Coordinator) Stage(ctx context.Context, docID string, docType models.DocumentType, op models.Operation, changes []byte, meta *models.Metadata) (*models.Document, error) {
	session, err := c.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var doc *models.Document
	if op == models.OpDelete {
		if err := c.documents.DeleteDocument(ctx, docID); err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
			return nil, fmt.Errorf("failed to delete local document: %w", err)
		}
	} else {
		doc, err = c.applyLocal(ctx, session.UserID, docID, docType, changes, meta)
		if err != nil {
			return nil, err
		}
		meta = doc.Metadata
	}

	entry := &models.QueueEntry{
		DocumentID:   docID,
		DocumentType: docType,
		Op:           op,
		Payload:      changes,
		Metadata:     meta,
		EnqueuedAt:   time.Now(),
	}
	if doc != nil {
		entry.Heads = doc.Heads
	}
	if err := c.queue.Enqueue(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to enqueue mutation: %w", err)
	}

	status, err := c.status.GetStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync status: %w", err)
	}
	status.OfflineChangeCount++
	if err := c.status.SaveStatus(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to save sync status: %w", err)
	}

	c.logger.Debug("staged mutation",
		"document_id", docID, "op", op, "sequence", entry.Sequence)

	// Known to be online: drain now rather than at the next tick.
	if status.ConnectionState == models.StateOnline {
		select {
		case c.kick <- struct{}{}:
		default:
		}
	}
	return doc, nil
}

// applyLocal merges a change blob into the local mirror optimistically.
func (c *Coordinator) applyLocal(ctx context.Context, ownerID, docID string, docType models.DocumentType, changes []byte, meta *models.Metadata) (*models.Document, error) {
	var base []byte
	existing, err := c.documents.GetDocument(ctx, docID)
	switch {
	case err == nil:
		base = existing.State
	case errors.Is(err, storage.ErrDocumentNotFound):
	default:
		return nil, fmt.Errorf("failed to load local document: %w", err)
	}

	merged, err := c.engine.Merge(ctx, base, changes)
	if err != nil {
		return nil, fmt.Errorf("local merge failed: %w", err)
	}
	heads, err := c.engine.Heads(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("failed to derive heads: %w", err)
	}
	if meta == nil {
		if meta, err = c.engine.Metadata(ctx, merged); err != nil {
			return nil, fmt.Errorf("failed to extract metadata: %w", err)
		}
	}

	doc := &models.Document{
		ID:       docID,
		Type:     docType,
		OwnerID:  ownerID,
		State:    merged,
		Heads:    heads,
		Metadata: meta,
	}
	if existing != nil {
		doc.LastSync = existing.LastSync
	}
	if err := c.documents.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save local document: %w", err)
	}
	return doc, nil
}

// Drain processes all pending queue entries. Reachability is passed in as
// a value by the trigger layer; the resulting connection state is both
// persisted and returned. At most one drain runs at a time.
func (c *Coordinator) Drain(ctx context.Context, reachable bool) (*DrainResult, error) {
	if !reachable {
		if err := c.setState(ctx, models.StateOffline); err != nil {
			return nil, err
		}
		return &DrainResult{State: models.StateOffline}, nil
	}

	session, err := c.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.Valid(time.Now()) {
		return nil, ErrNotAuthenticated
	}

	if !c.draining.CompareAndSwap(false, true) {
		return nil, ErrDrainInProgress
	}
	defer c.draining.Store(false)

	if err := c.setState(ctx, models.StateSyncing); err != nil {
		return nil, err
	}

	entries, err := c.queue.Pending(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to read pending entries: %w", err)
	}

	result := &DrainResult{Processed: len(entries)}
	c.logger.Info("drain started", "pending", len(entries))

	// Entries for one document run strictly in sequence order; documents
	// are independent of each other and may sync concurrently.
	var counts struct {
		acked, requeued, parked atomic.Int64
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.DocParallelism)
	for _, lane := range groupBySequence(entries) {
		group.Go(func() error {
			for _, entry := range lane {
				outcome, err := c.processEntry(groupCtx, session, entry)
				if err != nil {
					return err
				}
				switch outcome {
				case outcomeAcked:
					counts.acked.Add(1)
				case outcomeRequeued:
					counts.requeued.Add(1)
					// A failed entry blocks the rest of its lane:
					// later states must not reach the projection
					// before earlier ones.
					return nil
				case outcomeParked:
					counts.parked.Add(1)
					return nil
				}
			}
			return nil
		})
	}
	drainErr := group.Wait()

	result.Acked = int(counts.acked.Load())
	result.Requeued = int(counts.requeued.Load())
	result.Parked = int(counts.parked.Load())

	// Pushing only empties this replica's queue; merges made by peers
	// arrive by pulling the server's documents back into the mirror.
	var pullErr error
	if drainErr == nil {
		if pullErr = c.catchUp(ctx, session); pullErr != nil {
			c.logger.Warn("catch-up pull failed", "error", pullErr)
		}
	}

	status, err := c.status.GetStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync status: %w", err)
	}
	if pending, err := c.queue.PendingCount(ctx); err == nil {
		status.OfflineChangeCount = pending
	}

	switch {
	case drainErr != nil && errors.Is(drainErr, context.Canceled):
		// Connectivity lost mid-drain; in-flight entries were requeued.
		status.ConnectionState = models.StateOffline
	case drainErr != nil:
		status.ConnectionState = models.StateError
	case result.Parked > 0:
		status.ConnectionState = models.StateError
	case result.Requeued > 0:
		// Transient failures with retry budget left: connectivity is
		// present, entries wait out their backoff.
		status.ConnectionState = models.StateOnline
	default:
		status.ConnectionState = models.StateOnline
		if pullErr == nil {
			status.LastFullSync = time.Now()
		}
	}
	result.State = status.ConnectionState

	if err := c.status.SaveStatus(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to save sync status: %w", err)
	}

	c.logger.Info("drain finished",
		"state", result.State,
		"acked", result.Acked,
		"requeued", result.Requeued,
		"parked", result.Parked)

	if drainErr != nil && !errors.Is(drainErr, context.Canceled) {
		return result, drainErr
	}
	return result, nil
}

type entryOutcome int

const (
	outcomeAcked entryOutcome = iota
	outcomeRequeued
	outcomeParked
)

// processEntry pushes one queue entry to the server, reconciles the
// legacy projection and acknowledges it. The entry is acknowledged only
// after the remote merge is confirmed.
func (c *Coordinator) processEntry(ctx context.Context, session *storage.Session, entry *models.QueueEntry) (entryOutcome, error) {
	err := c.pushRemote(ctx, session, entry)
	if err == nil {
		if err := c.queue.Acknowledge(ctx, entry.Sequence); err != nil {
			return 0, fmt.Errorf("failed to acknowledge entry %d: %w", entry.Sequence, err)
		}
		return outcomeAcked, nil
	}

	switch {
	case ctx.Err() != nil:
		// Cancellation, not failure: retry on the next drain without
		// consuming backoff budget.
		if rqErr := c.queue.Requeue(ctx, entry.Sequence, time.Now(), "drain cancelled"); rqErr != nil {
			c.logger.Error("failed to requeue cancelled entry", "sequence", entry.Sequence, "error", rqErr)
		}
		return 0, ctx.Err()

	case errors.Is(err, apiclient.ErrUnauthenticated):
		// No principal: nothing else in this drain can succeed.
		return 0, fmt.Errorf("entry %d: %w", entry.Sequence, ErrNotAuthenticated)

	case apiclient.IsTransient(err):
		attempts := entry.Attempts + 1
		if attempts >= c.cfg.MaxAttempts {
			c.logger.Error("entry exhausted retry budget",
				"sequence", entry.Sequence, "document_id", entry.DocumentID, "error", err)
			if parkErr := c.queue.Park(ctx, entry.Sequence, err.Error()); parkErr != nil {
				return 0, fmt.Errorf("failed to park entry %d: %w", entry.Sequence, parkErr)
			}
			return outcomeParked, nil
		}
		c.logger.Warn("transient failure, requeueing",
			"sequence", entry.Sequence, "document_id", entry.DocumentID,
			"attempts", attempts, "error", err)
		if rqErr := c.queue.Requeue(ctx, entry.Sequence, time.Now().Add(c.backoffDelay(attempts)), err.Error()); rqErr != nil {
			return 0, fmt.Errorf("failed to requeue entry %d: %w", entry.Sequence, rqErr)
		}
		return outcomeRequeued, nil

	default:
		// AccessDenied, NotFound, merge rejection: fatal for this entry.
		// Parking prevents a poison entry from looping forever.
		c.logger.Error("entry failed terminally",
			"sequence", entry.Sequence, "document_id", entry.DocumentID, "error", err)
		if parkErr := c.queue.Park(ctx, entry.Sequence, err.Error()); parkErr != nil {
			return 0, fmt.Errorf("failed to park entry %d: %w", entry.Sequence, parkErr)
		}
		return outcomeParked, nil
	}
}

// pushRemote performs the remote merge (or delete) plus projection
// reconciliation for one entry.
func (c *Coordinator) pushRemote(ctx context.Context, session *storage.Session, entry *models.QueueEntry) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	if entry.Op == models.OpDelete {
		err := c.callWithRetry(callCtx, func(ctx context.Context) error {
			return c.apiClient.DeleteDocument(ctx, session.AccessToken, entry.DocumentID)
		})
		// A delete of an already-deleted document is converged, not failed.
		if err != nil && !errors.Is(err, apiclient.ErrNotFound) {
			return err
		}
		if err := c.callWithRetry(callCtx, func(ctx context.Context) error {
			return c.apiClient.DeleteProjection(ctx, session.AccessToken, entry.DocumentID)
		}); err != nil {
			return err
		}
		// A catch-up pull between staging and draining the delete may
		// have restored the mirror copy; drop it again.
		if err := c.documents.DeleteDocument(ctx, entry.DocumentID); err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
			return fmt.Errorf("failed to clear local mirror: %w", err)
		}
		return nil
	}

	var merged *api.Document
	err := c.callWithRetry(callCtx, func(ctx context.Context) error {
		var err error
		merged, err = c.apiClient.SyncDocument(ctx, session.AccessToken, api.SyncDocumentRequest{
			ID:           entry.DocumentID,
			DocumentType: string(entry.DocumentType),
			Changes:      entry.Payload,
			Heads:        entry.Heads,
			Metadata:     wireMetadata(entry.Metadata),
		})
		return err
	})
	if err != nil {
		return err
	}

	// The server's merge is authoritative; fold it back into the mirror.
	doc := documentFromWire(merged)
	if err := c.documents.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to update local mirror: %w", err)
	}

	meta, err := c.engine.Metadata(ctx, doc.State)
	if err != nil {
		return fmt.Errorf("failed to derive projection metadata: %w", err)
	}
	return c.callWithRetry(callCtx, func(ctx context.Context) error {
		return c.apiClient.UpsertProjection(ctx, session.AccessToken, api.ProjectionRequest{
			DocumentID:   doc.ID,
			DocumentType: string(doc.Type),
			Metadata:     *wireMetadata(meta),
		})
	})
}

// catchUp walks the server's documents oldest sync first and folds each
// into the local mirror, so this replica also receives merges pushed by
// its peers. Local unsynced changes survive: the remote state is merged
// into the local state, never copied over it.
func (c *Coordinator) catchUp(ctx context.Context, session *storage.Session) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	var remote []api.Document
	err := c.callWithRetry(callCtx, func(ctx context.Context) error {
		var err error
		remote, err = c.apiClient.ListDocuments(ctx, session.AccessToken, "", true)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list remote documents: %w", err)
	}

	for i := range remote {
		if err := c.pullDocument(ctx, &remote[i]); err != nil {
			return err
		}
	}
	return nil
}

// pullDocument folds one remote document into the local mirror.
func (c *Coordinator) pullDocument(ctx context.Context, wire *api.Document) error {
	doc := documentFromWire(wire)

	local, err := c.documents.GetDocument(ctx, doc.ID)
	switch {
	case errors.Is(err, storage.ErrDocumentNotFound):
		// First sight of a document created on another replica.
	case err != nil:
		return fmt.Errorf("failed to load local document %s: %w", doc.ID, err)
	case sameHeads(local.Heads, doc.Heads):
		return nil
	default:
		merged, err := c.engine.Merge(ctx, local.State, doc.State)
		if err != nil {
			return fmt.Errorf("failed to merge remote document %s: %w", doc.ID, err)
		}
		heads, err := c.engine.Heads(ctx, merged)
		if err != nil {
			return fmt.Errorf("failed to derive heads for %s: %w", doc.ID, err)
		}
		doc.State = merged
		doc.Heads = heads
		doc.Metadata = nil
	}

	if doc.Metadata == nil {
		meta, err := c.engine.Metadata(ctx, doc.State)
		if err != nil {
			return fmt.Errorf("failed to extract metadata for %s: %w", doc.ID, err)
		}
		doc.Metadata = meta
	}
	if err := c.documents.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to save pulled document %s: %w", doc.ID, err)
	}
	return nil
}

// sameHeads reports whether two head sets fingerprint the same history.
func sameHeads(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, h := range a {
		seen[h] = struct{}{}
	}
	for _, h := range b {
		if _, ok := seen[h]; !ok {
			return false
		}
	}
	return true
}

// callWithRetry retries quick transient blips within a single attempt.
// Longer outages surface to the caller and consume the entry's backoff
// budget instead.
func (c *Coordinator) callWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(250*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && apiclient.IsTransient(err) && ctx.Err() == nil {
			return retry.RetryableError(err)
		}
		return err
	})
}

// backoffDelay doubles the base delay per attempt, capped at MaxBackoff.
func (c *Coordinator) backoffDelay(attempts int) time.Duration {
	delay := c.cfg.BaseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= c.cfg.MaxBackoff {
			return c.cfg.MaxBackoff
		}
	}
	if delay > c.cfg.MaxBackoff {
		return c.cfg.MaxBackoff
	}
	return delay
}

// Status composes the caller-facing sync status.
func (c *Coordinator) Status(ctx context.Context) (*StatusReport, error) {
	status, err := c.status.GetStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync status: %w", err)
	}
	pending, err := c.queue.PendingCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending entries: %w", err)
	}
	dead, err := c.queue.DeadLetters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}
	return &StatusReport{
		LastFullSync:       status.LastFullSync,
		ConnectionState:    status.ConnectionState,
		PendingSyncs:       pending,
		OfflineChangeCount: status.OfflineChangeCount,
		DeadLetters:        len(dead),
	}, nil
}

// Redrive moves a parked entry back into the queue. This is the only
// recovery path for dead letters; they are never retried automatically.
func (c *Coordinator) Redrive(ctx context.Context, sequence uint64) error {
	if err := c.queue.Redrive(ctx, sequence); err != nil {
		return fmt.Errorf("failed to redrive entry %d: %w", sequence, err)
	}
	c.logger.Info("dead letter redriven", "sequence", sequence)
	return nil
}

// setState persists a connection-state transition.
func (c *Coordinator) setState(ctx context.Context, state models.ConnState) error {
	status, err := c.status.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sync status: %w", err)
	}
	if status.ConnectionState == state {
		return nil
	}
	c.logger.Debug("connection state transition", "from", status.ConnectionState, "to", state)
	status.ConnectionState = state
	if err := c.status.SaveStatus(ctx, status); err != nil {
		return fmt.Errorf("failed to save sync status: %w", err)
	}
	return nil
}

// groupBySequence splits entries into per-document lanes, preserving
// sequence order inside each lane and first-seen order across lanes.
func groupBySequence(entries []*models.QueueEntry) [][]*models.QueueEntry {
	index := make(map[string]int)
	var lanes [][]*models.QueueEntry
	for _, entry := range entries {
		i, ok := index[entry.DocumentID]
		if !ok {
			i = len(lanes)
			index[entry.DocumentID] = i
			lanes = append(lanes, nil)
		}
		lanes[i] = append(lanes[i], entry)
	}
	return lanes
}

func wireMetadata(m *models.Metadata) *api.Metadata {
	if m == nil {
		return &api.Metadata{}
	}
	return &api.Metadata{Title: m.Title, Tags: m.Tags, Status: m.Status}
}

func documentFromWire(doc *api.Document) *models.Document {
	out := &models.Document{
		ID:       doc.ID,
		Type:     models.DocumentType(doc.DocumentType),
		OwnerID:  doc.OwnerID,
		State:    doc.State,
		Heads:    doc.Heads,
		LastSync: doc.LastSync,
	}
	if doc.Metadata != nil {
		out.Metadata = &models.Metadata{
			Title:  doc.Metadata.Title,
			Tags:   doc.Metadata.Tags,
			Status: doc.Metadata.Status,
		}
	}
	return out
}
