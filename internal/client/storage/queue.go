package storage

import (
	"context"
	"time"

	"github.com/driftlabs/driftsync/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage is the durable, ordered log of pending local operations.
// Sequences are assigned on enqueue and are strictly monotonic; an entry
// is removed only after the remote merge for it is confirmed.
type QueueStorage interface {
	// Enqueue appends an entry, assigns the next sequence and persists it
	// before returning. The assigned sequence is written into the entry.
	Enqueue(ctx context.Context, entry *models.QueueEntry) error

	// Pending returns queued entries whose backoff deadline has passed,
	// in sequence order. Acknowledged and parked entries are excluded.
	Pending(ctx context.Context, now time.Time) ([]*models.QueueEntry, error)

	// PendingCount returns the number of queued entries, including those
	// still waiting out a backoff deadline.
	PendingCount(ctx context.Context) (int, error)

	// Acknowledge removes an entry. Must only be called after the remote
	// merge for that entry is confirmed.
	Acknowledge(ctx context.Context, sequence uint64) error

	// Requeue increments the entry's attempt count and pushes its next
	// attempt out to the given deadline. Used on transient failure.
	Requeue(ctx context.Context, sequence uint64, nextAttemptAt time.Time, lastError string) error

	// Park moves an entry to the dead-letter state. Parked entries are
	// never drained again until explicitly redriven.
	Park(ctx context.Context, sequence uint64, reason string) error

	// DeadLetters returns parked entries in sequence order.
	DeadLetters(ctx context.Context) ([]*models.QueueEntry, error)

	// Redrive moves a parked entry back into the queue with a fresh
	// attempt budget. Returns ErrEntryNotFound if no such dead letter.
	Redrive(ctx context.Context, sequence uint64) error
}
