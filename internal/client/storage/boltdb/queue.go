package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/driftlabs/driftsync/internal/client/storage"
	"github.com/driftlabs/driftsync/internal/models"
)

// seqKey encodes a sequence number as a big-endian key so bolt's
// byte-ordered cursor iterates entries in enqueue order.
func seqKey(sequence uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, sequence)
	return key
}

// Enqueue appends an entry, assigning the next sequence from the bucket's
// internal counter. The write is committed before Enqueue returns, so an
// unflushed queue is never silently lost.
func (s *Storage) Enqueue(ctx context.Context, entry *models.QueueEntry) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)

		sequence, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to assign sequence: %w", err)
		}
		entry.Sequence = sequence

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal queue entry: %w", err)
		}
		return bucket.Put(seqKey(sequence), data)
	})
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}
	return nil
}

// Pending returns queued entries ready for transmission, in sequence
// order. Entries still waiting out a backoff deadline are skipped.
func (s *Storage) Pending(ctx context.Context, now time.Time) ([]*models.QueueEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entries []*models.QueueEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketQueue).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var entry models.QueueEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal queue entry: %w", err)
			}
			if entry.Ready(now) {
				entries = append(entries, &entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read pending entries: %w", err)
	}
	return entries, nil
}

// PendingCount returns the number of queued entries, backoff included.
func (s *Storage) PendingCount(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketQueue).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending entries: %w", err)
	}
	return count, nil
}

// Acknowledge removes an entry after its remote merge is confirmed.
func (s *Storage) Acknowledge(ctx context.Context, sequence uint64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		key := seqKey(sequence)
		if bucket.Get(key) == nil {
			return storage.ErrEntryNotFound
		}
		return bucket.Delete(key)
	})
	if err != nil {
		return err
	}
	return nil
}

// Requeue records a transient failure: attempts is incremented and the
// entry stays in place until nextAttemptAt.
func (s *Storage) Requeue(ctx context.Context, sequence uint64, nextAttemptAt time.Time, lastError string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		key := seqKey(sequence)
		data := bucket.Get(key)
		if data == nil {
			return storage.ErrEntryNotFound
		}

		var entry models.QueueEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("failed to unmarshal queue entry: %w", err)
		}
		entry.Attempts++
		entry.NextAttemptAt = nextAttemptAt
		entry.LastError = lastError

		updated, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("failed to marshal queue entry: %w", err)
		}
		return bucket.Put(key, updated)
	})
	if err != nil {
		return err
	}
	return nil
}

// Park moves an entry to the dead-letter bucket. Parked entries are a
// terminal state: they are only reconsidered via Redrive.
func (s *Storage) Park(ctx context.Context, sequence uint64, reason string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		queue := tx.Bucket(bucketQueue)
		key := seqKey(sequence)
		data := queue.Get(key)
		if data == nil {
			return storage.ErrEntryNotFound
		}

		var entry models.QueueEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("failed to unmarshal queue entry: %w", err)
		}
		entry.LastError = reason

		parked, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("failed to marshal dead letter: %w", err)
		}
		if err := tx.Bucket(bucketDeadLetter).Put(key, parked); err != nil {
			return fmt.Errorf("failed to write dead letter: %w", err)
		}
		return queue.Delete(key)
	})
	if err != nil {
		return err
	}
	return nil
}

// DeadLetters returns parked entries in sequence order.
func (s *Storage) DeadLetters(ctx context.Context) ([]*models.QueueEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entries []*models.QueueEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketDeadLetter).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var entry models.QueueEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal dead letter: %w", err)
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}
	return entries, nil
}

// Redrive moves a parked entry back into the queue with a fresh attempt
// budget so the next drain picks it up.
func (s *Storage) Redrive(ctx context.Context, sequence uint64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		dead := tx.Bucket(bucketDeadLetter)
		key := seqKey(sequence)
		data := dead.Get(key)
		if data == nil {
			return storage.ErrEntryNotFound
		}

		var entry models.QueueEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("failed to unmarshal dead letter: %w", err)
		}
		entry.Attempts = 0
		entry.NextAttemptAt = time.Time{}
		entry.LastError = ""

		requeued, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("failed to marshal queue entry: %w", err)
		}
		if err := tx.Bucket(bucketQueue).Put(key, requeued); err != nil {
			return fmt.Errorf("failed to requeue dead letter: %w", err)
		}
		return dead.Delete(key)
	})
	if err != nil {
		return err
	}
	return nil
}
