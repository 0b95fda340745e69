package models

import (
	"fmt"
	"time"
)

// Operation is the kind of pending local mutation a queue entry carries.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ParseOperation validates and converts a raw string into an Operation.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OpCreate, OpUpdate, OpDelete:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// QueueEntry is one pending local operation awaiting transmission to the
// server. Sequence is assigned by the queue on enqueue and is strictly
// monotonic; entries for the same document must be applied remotely in
// sequence order. Payload is the opaque CRDT change blob (empty for
// deletes).
type QueueEntry struct {
	EnqueuedAt    time.Time    `json:"enqueued_at"`
	NextAttemptAt time.Time    `json:"next_attempt_at"`
	DocumentID    string       `json:"document_id"`
	DocumentType  DocumentType `json:"document_type"`
	Op            Operation    `json:"op"`
	LastError     string       `json:"last_error,omitempty"`
	Payload       []byte       `json:"payload"`
	Heads         []string     `json:"heads"`
	Metadata      *Metadata    `json:"metadata,omitempty"`
	Sequence      uint64       `json:"sequence"`
	Attempts      int          `json:"attempts"`
}

// Ready reports whether the entry's backoff deadline has passed.
func (e *QueueEntry) Ready(now time.Time) bool {
	return !e.NextAttemptAt.After(now)
}
