// Package crdt abstracts the conflict-free replicated data type engine
// behind a small capability interface. The rest of the system treats
// document state as an opaque mergeable blob: merge is commutative,
// idempotent and associative, so replicas converge regardless of the
// order in which changes arrive.
package crdt

import (
	"context"
	"errors"

	"github.com/driftlabs/driftsync/internal/models"
)

//go:generate moq -out engine_mock.go . Engine

// ErrMergeFailed indicates the underlying engine rejected a state blob.
// Entries that fail this way are poison: they are parked, never retried.
var ErrMergeFailed = errors.New("crdt merge failed")

// Engine is the black-box CRDT capability. Any implementation must
// satisfy: Merge(a, b) == Merge(b, a), Merge(a, a) == a, and
// Merge(Merge(a, b), c) == Merge(a, Merge(b, c)) up to serialization.
type Engine interface {
	// NewState builds a fresh document state from initial field values.
	NewState(ctx context.Context, fields map[string]any) ([]byte, error)

	// SetFields applies field-level edits to an existing state and
	// returns the new state blob.
	SetFields(ctx context.Context, state []byte, fields map[string]any) ([]byte, error)

	// Merge merges a change blob into a base state. An empty base is
	// treated as a brand-new document. Returns ErrMergeFailed (wrapped)
	// when either blob cannot be decoded.
	Merge(ctx context.Context, base, changes []byte) ([]byte, error)

	// Heads returns the content-derived version fingerprints of a state.
	Heads(ctx context.Context, state []byte) ([]string, error)

	// Metadata extracts the display projection (title, tags, status)
	// from a state blob. Missing fields are left zero.
	Metadata(ctx context.Context, state []byte) (*models.Metadata, error)
}
