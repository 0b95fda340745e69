package crdt

import (
	"context"
	"fmt"

	"github.com/automerge/automerge-go"

	"github.com/driftlabs/driftsync/internal/models"
)

// AutomergeEngine implements Engine on top of automerge. State and change
// blobs are full automerge document saves; merging two saves yields the
// canonical automerge merge of both histories.
type AutomergeEngine struct{}

// NewAutomergeEngine returns the production CRDT engine.
func NewAutomergeEngine() *AutomergeEngine {
	return &AutomergeEngine{}
}

var _ Engine = (*AutomergeEngine)(nil)

// NewState builds a fresh automerge document from initial field values.
func (e *AutomergeEngine) NewState(ctx context.Context, fields map[string]any) ([]byte, error) {
	doc := automerge.New()
	for key, value := range fields {
		if err := doc.Path(key).Set(value); err != nil {
			return nil, fmt.Errorf("failed to set field %q: %w", key, err)
		}
	}
	if _, err := doc.Commit("init", automerge.CommitOptions{AllowEmpty: true}); err != nil {
		return nil, fmt.Errorf("failed to commit initial state: %w", err)
	}
	return doc.Save(), nil
}

// SetFields applies field edits to an existing state blob.
func (e *AutomergeEngine) SetFields(ctx context.Context, state []byte, fields map[string]any) ([]byte, error) {
	doc, err := automerge.Load(state)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	for key, value := range fields {
		if err := doc.Path(key).Set(value); err != nil {
			return nil, fmt.Errorf("failed to set field %q: %w", key, err)
		}
	}
	return doc.Save(), nil
}

// Merge merges a change blob into a base state. Empty base means the
// change blob is the document.
func (e *AutomergeEngine) Merge(ctx context.Context, base, changes []byte) ([]byte, error) {
	incoming, err := automerge.Load(changes)
	if err != nil {
		return nil, fmt.Errorf("%w: bad change blob: %v", ErrMergeFailed, err)
	}
	if len(base) == 0 {
		return incoming.Save(), nil
	}

	doc, err := automerge.Load(base)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base state: %v", ErrMergeFailed, err)
	}
	if _, err := doc.Merge(incoming); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}
	return doc.Save(), nil
}

// Heads returns the change hashes at the tip of the document's history.
func (e *AutomergeEngine) Heads(ctx context.Context, state []byte) ([]string, error) {
	doc, err := automerge.Load(state)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	hashes := doc.Heads()
	heads := make([]string, 0, len(hashes))
	for _, h := range hashes {
		heads = append(heads, h.String())
	}
	return heads, nil
}

// Metadata extracts title, tags and status from well-known root fields.
// Fields that are absent or of an unexpected kind are skipped rather than
// failing the extraction; the state blob stays authoritative.
func (e *AutomergeEngine) Metadata(ctx context.Context, state []byte) (*models.Metadata, error) {
	doc, err := automerge.Load(state)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	meta := &models.Metadata{}
	if s, ok := stringField(doc, "title"); ok {
		meta.Title = s
	}
	if s, ok := stringField(doc, "status"); ok {
		meta.Status = s
	}

	v, err := doc.Path("tags").Get()
	if err == nil && v != nil && v.Kind() == automerge.KindList {
		list := v.List()
		for i := 0; i < list.Len(); i++ {
			item, err := list.Get(i)
			if err != nil || item == nil || item.Kind() != automerge.KindStr {
				continue
			}
			meta.Tags = append(meta.Tags, item.Str())
		}
	}

	return meta, nil
}

func stringField(doc *automerge.Doc, key string) (string, bool) {
	v, err := doc.Path(key).Get()
	if err != nil || v == nil || v.Kind() != automerge.KindStr {
		return "", false
	}
	return v.Str(), true
}
