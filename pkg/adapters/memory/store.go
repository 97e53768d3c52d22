// Package memory provides the in-memory document store mirrored by the
// filesystem engine.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/aretw0/mirror/pkg/core"
)

// Store is a map-backed core.Store. It is safe for concurrent use.
// Delete handlers run outside the store lock.
type Store struct {
	mu       sync.RWMutex
	docs     map[string]core.Document
	handlers []core.DeleteHandler
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]core.Document)}
}

func (s *Store) Get(_ context.Context, id string) (core.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return core.Document{}, false
	}
	return doc.Clone(), true
}

func (s *Store) Add(_ context.Context, doc core.Document) error {
	if doc.ID == "" {
		return errors.New("document ID cannot be empty")
	}
	s.mu.Lock()
	s.docs[doc.ID] = doc.Clone()
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.docs, id)
	handlers := make([]core.DeleteHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns all documents sorted by ID.
func (s *Store) List(_ context.Context) []core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) OnDelete(h core.DeleteHandler) {
	s.mu.Lock()
	s.handlers = append(s.handlers, h)
	s.mu.Unlock()
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

var _ core.Store = (*Store)(nil)
