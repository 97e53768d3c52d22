package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// Service handles the business logic for documents.
// It owns the store and the repository and is the single writer for both:
// saves, deletes and syncs are serialized by one mutex.
type Service struct {
	mu     sync.RWMutex
	repo   Repository
	store  Store
	logger *slog.Logger
}

// NewService creates a new Service and subscribes the repository to store deletions.
func NewService(repo Repository, store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{repo: repo, store: store, logger: logger}
	store.OnDelete(s.onDelete)
	return s
}

// onDelete runs inside whatever call deleted from the store, which already
// holds the lock, so it must not take it again.
func (s *Service) onDelete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	var cleanup *CleanupError
	if errors.As(err, &cleanup) {
		s.logger.Warn("incomplete cleanup after delete", "id", id, "path", cleanup.Path, "error", err)
		return nil
	}
	return err
}

// SaveDocument saves a document with business validation.
// When the write lands but its timestamp cannot be confirmed, the store is
// still updated and the StaleMetadataError is returned; the next sync reloads it.
func (s *Service) SaveDocument(ctx context.Context, id string, content string, metadata Metadata) error {
	if id == "" {
		return errors.New("document ID cannot be empty")
	}

	doc := Document{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Write(ctx, doc)
	if err != nil && !errors.Is(err, ErrStaleMetadata) {
		return err
	}
	if addErr := s.store.Add(ctx, doc); addErr != nil {
		return addErr
	}
	return err
}

// GetDocument retrieves a document.
func (s *Service) GetDocument(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, errors.New("document ID cannot be empty")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.store.Get(ctx, id)
	if !ok {
		return Document{}, &NotFoundError{ID: id}
	}
	return doc, nil
}

// ListDocuments retrieves all documents.
func (s *Service) ListDocuments(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.List(ctx), nil
}

// DeleteDocument removes a document from the store, which in turn removes its file.
// If the file cannot be removed the document is restored and the error returned.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("document ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.store.Get(ctx, id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		// The file is still there; put the document back so store and disk agree.
		if addErr := s.store.Add(ctx, doc); addErr != nil {
			return errors.Join(err, addErr)
		}
		return err
	}
	return nil
}

// Sync pulls external filesystem changes into the store.
func (s *Service) Sync(ctx context.Context) (*SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Sync(ctx)
}

// Changes previews the next sync.
func (s *Service) Changes(ctx context.Context) (DiffResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Changes(ctx)
}

// Files lists the mirrored files.
func (s *Service) Files(ctx context.Context) ([]FileStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Files(ctx)
}
