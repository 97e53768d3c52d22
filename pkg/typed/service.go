// Package typed decodes document metadata into Go structs.
package typed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/mirror/pkg/core"
)

// DocumentModel is a document whose metadata is decoded into T.
type DocumentModel[T any] struct {
	ID      string
	Content string
	Data    T
}

// Service gives typed access to a core.Service.
type Service[T any] struct {
	svc *core.Service
}

func NewService[T any](svc *core.Service) *Service[T] {
	return &Service[T]{svc: svc}
}

// Save encodes Data into metadata and saves through the core service.
// A stale-metadata warning from the write is returned unchanged.
func (s *Service[T]) Save(ctx context.Context, doc *DocumentModel[T]) error {
	meta, err := toMetadata(doc.Data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", doc.ID, err)
	}
	return s.svc.SaveDocument(ctx, doc.ID, doc.Content, meta)
}

func (s *Service[T]) Get(ctx context.Context, id string) (*DocumentModel[T], error) {
	doc, err := s.svc.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromCore[T](doc)
}

// List decodes every document. Documents whose metadata does not fit T are
// skipped and their errors joined into the returned error.
func (s *Service[T]) List(ctx context.Context) ([]*DocumentModel[T], error) {
	docs, err := s.svc.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*DocumentModel[T], 0, len(docs))
	var errs []error
	for _, d := range docs {
		m, err := fromCore[T](d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, m)
	}
	return out, errors.Join(errs...)
}

func (s *Service[T]) Delete(ctx context.Context, id string) error {
	return s.svc.DeleteDocument(ctx, id)
}

func toMetadata(data any) (core.Metadata, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var meta core.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("metadata must encode as an object: %w", err)
	}
	return meta, nil
}

func fromCore[T any](doc core.Document) (*DocumentModel[T], error) {
	m := &DocumentModel[T]{ID: doc.ID, Content: doc.Content}
	if len(doc.Metadata) == 0 {
		return m, nil
	}
	raw, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, &m.Data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.ID, err)
	}
	return m, nil
}
