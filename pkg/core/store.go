package core

import "context"

// DeleteHandler is notified after a document leaves the store.
type DeleteHandler func(ctx context.Context, id string) error

// Store is the document store the filesystem mirrors.
// Add inserts or replaces by ID; Delete of an unknown ID is not an error.
type Store interface {
	Get(ctx context.Context, id string) (Document, bool)
	Add(ctx context.Context, doc Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) []Document

	// OnDelete registers a handler invoked after every Delete, including
	// deletes of unknown IDs. Handler errors are returned from Delete.
	OnDelete(h DeleteHandler)
}
