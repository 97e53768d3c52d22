package core

import "context"

// Repository defines the contract for mirroring documents onto storage.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism.
//
// Implementations are not safe for concurrent use; Service serializes access.
type Repository interface {
	// Write persists a document, choosing a location for new ones.
	Write(ctx context.Context, doc Document) error

	// Delete removes the stored representation of a document.
	// Deleting an unknown document is not an error.
	Delete(ctx context.Context, id string) error

	// Sync detects external changes and applies them to the store.
	Sync(ctx context.Context) (*SyncReport, error)

	// Changes previews what the next Sync would do without applying it.
	Changes(ctx context.Context) (DiffResult, error)

	// Files lists the files currently mirrored, sorted by path.
	Files(ctx context.Context) ([]FileStat, error)

	// Initialize ensures the underlying storage is ready (e.g., create directories).
	Initialize(ctx context.Context) error
}
