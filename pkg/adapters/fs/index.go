package fs

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/aretw0/mirror/pkg/core"
)

// FileRecord describes where a document lives on disk.
type FileRecord struct {
	DocumentID   string    `json:"id"`
	Path         string    `json:"path"` // Absolute, cleaned
	ContentType  string    `json:"contentType"`
	HasCompanion bool      `json:"hasCompanion"`
	ModifiedAt   time.Time `json:"modifiedAt"`
	Dirty        bool      `json:"dirty,omitempty"`
}

// Index maps document IDs to their file records.
// The path to ID view is derived from the primary map on demand.
//
// Index is not safe for concurrent use; its owner serializes access.
type Index struct {
	records map[string]FileRecord
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{records: make(map[string]FileRecord)}
}

// Get returns the record for id.
func (i *Index) Get(id string) (FileRecord, bool) {
	rec, ok := i.records[id]
	return rec, ok
}

// Put inserts or replaces the record for rec.DocumentID.
// It fails with core.ErrPathConflict when another document already owns rec.Path.
func (i *Index) Put(rec FileRecord) error {
	if rec.DocumentID == "" {
		return fmt.Errorf("index record for %s has no document ID", rec.Path)
	}
	rec.Path = filepath.Clean(rec.Path)
	for id, other := range i.records {
		if id != rec.DocumentID && other.Path == rec.Path {
			return fmt.Errorf("%w: %s is owned by %q", core.ErrPathConflict, rec.Path, id)
		}
	}
	i.records[rec.DocumentID] = rec
	return nil
}

// Delete removes the record for id. Unknown IDs are ignored.
func (i *Index) Delete(id string) {
	delete(i.records, id)
}

// PathIndex derives the reverse view, path to document ID.
func (i *Index) PathIndex() map[string]string {
	view := make(map[string]string, len(i.records))
	for id, rec := range i.records {
		view[rec.Path] = id
	}
	return view
}

// Lookup resolves a path to the record that owns it.
func (i *Index) Lookup(path string) (FileRecord, bool) {
	path = filepath.Clean(path)
	for _, rec := range i.records {
		if rec.Path == path {
			return rec, true
		}
	}
	return FileRecord{}, false
}

// Records returns all records sorted by path.
func (i *Index) Records() []FileRecord {
	out := make([]FileRecord, 0, len(i.records))
	for _, rec := range i.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Path < out[b].Path })
	return out
}

// Range iterates over records in path order.
// callback returns true to continue, false to stop.
func (i *Index) Range(callback func(rec FileRecord) bool) {
	for _, rec := range i.Records() {
		if !callback(rec) {
			return
		}
	}
}

// Len returns the number of records.
func (i *Index) Len() int {
	return len(i.records)
}
