package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/mirror/pkg/core"
)

// StatRetry bounds how long Write waits for a fresh modification time.
type StatRetry struct {
	Attempts int
	Delay    time.Duration
}

// DefaultStatRetry is 3 attempts, 10ms apart.
func DefaultStatRetry() StatRetry {
	return StatRetry{Attempts: 3, Delay: 10 * time.Millisecond}
}

// Write persists doc to its file, creating the file for a new document.
//
// Workflow:
//  1. Resolve the record, or ask the PathSelector for a free path.
//  2. Serialize with the serializer for the file extension and write atomically.
//  3. Write the companion when the format cannot hold the metadata, remove it otherwise.
//  4. Stat until the modification time moves, then update the record.
//
// If the time never moves, the file stays written but the record is left as
// it was and a *core.StaleMetadataError is returned.
func (r *Repository) Write(ctx context.Context, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if doc.ID == "" {
		return errors.New("document has no ID")
	}

	rec, exists := r.index.Get(doc.ID)
	if !exists {
		path, err := r.selector.ChoosePath(doc, r.index)
		if err != nil {
			return fmt.Errorf("choose path for %q: %w", doc.ID, err)
		}
		rec = FileRecord{
			DocumentID:  doc.ID,
			Path:        filepath.Clean(path),
			ContentType: r.serializers.For(path).ContentType(),
		}
	}

	ser := r.serializers.For(rec.Path)
	out := doc.Clone()
	if out.Metadata == nil {
		out.Metadata = make(core.Metadata)
	}
	if pathID(r.Path, rec.Path) == doc.ID {
		delete(out.Metadata, "title")
	} else {
		out.Metadata["title"] = doc.ID
	}

	data, err := ser.Serialize(out)
	if err != nil {
		return fmt.Errorf("failed to serialize %q: %w", doc.ID, err)
	}
	if err := os.MkdirAll(filepath.Dir(rec.Path), 0755); err != nil {
		return &core.IOError{Op: "mkdir", Path: filepath.Dir(rec.Path), Err: err}
	}
	if err := writeFileAtomic(rec.Path, data, 0644); err != nil {
		return err
	}

	hasCompanion, err := r.writeCompanion(rec.Path, ser, out.Metadata)
	if err != nil {
		return err
	}

	mtime, err := r.awaitModTime(ctx, rec.Path, rec.ModifiedAt)
	if err != nil {
		r.logger.Warn("write not confirmed", "id", doc.ID, "path", rec.Path, "error", err)
		return err
	}

	rec.ModifiedAt = mtime
	rec.HasCompanion = hasCompanion
	rec.Dirty = false
	if err := r.index.Put(rec); err != nil {
		return err
	}
	r.logger.Debug("document written", "id", doc.ID, "path", rec.Path, "created", !exists)
	return nil
}

func (r *Repository) writeCompanion(path string, ser Serializer, meta core.Metadata) (bool, error) {
	companion := path + CompanionSuffix
	if ser.EmbedsMetadata() || len(meta) == 0 {
		if err := os.Remove(companion); err != nil && !isNotExist(err) {
			return false, &core.IOError{Op: "remove", Path: companion, Err: err}
		}
		return false, nil
	}

	data, err := serializeCompanion(meta)
	if err != nil {
		return false, fmt.Errorf("failed to serialize metadata for %s: %w", path, err)
	}
	if err := writeFileAtomic(companion, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}

// awaitModTime stats path until its modification time differs from prev.
func (r *Repository) awaitModTime(ctx context.Context, path string, prev time.Time) (time.Time, error) {
	retry := r.config.StatRetry
	for attempt := 1; ; attempt++ {
		info, err := r.stat(path)
		if err == nil && !info.ModTime().Equal(prev) {
			return info.ModTime(), nil
		}
		if attempt >= retry.Attempts {
			return time.Time{}, &core.StaleMetadataError{Path: path, Attempts: attempt}
		}

		timer := time.NewTimer(retry.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return time.Time{}, ctx.Err()
		case <-timer.C:
		}
	}
}
