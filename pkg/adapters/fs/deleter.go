package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aretw0/mirror/pkg/core"
)

// Delete removes a document's file, its companion and any directories left
// empty, up to but excluding the root.
//
// The record is dropped before touching the disk and put back if the primary
// file cannot be removed. Unknown IDs succeed, which
// makes the store notification that follows a reconcile-driven delete a no-op.
// Companion and pruning failures come back as *core.CleanupError; the
// document is gone regardless.
func (r *Repository) Delete(ctx context.Context, id string) error {
	rec, ok := r.index.Get(id)
	if !ok {
		return nil
	}
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}

	r.index.Delete(id)
	if err := os.Remove(rec.Path); err != nil && !isNotExist(err) {
		// The file is still there, so the record must be too.
		if putErr := r.index.Put(rec); putErr != nil {
			r.logger.Error("record lost after failed delete", "id", id, "error", putErr)
		}
		return &core.IOError{Op: "remove", Path: rec.Path, Err: err}
	}

	var errs []error
	if rec.HasCompanion {
		companion := rec.Path + CompanionSuffix
		if err := os.Remove(companion); err != nil && !isNotExist(err) {
			errs = append(errs, &core.IOError{Op: "remove", Path: companion, Err: err})
		}
	}
	if err := r.pruneEmptyDirs(filepath.Dir(rec.Path)); err != nil {
		errs = append(errs, err)
	}

	r.logger.Debug("document removed", "id", id, "path", rec.Path)
	if len(errs) > 0 {
		return &core.CleanupError{Path: rec.Path, Errs: errs}
	}
	return nil
}

func (r *Repository) pruneEmptyDirs(dir string) error {
	for within(r.Path, dir) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if isNotExist(err) {
				dir = filepath.Dir(dir)
				continue
			}
			return &core.IOError{Op: "readdir", Path: dir, Err: err}
		}
		if len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil && !isNotExist(err) {
			return &core.IOError{Op: "rmdir", Path: dir, Err: err}
		}
		dir = filepath.Dir(dir)
	}
	return nil
}
