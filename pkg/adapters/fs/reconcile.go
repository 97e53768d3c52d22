package fs

import (
	"context"
	"fmt"

	"github.com/aretw0/mirror/pkg/core"
)

// Reconcile applies a diff to the index and the store.
//
// All removals run before any create or modify, so a file renamed on disk
// frees its document ID before the new path claims it. Failures are per
// path and recorded in the report; only cancellation stops the pass, in
// which case the partial report is returned with ctx.Err().
func (r *Repository) Reconcile(ctx context.Context, diff core.DiffResult, scan Scan) (*core.SyncReport, error) {
	report := &core.SyncReport{}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	paths := r.index.PathIndex()
	for _, path := range diff.Removed {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		id, ok := paths[path]
		if !ok {
			r.note(ctx, report, core.ReportEntry{Path: path, Kind: core.ChangeSkipped})
			continue
		}
		r.note(ctx, report, r.remove(ctx, id, path))
	}

	for _, path := range diff.Created {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r.note(ctx, report, r.loadNew(ctx, path, scan[path]))
	}

	// Resolve after removals so a path is looked up in the current index.
	paths = r.index.PathIndex()
	for _, path := range diff.Modified {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		id, ok := paths[path]
		if !ok {
			r.note(ctx, report, core.ReportEntry{Path: path, Kind: core.ChangeSkipped})
			continue
		}
		for _, e := range r.reload(ctx, id, scan[path]) {
			r.note(ctx, report, e)
		}
	}
	return report, nil
}

func (r *Repository) note(ctx context.Context, report *core.SyncReport, e core.ReportEntry) {
	report.Record(e.DocumentID, e.Path, e.Kind, e.Err)
	switch e.Kind {
	case core.ChangeFailed:
		r.logger.Warn("reconcile failed", "path", e.Path, "id", e.DocumentID, "error", e.Err)
	case core.ChangeSkipped:
		r.logger.Debug("reconcile skipped vanished path", "path", e.Path)
	default:
		r.logger.Debug("reconciled", "kind", e.Kind, "id", e.DocumentID, "path", e.Path)
	}
}

// remove drops the record first; the store's delete notification then finds
// nothing to do.
func (r *Repository) remove(ctx context.Context, id, path string) core.ReportEntry {
	r.index.Delete(id)
	if err := r.store.Delete(ctx, id); err != nil {
		return core.ReportEntry{DocumentID: id, Path: path, Kind: core.ChangeFailed, Err: err}
	}
	return core.ReportEntry{DocumentID: id, Path: path, Kind: core.ChangeDeleted}
}

// load reads exactly one document from path.
func (r *Repository) load(path string) (core.Document, LoadResult, error) {
	res, err := r.loader.Load(path)
	if err != nil {
		return core.Document{}, res, err
	}
	if n := len(res.Documents); n != 1 {
		return core.Document{}, res, &core.ParseError{
			Path: path,
			Err:  fmt.Errorf("file holds %d documents, want exactly one", n),
		}
	}
	return res.Documents[0], res, nil
}

func (r *Repository) loadNew(ctx context.Context, path string, entry ScanEntry) core.ReportEntry {
	doc, res, err := r.load(path)
	if err != nil {
		if isNotExist(err) {
			return core.ReportEntry{Path: path, Kind: core.ChangeSkipped}
		}
		return core.ReportEntry{Path: path, Kind: core.ChangeFailed, Err: err}
	}

	if other, ok := r.index.Get(doc.ID); ok && other.Path != path {
		err := fmt.Errorf("%w: document %q already lives at %s", core.ErrPathConflict, doc.ID, other.Path)
		return core.ReportEntry{DocumentID: doc.ID, Path: path, Kind: core.ChangeFailed, Err: err}
	}

	rec := FileRecord{
		DocumentID:   doc.ID,
		Path:         path,
		ContentType:  res.ContentType,
		HasCompanion: res.HasCompanion,
		ModifiedAt:   entry.ModifiedAt,
	}
	if err := r.index.Put(rec); err != nil {
		return core.ReportEntry{DocumentID: doc.ID, Path: path, Kind: core.ChangeFailed, Err: err}
	}
	if err := r.store.Add(ctx, doc); err != nil {
		r.index.Delete(doc.ID)
		return core.ReportEntry{DocumentID: doc.ID, Path: path, Kind: core.ChangeFailed, Err: err}
	}
	return core.ReportEntry{DocumentID: doc.ID, Path: path, Kind: core.ChangeCreated}
}

// reload re-reads the file of a known document. Disk wins: the content is
// loaded whatever the store holds. The record stays dirty until the store
// accepts the new version, so a failed reload is retried on the next sync.
//
// When the file now yields a different ID, the old document is deleted and
// the new one created at the same path.
func (r *Repository) reload(ctx context.Context, id string, entry ScanEntry) []core.ReportEntry {
	rec, _ := r.index.Get(id)
	rec.Dirty = true
	if err := r.index.Put(rec); err != nil {
		return []core.ReportEntry{{DocumentID: id, Path: rec.Path, Kind: core.ChangeFailed, Err: err}}
	}

	doc, res, err := r.load(rec.Path)
	if err != nil {
		if isNotExist(err) {
			return []core.ReportEntry{{DocumentID: id, Path: rec.Path, Kind: core.ChangeSkipped}}
		}
		return []core.ReportEntry{{DocumentID: id, Path: rec.Path, Kind: core.ChangeFailed, Err: err}}
	}

	next := rec
	next.DocumentID = doc.ID
	next.ModifiedAt = entry.ModifiedAt
	next.HasCompanion = res.HasCompanion
	next.Dirty = false

	if doc.ID == id {
		if err := r.store.Add(ctx, doc); err != nil {
			return []core.ReportEntry{{DocumentID: id, Path: rec.Path, Kind: core.ChangeFailed, Err: err}}
		}
		if err := r.index.Put(next); err != nil {
			return []core.ReportEntry{{DocumentID: id, Path: rec.Path, Kind: core.ChangeFailed, Err: err}}
		}
		return []core.ReportEntry{{DocumentID: id, Path: rec.Path, Kind: core.ChangeModified}}
	}

	if other, ok := r.index.Get(doc.ID); ok {
		err := fmt.Errorf("%w: document %q already lives at %s", core.ErrPathConflict, doc.ID, other.Path)
		return []core.ReportEntry{{DocumentID: doc.ID, Path: rec.Path, Kind: core.ChangeFailed, Err: err}}
	}

	entries := []core.ReportEntry{r.remove(ctx, id, rec.Path)}
	if err := r.index.Put(next); err != nil {
		return append(entries, core.ReportEntry{DocumentID: doc.ID, Path: rec.Path, Kind: core.ChangeFailed, Err: err})
	}
	if err := r.store.Add(ctx, doc); err != nil {
		r.index.Delete(doc.ID)
		return append(entries, core.ReportEntry{DocumentID: doc.ID, Path: rec.Path, Kind: core.ChangeFailed, Err: err})
	}
	return append(entries, core.ReportEntry{DocumentID: doc.ID, Path: rec.Path, Kind: core.ChangeCreated})
}
