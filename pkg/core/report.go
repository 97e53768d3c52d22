package core

import "sort"

// DiffResult classifies paths by comparing the index with a fresh scan.
// Each list is sorted and the three lists are pairwise disjoint.
type DiffResult struct {
	Created  []string `json:"created"`
	Removed  []string `json:"removed"`
	Modified []string `json:"modified"`
}

// Empty reports whether the diff carries no changes.
func (d DiffResult) Empty() bool {
	return len(d.Created) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// ChangeKind is the outcome of reconciling a single path.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeSkipped  ChangeKind = "skipped"
	ChangeFailed   ChangeKind = "failed"
)

// ReportEntry is one line of a SyncReport.
type ReportEntry struct {
	DocumentID string     `json:"title,omitempty"`
	Path       string     `json:"file"`
	Kind       ChangeKind `json:"kind"`
	Err        error      `json:"-"`
}

// SyncReport lists what a reconcile pass did, in processing order.
type SyncReport struct {
	Entries []ReportEntry
}

func (r *SyncReport) add(e ReportEntry) {
	r.Entries = append(r.Entries, e)
}

// Record appends an entry. Reconcilers outside this package use it.
func (r *SyncReport) Record(id, path string, kind ChangeKind, err error) {
	r.add(ReportEntry{DocumentID: id, Path: path, Kind: kind, Err: err})
}

func (r *SyncReport) filter(kind ChangeKind) []ReportEntry {
	out := []ReportEntry{}
	if r == nil {
		return out
	}
	for _, e := range r.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Created returns the entries for newly loaded documents.
func (r *SyncReport) Created() []ReportEntry { return r.filter(ChangeCreated) }

// Removed returns the entries for documents deleted because their file disappeared.
func (r *SyncReport) Removed() []ReportEntry { return r.filter(ChangeDeleted) }

// Modified returns the entries for reloaded documents.
func (r *SyncReport) Modified() []ReportEntry { return r.filter(ChangeModified) }

// Skipped returns the entries for paths that vanished mid-sync.
func (r *SyncReport) Skipped() []ReportEntry { return r.filter(ChangeSkipped) }

// Failed returns the entries whose load failed.
func (r *SyncReport) Failed() []ReportEntry { return r.filter(ChangeFailed) }

// Counts returns the number of entries per kind.
func (r *SyncReport) Counts() map[ChangeKind]int {
	counts := make(map[ChangeKind]int)
	if r == nil {
		return counts
	}
	for _, e := range r.Entries {
		counts[e.Kind]++
	}
	return counts
}

// DeletedFile pairs a removed document with the file it came from.
type DeletedFile struct {
	Title string `json:"title"`
	File  string `json:"file"`
}

// FailedFile is a path that could not be reconciled.
type FailedFile struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// SyncResult is the wire shape of a sync for remote callers.
// New, Modified and Skipped hold file paths; only Deleted names the document,
// since its file is gone. All lists are non-nil so they encode as empty arrays.
type SyncResult struct {
	New      []string      `json:"new"`
	Deleted  []DeletedFile `json:"deleted"`
	Modified []string      `json:"modified"`
	Failed   []FailedFile  `json:"failed"`
	Skipped  []string      `json:"skipped"`
}

// NewSyncResult flattens a report into file lists.
func NewSyncResult(r *SyncReport) SyncResult {
	res := SyncResult{
		New:      []string{},
		Deleted:  []DeletedFile{},
		Modified: []string{},
		Failed:   []FailedFile{},
		Skipped:  []string{},
	}
	if r == nil {
		return res
	}
	for _, e := range r.Entries {
		switch e.Kind {
		case ChangeCreated:
			res.New = append(res.New, e.Path)
		case ChangeModified:
			res.Modified = append(res.Modified, e.Path)
		case ChangeDeleted:
			res.Deleted = append(res.Deleted, DeletedFile{Title: e.DocumentID, File: e.Path})
		case ChangeFailed:
			msg := ""
			if e.Err != nil {
				msg = e.Err.Error()
			}
			res.Failed = append(res.Failed, FailedFile{File: e.Path, Error: msg})
		case ChangeSkipped:
			res.Skipped = append(res.Skipped, e.Path)
		}
	}
	sort.Strings(res.New)
	sort.Strings(res.Modified)
	return res
}
