package fs

import (
	"sort"

	"github.com/aretw0/mirror/pkg/core"
)

// DiffResult is re-exported for callers of this package.
type DiffResult = core.DiffResult

// Diff compares the index against a scan.
//
// A path is modified only when the scanned time is strictly after the
// recorded one; created paths are never also reported as modified.
func Diff(idx *Index, scan Scan) DiffResult {
	res := DiffResult{
		Created:  []string{},
		Removed:  []string{},
		Modified: []string{},
	}
	known := idx.PathIndex()

	for path, id := range known {
		entry, ok := scan[path]
		if !ok {
			res.Removed = append(res.Removed, path)
			continue
		}
		rec, _ := idx.Get(id)
		if entry.ModifiedAt.After(rec.ModifiedAt) {
			res.Modified = append(res.Modified, path)
		}
	}
	for path := range scan {
		if _, ok := known[path]; !ok {
			res.Created = append(res.Created, path)
		}
	}

	sort.Strings(res.Created)
	sort.Strings(res.Removed)
	sort.Strings(res.Modified)
	return res
}
