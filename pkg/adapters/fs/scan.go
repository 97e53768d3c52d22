package fs

import (
	"errors"
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/mirror/pkg/core"
)

// CompanionSuffix is appended to a file's path to name its metadata companion.
const CompanionSuffix = ".meta"

// ScanEntry is a file observed by the scanner.
type ScanEntry = core.FileStat

// Scan maps absolute file paths to what the scanner saw.
type Scan map[string]ScanEntry

// Sorted returns the entries ordered by path.
func (s Scan) Sorted() []ScanEntry {
	out := make([]ScanEntry, 0, len(s))
	for _, e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ScanOptions narrows what the scanner reports.
type ScanOptions struct {
	// Ignore holds doublestar patterns matched against slash-separated
	// paths relative to the root. A matching directory is not descended.
	Ignore []string
	// SkipDirs are directory names never descended, wherever they appear.
	SkipDirs []string
}

// ScanDir walks root and returns every regular file that is neither a
// companion nor an atomic-write temp file. Any unreadable directory aborts
// the scan; no partial result is returned.
func ScanDir(root string, opts ScanOptions) (Scan, error) {
	root = filepath.Clean(root)
	skip := make(map[string]bool, len(opts.SkipDirs)+1)
	skip[".git"] = true
	for _, d := range opts.SkipDirs {
		skip[d] = true
	}

	result := make(Scan)
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path != root && errors.Is(err, iofs.ErrNotExist) {
				// Vanished during the walk.
				return nil
			}
			return &core.IOError{Op: "scan", Path: path, Err: err}
		}

		if path != root && ignored(root, path, opts.Ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		if strings.HasSuffix(name, CompanionSuffix) || isTempFile(name) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				return nil
			}
			return &core.IOError{Op: "stat", Path: path, Err: err}
		}
		result[path] = ScanEntry{Path: path, ModifiedAt: info.ModTime()}
		return nil
	})
	if err != nil {
		var ioErr *core.IOError
		if !errors.As(err, &ioErr) {
			err = &core.IOError{Op: "scan", Path: root, Err: err}
		}
		return nil, err
	}
	return result, nil
}

func ignored(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
