package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mirror/pkg/core"
)

// LoadResult is what a file turned into.
type LoadResult struct {
	Documents    []core.Document
	ContentType  string
	HasCompanion bool
}

// Loader reads a file at a path. It is only ever given paths, never IDs.
// A file that no longer exists yields an error matching os.ErrNotExist.
type Loader interface {
	Load(path string) (LoadResult, error)
}

// FileLoader is the default Loader, backed by the serializer registry.
type FileLoader struct {
	Root        string
	Serializers Serializers
}

// Load parses path and merges its companion metadata over the parsed fields.
//
// The document ID is the "title" field when present, otherwise the path
// relative to Root without its extension.
func (l *FileLoader) Load(path string) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, &core.IOError{Op: "read", Path: path, Err: err}
	}

	ser := l.Serializers.For(path)
	doc, err := ser.Parse(data)
	if err != nil {
		return LoadResult{}, &core.ParseError{Path: path, Err: err}
	}
	if doc.Metadata == nil {
		doc.Metadata = make(core.Metadata)
	}

	res := LoadResult{ContentType: ser.ContentType()}

	companion, err := os.ReadFile(path + CompanionSuffix)
	switch {
	case err == nil:
		meta, err := parseCompanion(companion)
		if err != nil {
			return LoadResult{}, &core.ParseError{Path: path + CompanionSuffix, Err: err}
		}
		for k, v := range meta {
			doc.Metadata[k] = v
		}
		res.HasCompanion = true
	case !errors.Is(err, iofs.ErrNotExist):
		return LoadResult{}, &core.IOError{Op: "read", Path: path + CompanionSuffix, Err: err}
	}

	doc.ID = l.documentID(path, doc.Metadata)
	res.Documents = []core.Document{doc}
	return res, nil
}

func (l *FileLoader) documentID(path string, meta core.Metadata) string {
	if title, ok := meta["title"].(string); ok && title != "" {
		delete(meta, "title")
		return title
	}
	return pathID(l.Root, path)
}

// pathID derives the ID a file would get without a title field.
func pathID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
