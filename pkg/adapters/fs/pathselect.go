package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/mirror/pkg/core"
)

// PathSelector picks the file path for a document that has none yet.
// The returned path must not be owned by any record in idx.
type PathSelector interface {
	ChoosePath(doc core.Document, idx *Index) (string, error)
}

// PathRule routes documents into a directory under the root.
// A rule applies when Match (a doublestar pattern) matches the document ID,
// or when the document carries Tag in its "tags" metadata.
type PathRule struct {
	Match string `yaml:"match,omitempty"`
	Tag   string `yaml:"tag,omitempty"`
	Dir   string `yaml:"dir"`
}

func (r PathRule) applies(doc core.Document) bool {
	if r.Match != "" {
		if ok, _ := doublestar.Match(r.Match, doc.ID); ok {
			return true
		}
	}
	if r.Tag != "" {
		for _, t := range tagsOf(doc.Metadata) {
			if t == r.Tag {
				return true
			}
		}
	}
	return false
}

func tagsOf(meta core.Metadata) []string {
	switch v := meta["tags"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Fields(v)
	}
	return nil
}

// RuleSelector is the default PathSelector.
type RuleSelector struct {
	Root        string
	Rules       []PathRule
	DefaultExt  string
	Serializers Serializers
}

const maxUniqueSuffix = 10000

func (s *RuleSelector) ChoosePath(doc core.Document, idx *Index) (string, error) {
	if doc.ID == "" {
		return "", errors.New("cannot choose a path for a document without ID")
	}

	name := doc.ID
	ext := filepath.Ext(name)
	if ext == "" || !s.Serializers.Has(ext) {
		ext = s.DefaultExt
		if ext == "" {
			ext = ".md"
		}
	} else {
		name = strings.TrimSuffix(name, ext)
	}

	dir := s.Root
	for _, rule := range s.Rules {
		if rule.applies(doc) {
			dir = filepath.Join(s.Root, filepath.FromSlash(sanitizeRel(rule.Dir)))
			break
		}
	}

	base := filepath.Join(dir, filepath.FromSlash(sanitizeRel(name)))
	if !within(s.Root, base) {
		return "", fmt.Errorf("path for %q escapes root", doc.ID)
	}

	taken := idx.PathIndex()
	for n := 0; n < maxUniqueSuffix; n++ {
		candidate := base + ext
		if n > 0 {
			candidate = fmt.Sprintf("%s %d%s", base, n, ext)
		}
		if _, ok := taken[candidate]; ok {
			continue
		}
		if _, err := os.Lstat(candidate); err == nil || !errors.Is(err, iofs.ErrNotExist) {
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("no free path for %q", doc.ID)
}

// sanitizeRel makes a slash-separated relative path safe to join under a
// root: reserved characters become underscores and dot segments are neutralized.
func sanitizeRel(p string) string {
	segments := strings.Split(p, "/")
	out := segments[:0]
	for _, seg := range segments {
		seg = strings.Map(func(r rune) rune {
			if r < 0x20 || strings.ContainsRune(`<>:"\|?*`, r) {
				return '_'
			}
			return r
		}, seg)
		seg = strings.TrimSpace(seg)
		switch seg {
		case "":
			continue
		case ".", "..":
			seg = "_"
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		return "_"
	}
	return strings.Join(out, "/")
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
