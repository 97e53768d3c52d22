package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/mirror/pkg/adapters/memory"
	"github.com/aretw0/mirror/pkg/core"
)

func newTestRepo(t *testing.T, mutate ...func(*Config)) (*Repository, string) {
	t.Helper()
	root := t.TempDir()
	cfg := Config{
		Path:      root,
		Store:     memory.NewStore(),
		StatRetry: StatRetry{Attempts: 3, Delay: time.Millisecond},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	repo := NewRepository(cfg)
	if err := repo.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return repo, root
}

type fakeInfo struct {
	os.FileInfo
	mtime time.Time
}

func (f fakeInfo) ModTime() time.Time { return f.mtime }

func TestWrite_NewDocument(t *testing.T) {
	repo, root := newTestRepo(t)
	ctx := context.Background()

	err := repo.Write(ctx, core.Document{ID: "Hello", Content: "world", Metadata: core.Metadata{"tags": []any{"x"}}})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	path := filepath.Join(root, "Hello.md")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "---\ntags:\n  - x\n---\nworld" {
		t.Errorf("file content = %q", data)
	}

	rec, ok := repo.Index().Get("Hello")
	if !ok {
		t.Fatal("record not created")
	}
	info, _ := os.Stat(path)
	if rec.Path != path || !rec.ModifiedAt.Equal(info.ModTime()) || rec.ContentType != "text/x-markdown" {
		t.Errorf("record = %+v", rec)
	}
	if _, err := os.Stat(path + CompanionSuffix); !os.IsNotExist(err) {
		t.Error("markdown must not get a companion")
	}
}

func TestWrite_UpdateKeepsPath(t *testing.T) {
	repo, root := newTestRepo(t)
	ctx := context.Background()

	_ = repo.Write(ctx, core.Document{ID: "Note", Content: "v1"})
	// Occupy the path a new document would take so a re-selection would differ.
	writeTestFile(t, filepath.Join(root, "Note 1.md"), "other")

	before, _ := repo.Index().Get("Note")
	// Make sure the second write lands on a later mtime.
	old := before.ModifiedAt.Add(-time.Second)
	before.ModifiedAt = old
	_ = repo.Index().Put(before)

	if err := repo.Write(ctx, core.Document{ID: "Note", Content: "v2"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	after, _ := repo.Index().Get("Note")
	if after.Path != before.Path {
		t.Errorf("path moved from %s to %s", before.Path, after.Path)
	}
	if !after.ModifiedAt.After(old) {
		t.Errorf("ModifiedAt not advanced")
	}
	data, _ := os.ReadFile(after.Path)
	if string(data) != "v2" {
		t.Errorf("content = %q", data)
	}
}

func TestWrite_Companion(t *testing.T) {
	repo, root := newTestRepo(t, func(c *Config) { c.DefaultExt = ".txt" })
	ctx := context.Background()
	path := filepath.Join(root, "Plain.txt")

	if err := repo.Write(ctx, core.Document{ID: "Plain", Content: "text", Metadata: core.Metadata{"type": "text/plain"}}); err != nil {
		t.Fatal(err)
	}
	meta, err := os.ReadFile(path + CompanionSuffix)
	if err != nil {
		t.Fatalf("companion missing: %v", err)
	}
	if string(meta) != "type: text/plain\n" {
		t.Errorf("companion = %q", meta)
	}
	rec, _ := repo.Index().Get("Plain")
	if !rec.HasCompanion {
		t.Error("HasCompanion not set")
	}

	// Dropping the metadata removes the stale companion.
	rec.ModifiedAt = rec.ModifiedAt.Add(-time.Second)
	_ = repo.Index().Put(rec)
	if err := repo.Write(ctx, core.Document{ID: "Plain", Content: "text"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + CompanionSuffix); !os.IsNotExist(err) {
		t.Error("stale companion left behind")
	}
	rec, _ = repo.Index().Get("Plain")
	if rec.HasCompanion {
		t.Error("HasCompanion still set")
	}
}

func TestWrite_TitleEmbeddedWhenPathDiffers(t *testing.T) {
	repo, root := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Write(ctx, core.Document{ID: "What?", Content: "q"}); err != nil {
		t.Fatal(err)
	}
	loader := &FileLoader{Root: root, Serializers: DefaultSerializers(false)}
	res, err := loader.Load(filepath.Join(root, "What_.md"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Documents[0].ID != "What?" {
		t.Errorf("reloaded ID = %q", res.Documents[0].ID)
	}
}

func TestWrite_StaleMetadata(t *testing.T) {
	repo, root := newTestRepo(t)
	ctx := context.Background()

	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(root, "Frozen.md")
	_ = repo.Index().Put(FileRecord{DocumentID: "Frozen", Path: path, ModifiedAt: frozen})

	calls := 0
	repo.stat = func(string) (os.FileInfo, error) {
		calls++
		return fakeInfo{mtime: frozen}, nil
	}

	err := repo.Write(ctx, core.Document{ID: "Frozen", Content: "new"})
	var stale *core.StaleMetadataError
	if !errors.As(err, &stale) {
		t.Fatalf("expected StaleMetadataError, got %v", err)
	}
	if stale.Attempts != 3 || calls != 3 {
		t.Errorf("attempts = %d, stat calls = %d", stale.Attempts, calls)
	}

	rec, _ := repo.Index().Get("Frozen")
	if !rec.ModifiedAt.Equal(frozen) {
		t.Error("record must keep its old ModifiedAt")
	}
	if data, _ := os.ReadFile(path); string(data) != "new" {
		t.Error("the file itself is still written")
	}
}

func TestWrite_StaleMetadataNewDocumentNotIndexed(t *testing.T) {
	repo, _ := newTestRepo(t)
	repo.stat = func(string) (os.FileInfo, error) {
		return nil, os.ErrNotExist
	}

	err := repo.Write(context.Background(), core.Document{ID: "Lost"})
	if !errors.Is(err, core.ErrStaleMetadata) {
		t.Fatalf("expected ErrStaleMetadata, got %v", err)
	}
	if _, ok := repo.Index().Get("Lost"); ok {
		t.Error("new record inserted despite unconfirmed write")
	}
}

func TestWrite_StatRetryRecovers(t *testing.T) {
	repo, root := newTestRepo(t)
	prev := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	next := prev.Add(time.Second)
	_ = repo.Index().Put(FileRecord{DocumentID: "Slow", Path: filepath.Join(root, "Slow.md"), ModifiedAt: prev})

	calls := 0
	repo.stat = func(string) (os.FileInfo, error) {
		calls++
		if calls < 3 {
			return fakeInfo{mtime: prev}, nil
		}
		return fakeInfo{mtime: next}, nil
	}

	if err := repo.Write(context.Background(), core.Document{ID: "Slow"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rec, _ := repo.Index().Get("Slow")
	if !rec.ModifiedAt.Equal(next) {
		t.Errorf("ModifiedAt = %v, want %v", rec.ModifiedAt, next)
	}
}

func TestWrite_ReadOnly(t *testing.T) {
	repo, root := newTestRepo(t, func(c *Config) { c.ReadOnly = true })

	err := repo.Write(context.Background(), core.Document{ID: "x"})
	if !errors.Is(err, core.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if entries, _ := os.ReadDir(root); len(entries) != 0 {
		t.Error("read-only write touched the disk")
	}
}
