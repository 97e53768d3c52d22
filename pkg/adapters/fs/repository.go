package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/mirror/pkg/adapters/memory"
	"github.com/aretw0/mirror/pkg/core"
)

// DefaultSystemDir holds engine state and is never scanned.
const DefaultSystemDir = ".mirror"

// Repository mirrors a core.Store onto a directory tree.
//
// It owns the Index. Repository is not safe for concurrent use: core.Service
// serializes every call.
type Repository struct {
	Path        string
	config      Config
	store       core.Store
	index       *Index
	loader      Loader
	selector    PathSelector
	serializers Serializers
	logger      *slog.Logger

	stat func(string) (os.FileInfo, error)

	lastSync   *time.Time
	lastReport map[core.ChangeKind]int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	Store     core.Store   // Defaults to an empty memory store
	Loader    Loader       // Defaults to a FileLoader over Serializers
	Selector  PathSelector // Defaults to a RuleSelector over PathRules
	Logger    *slog.Logger
	SystemDir string // e.g. ".mirror"

	Serializers Serializers // Defaults to DefaultSerializers(Strict)
	Strict      bool
	Ignore      []string // doublestar patterns relative to Path
	PathRules   []PathRule
	DefaultExt  string // Extension for new documents, ".md" when empty
	StatRetry   StatRetry
	MustExist   bool
	ReadOnly    bool
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	config.Path = canonicalRoot(config.Path)
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.DefaultExt == "" {
		config.DefaultExt = ".md"
	}
	if !strings.HasPrefix(config.DefaultExt, ".") {
		config.DefaultExt = "." + config.DefaultExt
	}
	if config.StatRetry.Attempts <= 0 {
		config.StatRetry = DefaultStatRetry()
	}
	if config.Serializers == nil {
		config.Serializers = DefaultSerializers(config.Strict)
	}
	if config.Store == nil {
		config.Store = memory.NewStore()
	}
	if config.Loader == nil {
		config.Loader = &FileLoader{Root: config.Path, Serializers: config.Serializers}
	}
	if config.Selector == nil {
		config.Selector = &RuleSelector{
			Root:        config.Path,
			Rules:       config.PathRules,
			DefaultExt:  config.DefaultExt,
			Serializers: config.Serializers,
		}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Repository{
		Path:        config.Path,
		config:      config,
		store:       config.Store,
		index:       NewIndex(),
		loader:      config.Loader,
		selector:    config.Selector,
		serializers: config.Serializers,
		logger:      logger,
		stat:        os.Stat,
	}
}

// Store returns the document store this repository mirrors.
func (r *Repository) Store() core.Store { return r.store }

// Index exposes the file index. Callers must respect the owner's locking.
func (r *Repository) Index() *Index { return r.index }

// Initialize prepares the root directory.
// When the root is a git work tree, the system directory is added to .gitignore.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("root path does not exist: %s", r.Path)
		}
		if err != nil {
			return &core.IOError{Op: "stat", Path: r.Path, Err: err}
		}
		if !info.IsDir() {
			return fmt.Errorf("root path is not a directory: %s", r.Path)
		}
	} else if !r.config.ReadOnly {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create root directory: %w", err)
		}
	}

	// A root created just now could not be resolved by NewRepository.
	if resolved := canonicalRoot(r.Path); resolved != r.Path {
		r.rebase(resolved)
	}

	if r.config.ReadOnly {
		return nil
	}
	if info, err := os.Stat(filepath.Join(r.Path, ".git")); err == nil && info.IsDir() {
		if _, err := r.ensureIgnore(); err != nil {
			return fmt.Errorf("failed to ensure .gitignore: %w", err)
		}
	}
	return nil
}

// canonicalRoot resolves symlinks so the scanner, the writer and the index
// agree on one spelling of every path. WalkDir does not follow a symlinked
// root. A root that does not exist yet is only cleaned.
func canonicalRoot(path string) string {
	path = filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

// rebase moves an empty repository onto root, including the default loader
// and selector that were built from the old spelling.
func (r *Repository) rebase(root string) {
	if r.index.Len() > 0 {
		return
	}
	old := r.Path
	r.Path = root
	r.config.Path = root
	if l, ok := r.loader.(*FileLoader); ok && l.Root == old {
		l.Root = root
	}
	if s, ok := r.selector.(*RuleSelector); ok && s.Root == old {
		s.Root = root
	}
}

func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	ignoreEntry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// Seed loads records produced by an external bootstrap. Documents are
// expected to be in the store already.
func (r *Repository) Seed(records []FileRecord) error {
	for _, rec := range records {
		if err := r.index.Put(rec); err != nil {
			return fmt.Errorf("seed %s: %w", rec.DocumentID, err)
		}
	}
	return nil
}

// Bootstrap is the cold start: a sync against an empty index, which loads
// every file under the root into the store.
func (r *Repository) Bootstrap(ctx context.Context) (*core.SyncReport, error) {
	if r.index.Len() > 0 {
		return nil, errors.New("repository already bootstrapped")
	}
	return r.Sync(ctx)
}

func (r *Repository) scanOptions() ScanOptions {
	return ScanOptions{
		Ignore:   r.config.Ignore,
		SkipDirs: []string{r.config.SystemDir},
	}
}

func (r *Repository) scan(ctx context.Context) (Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ScanDir(r.Path, r.scanOptions())
}

// Sync runs one pass: scan, diff against the index, reconcile.
// A scan failure aborts before the index is touched.
func (r *Repository) Sync(ctx context.Context) (*core.SyncReport, error) {
	scan, err := r.scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync %s: %w", r.Path, err)
	}
	diff := Diff(r.index, scan)

	report, err := r.Reconcile(ctx, diff, scan)
	if report != nil {
		now := time.Now()
		r.lastSync = &now
		r.lastReport = report.Counts()
	}
	if err != nil {
		return report, err
	}

	counts := report.Counts()
	level := slog.LevelDebug
	if !diff.Empty() {
		level = slog.LevelInfo
	}
	r.logger.Log(ctx, level, "sync complete",
		"root", r.Path,
		"created", counts[core.ChangeCreated],
		"modified", counts[core.ChangeModified],
		"deleted", counts[core.ChangeDeleted],
		"skipped", counts[core.ChangeSkipped],
		"failed", counts[core.ChangeFailed],
	)
	return report, nil
}

// Changes previews the next sync without applying it.
func (r *Repository) Changes(ctx context.Context) (core.DiffResult, error) {
	scan, err := r.scan(ctx)
	if err != nil {
		return core.DiffResult{}, err
	}
	return Diff(r.index, scan), nil
}

// Files lists the files under the root that the engine mirrors.
func (r *Repository) Files(ctx context.Context) ([]core.FileStat, error) {
	scan, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	return scan.Sorted(), nil
}

func isNotExist(err error) bool {
	return errors.Is(err, iofs.ErrNotExist)
}

var _ core.Repository = (*Repository)(nil)
