package mirror

import (
	"log/slog"

	"github.com/aretw0/mirror/internal/platform"
	"github.com/aretw0/mirror/pkg/adapters/fs"
	"github.com/aretw0/mirror/pkg/core"
	"github.com/aretw0/mirror/pkg/typed"
)

// --- Types ---

// PathRule routes new documents into a directory by ID pattern or tag.
type PathRule = fs.PathRule

// StatRetry bounds how long a write waits for the file's mtime to move.
type StatRetry = fs.StatRetry

// Serializer converts documents to and from one file format.
type Serializer = fs.Serializer

// --- Configuration ---

// Option configures a mirrored directory.
type Option = platform.Option

// ConfigFileName is the optional per-directory settings file.
const ConfigFileName = platform.ConfigFileName

// WithLogger sets the logger for the service and repository.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore replaces the in-memory store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithMustExist fails instead of creating a missing root.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithAutoInit creates the root and system directory on open.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithReadOnly refuses writes and deletes. Syncing from disk still works.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithStrict normalizes parsed metadata into JSON-compatible types.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithBootstrap controls whether New loads the directory before returning.
func WithBootstrap(enabled bool) Option {
	return platform.WithBootstrap(enabled)
}

// WithSystemDir names the hidden directory the scanner never enters.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithDefaultExtension sets the file format for new documents without one.
func WithDefaultExtension(ext string) Option {
	return platform.WithDefaultExtension(ext)
}

// WithIgnore adds doublestar patterns excluded from every scan.
func WithIgnore(patterns ...string) Option {
	return platform.WithIgnore(patterns...)
}

// WithPathRules adds placement rules for new documents.
func WithPathRules(rules ...PathRule) Option {
	return platform.WithPathRules(rules...)
}

func WithStatRetry(retry StatRetry) Option {
	return platform.WithStatRetry(retry)
}

// WithSerializer registers a format for an extension.
func WithSerializer(ext string, s Serializer) Option {
	return platform.WithSerializer(ext, s)
}

// WithConfigFile reads settings from path instead of <root>/mirror.yaml.
// An empty path disables the file.
func WithConfigFile(path string) Option {
	return platform.WithConfigFile(path)
}

// --- Factory ---

// New opens root and returns a service whose store mirrors it.
func New(root string, opts ...Option) (*core.Service, error) {
	return platform.New(root, opts...)
}

// Init prepares root for mirroring and returns its absolute path.
func Init(root string, opts ...Option) (string, error) {
	return platform.Init(root, opts...)
}

// FindRoot walks up from startDir to the nearest mirrored directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// DocumentModel is a document with metadata decoded into T.
type DocumentModel[T any] = typed.DocumentModel[T]

// TypedService decodes metadata into T on every read.
type TypedService[T any] = typed.Service[T]

// NewTyped wraps svc for typed access.
func NewTyped[T any](svc *core.Service) *TypedService[T] {
	return typed.NewService[T](svc)
}
