package platform

import (
	"log/slog"
	"strings"

	"github.com/aretw0/mirror/pkg/adapters/fs"
	"github.com/aretw0/mirror/pkg/core"
)

// options holds the internal configuration for the mirror service.
type options struct {
	logger      *slog.Logger
	store       core.Store
	mustExist   bool
	autoInit    bool
	readOnly    bool
	strict      bool
	bootstrap   bool
	systemDir   string
	defaultExt  string
	ignore      []string
	pathRules   []fs.PathRule
	statRetry   fs.StatRetry
	serializers map[string]fs.Serializer
	configFile  string
	useFile     bool
}

// Option defines a functional option for configuring the service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		autoInit:    true,
		bootstrap:   true,
		useFile:     true,
		systemDir:   fs.DefaultSystemDir,
		serializers: make(map[string]fs.Serializer),
	}
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore mirrors an existing document store instead of a fresh in-memory one.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithMustExist ensures the root directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithAutoInit creates the root and its system directory when missing.
// Enabled by default.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
//  1. Writes and deletes return core.ErrReadOnly.
//  2. Nothing is created on disk during initialization.
//  3. Sync still loads external changes into the store.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithStrict enables strict mode for all default serializers.
// When enabled, numbers in JSON/YAML/Markdown will be parsed as json.Number (string based)
// to preserve precision of large integers.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithBootstrap controls whether New loads every file into the store.
// Enabled by default; disable it to preview or run the first sync yourself.
func WithBootstrap(enabled bool) Option {
	return func(o *options) {
		o.bootstrap = enabled
	}
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".mirror").
func WithSystemDir(name string) Option {
	return func(o *options) {
		if name != "" {
			o.systemDir = name
		}
	}
}

// WithDefaultExtension sets the file extension given to new documents.
func WithDefaultExtension(ext string) Option {
	return func(o *options) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.defaultExt = ext
	}
}

// WithIgnore adds doublestar patterns, relative to the root, that are never mirrored.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.ignore = append(o.ignore, patterns...)
	}
}

// WithPathRules routes new documents into directories. First match wins.
func WithPathRules(rules ...fs.PathRule) Option {
	return func(o *options) {
		o.pathRules = append(o.pathRules, rules...)
	}
}

// WithStatRetry bounds how long a write waits to observe a new modification time.
func WithStatRetry(retry fs.StatRetry) Option {
	return func(o *options) {
		o.statRetry = retry
	}
}

// WithSerializer registers a custom serializer for a specific extension.
func WithSerializer(ext string, s fs.Serializer) Option {
	return func(o *options) {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.serializers[strings.ToLower(ext)] = s
	}
}

// WithConfigFile reads settings from path instead of <root>/mirror.yaml.
// An empty path disables the config file.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
		o.useFile = path != ""
	}
}
