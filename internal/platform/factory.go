package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/mirror/pkg/adapters/fs"
	"github.com/aretw0/mirror/pkg/adapters/memory"
	"github.com/aretw0/mirror/pkg/core"
)

// resolve makes root absolute and layers options: defaults, then the config
// file, then the explicit options. List options (ignore, path rules) accumulate.
func resolve(root string, opts []Option) (string, *options, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if !o.useFile {
		return abs, o, nil
	}

	cfg, err := LoadConfigFile(configPath(abs, o))
	if err != nil {
		return "", nil, err
	}
	if cfg == nil {
		return abs, o, nil
	}

	o = defaultOptions()
	for _, opt := range cfg.Options() {
		opt(o)
	}
	for _, opt := range opts {
		opt(o)
	}
	return abs, o, nil
}

// Init prepares a root for mirroring: the directory itself and its system
// directory. It returns the absolute root.
func Init(root string, opts ...Option) (string, error) {
	abs, o, err := resolve(root, opts)
	if err != nil {
		return "", err
	}
	if o.readOnly {
		return "", core.ErrReadOnly
	}
	if o.mustExist {
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return "", fmt.Errorf("root path does not exist: %s", abs)
		}
	}
	if err := os.MkdirAll(filepath.Join(abs, o.systemDir), 0755); err != nil {
		return "", fmt.Errorf("failed to create system directory: %w", err)
	}
	return abs, nil
}

// New creates a service mirroring the directory at root.
//
//	svc, err := mirror.New("./wiki", mirror.WithIgnore("drafts/**"))
//
// Unless WithBootstrap(false) is given, every file is loaded into the store
// before New returns; files that fail to load are logged and retried on the
// next sync.
func New(root string, opts ...Option) (*core.Service, error) {
	abs, o, err := resolve(root, opts)
	if err != nil {
		return nil, err
	}

	if o.autoInit && !o.readOnly && !o.mustExist {
		if _, err := Init(abs, opts...); err != nil {
			return nil, err
		}
	}

	serializers := fs.DefaultSerializers(o.strict)
	for ext, s := range o.serializers {
		serializers[ext] = s
	}

	store := o.store
	if store == nil {
		store = memory.NewStore()
	}

	// The config file lives at the root but is not a document.
	ignore := append([]string{ConfigFileName}, o.ignore...)

	repo := fs.NewRepository(fs.Config{
		Path:        abs,
		Store:       store,
		Logger:      o.logger,
		SystemDir:   o.systemDir,
		Serializers: serializers,
		Strict:      o.strict,
		Ignore:      ignore,
		PathRules:   o.pathRules,
		DefaultExt:  o.defaultExt,
		StatRetry:   o.statRetry,
		MustExist:   o.mustExist || !o.autoInit || o.readOnly,
		ReadOnly:    o.readOnly,
	})

	ctx := context.Background()
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}

	service := core.NewService(repo, store, o.logger)

	if o.bootstrap {
		report, err := repo.Bootstrap(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", abs, err)
		}
		if failed := report.Failed(); len(failed) > 0 && o.logger != nil {
			for _, e := range failed {
				o.logger.Warn("file not loaded", "path", e.Path, "error", e.Err)
			}
		}
	}

	return service, nil
}
