package platform

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/mirror/pkg/adapters/fs"
)

// ConfigFileName is looked up at the root when no config file is given.
const ConfigFileName = "mirror.yaml"

// FileConfig is the on-disk configuration. Zero values leave the default alone.
type FileConfig struct {
	SystemDir        string        `yaml:"system_dir,omitempty"`
	DefaultExtension string        `yaml:"default_extension,omitempty"`
	Strict           bool          `yaml:"strict,omitempty"`
	ReadOnly         bool          `yaml:"read_only,omitempty"`
	Ignore           []string      `yaml:"ignore,omitempty"`
	PathRules        []fs.PathRule `yaml:"path_rules,omitempty"`
	StatRetry        struct {
		Attempts int           `yaml:"attempts,omitempty"`
		Delay    time.Duration `yaml:"delay,omitempty"`
	} `yaml:"stat_retry,omitempty"`
}

// LoadConfigFile reads a config file. A missing file yields nil and no error.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Options turns the file into options. Explicit options applied after them win.
func (c *FileConfig) Options() []Option {
	var opts []Option
	if c.SystemDir != "" {
		opts = append(opts, WithSystemDir(c.SystemDir))
	}
	if c.DefaultExtension != "" {
		opts = append(opts, WithDefaultExtension(c.DefaultExtension))
	}
	if c.Strict {
		opts = append(opts, WithStrict(true))
	}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	if len(c.Ignore) > 0 {
		opts = append(opts, WithIgnore(c.Ignore...))
	}
	if len(c.PathRules) > 0 {
		opts = append(opts, WithPathRules(c.PathRules...))
	}
	if c.StatRetry.Attempts > 0 {
		opts = append(opts, WithStatRetry(fs.StatRetry{Attempts: c.StatRetry.Attempts, Delay: c.StatRetry.Delay}))
	}
	return opts
}

func configPath(root string, o *options) string {
	if o.configFile != "" {
		return o.configFile
	}
	return filepath.Join(root, ConfigFileName)
}
