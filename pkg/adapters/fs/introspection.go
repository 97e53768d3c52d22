package fs

import (
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/mirror/pkg/core"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path        string                  `json:"path"`
	SystemDir   string                  `json:"system_dir"`
	Records     int                     `json:"records"`
	DirtyIDs    []string                `json:"dirty,omitempty"`
	ReadOnly    bool                    `json:"read_only"`
	Strict      bool                    `json:"strict"`
	Serializers []string                `json:"serializers"`
	LastSync    *time.Time              `json:"last_sync,omitempty"`
	LastReport  map[core.ChangeKind]int `json:"last_report,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	var dirty []string
	r.index.Range(func(rec FileRecord) bool {
		if rec.Dirty {
			dirty = append(dirty, rec.DocumentID)
		}
		return true
	})

	return RepositoryState{
		Path:        r.Path,
		SystemDir:   r.config.SystemDir,
		Records:     r.index.Len(),
		DirtyIDs:    dirty,
		ReadOnly:    r.config.ReadOnly,
		Strict:      r.config.Strict,
		Serializers: r.serializers.Extensions(),
		LastSync:    r.lastSync,
		LastReport:  r.lastReport,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs-repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
