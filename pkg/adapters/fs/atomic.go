package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mirror/pkg/core"
)

// TempFilePrefix names the scratch files used by atomic writes.
// The scanner never reports them.
const TempFilePrefix = "mirror-tmp-"

func isTempFile(name string) bool {
	return strings.HasPrefix(name, TempFilePrefix)
}

// writeFileAtomic replaces filename with data through a sibling temp file,
// so readers see either the old content or the new one.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return &core.IOError{Op: "create temp", Path: filename, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, perm)
	}
	if err != nil {
		return &core.IOError{Op: "write", Path: filename, Err: err}
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return &core.IOError{Op: "rename", Path: filename, Err: err}
	}
	committed = true
	return nil
}
