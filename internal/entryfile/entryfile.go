// Package entryfile implements the Entry File I/O component of
// spec.md §4.2: read-file-into-buffer, write-file-atomically-via-
// temp-and-rename, and a stat-only existence probe. This is the
// teacher's writeFileAtomic (internal/diskimage/atomic.go) and
// fsops.Stat (internal/fsops/fsops.go) generalized from disk-image
// payloads to arbitrary entry bytes, and reporting spec.md's own
// result-code taxonomy instead of raw errors.
package entryfile

import (
	"os"
	"path/filepath"

	"github.com/Eldar88/openldap/internal/status"
)

// ReadFile reads the full contents of the entry file at path.
// Returns status.NoSuchObject if the file is absent, status.Other for
// any other I/O error.
func ReadFile(path string) ([]byte, *status.Error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, status.FromPathError(err, status.Other)
	}
	return b, nil
}

// Exists is a stat-only existence probe.
func Exists(path string) (bool, *status.Error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, status.Wrap(status.Other, err, "stat")
}

// WriteAtomic writes data to path so that no partial write is ever
// observed (spec.md P3): it creates a uniquely named temp file in
// path's directory, writes and fsyncs it, closes it, then renames it
// over path. The temp file is unlinked on any failure before success
// is declared, and path's prior contents (or absence) are left
// untouched on error.
func WriteAtomic(path string, data []byte, perm os.FileMode) *status.Error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ldif-*.tmp")
	if err != nil {
		return status.Wrap(status.Other, err, "create temp file")
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return status.Wrap(status.Other, err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		return status.Wrap(status.Other, err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return status.Wrap(status.Other, err, "close temp file")
	}
	_ = os.Chmod(tmpName, perm)

	if err := os.Rename(tmpName, path); err != nil {
		return status.Wrap(status.Other, err, "rename temp file into place")
	}
	ok = true
	return nil
}

// EnsureDir creates dir (and any missing parents) with the given
// permissions, matching mkdir's "already exists" tolerance.
func EnsureDir(dir string, perm os.FileMode) *status.Error {
	if err := os.MkdirAll(dir, perm); err != nil {
		return status.FromPathError(err, status.Other)
	}
	return nil
}

// Unlink removes the entry file at path. Returns status.NoSuchObject
// if absent.
func Unlink(path string) *status.Error {
	if err := os.Remove(path); err != nil {
		return status.FromPathError(err, status.Other)
	}
	return nil
}

// Rmdir removes dir only if empty. Returns status.NotAllowedOnNonLeaf
// if non-empty, nil if dir did not exist (spec.md §4.4: "NotFound ->
// proceed, no children existed").
func Rmdir(dir string) *status.Error {
	err := os.Remove(dir)
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	return status.FromPathError(err, status.NotAllowedOnNonLeaf)
}
