package backend

import (
	"github.com/Eldar88/openldap/internal/dn"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/entryfile"
	"github.com/Eldar88/openldap/internal/status"
)

// add implements spec.md §4.4's add: validate schema, encode the
// path, bootstrap the parent subtree directory if the parent entry
// exists but has no children yet (P7: fail NoSuchObject and create
// nothing if the parent entry itself doesn't exist), then write the
// new entry file atomically — failing AlreadyExists if it's already
// there.
func (s *state) add(e *entry.Entry) status.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm, serr := s.normalize(e.Name)
	if serr != nil {
		return serr.Code
	}
	e.NormName = norm

	if serr := s.schemaValidator(e); serr != nil {
		return serr.Code
	}

	targetFile, serr := s.path(norm)
	if serr != nil {
		return serr.Code
	}

	if norm != s.cfg.Suffix {
		if code := s.ensureParentReady(norm); code != status.Success {
			return code
		}
	}

	alreadyExists, serr := entryfile.Exists(targetFile)
	if serr != nil {
		return serr.Code
	}
	if alreadyExists {
		return status.AlreadyExists
	}

	leaf, err := dn.LeafRDN(norm)
	if err != nil {
		return status.Other
	}
	data := s.encodeLeaf(e, leaf)
	if serr := entryfile.WriteAtomic(targetFile, data, 0o640); serr != nil {
		return serr.Code
	}
	return status.Success
}

// ensureParentReady implements the "parent-before-child create" rule
// (P7): the parent's subtree directory must exist before norm's entry
// file can be written. If the directory is missing but the parent's
// own entry file exists, the directory is created (mode 0750). If
// neither exists, the add fails with NoSuchObject and nothing is
// created.
func (s *state) ensureParentReady(norm string) status.Code {
	parentNorm, ok, err := dn.ParentOf(norm)
	if err != nil {
		return status.Other
	}
	if !ok {
		parentNorm = s.cfg.Suffix
	}
	parentPath, serr := s.path(parentNorm)
	if serr != nil {
		return serr.Code
	}
	parentDir := subtreeDirOf(parentPath)

	dirExists, serr := entryfile.Exists(parentDir)
	if serr != nil {
		return serr.Code
	}
	if dirExists {
		return status.Success
	}

	parentFileExists, serr := entryfile.Exists(parentPath)
	if serr != nil {
		return serr.Code
	}
	if !parentFileExists {
		return status.NoSuchObject
	}
	if serr := entryfile.EnsureDir(parentDir, 0o750); serr != nil {
		return serr.Code
	}
	return status.Success
}
