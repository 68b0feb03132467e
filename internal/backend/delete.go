package backend

import (
	"github.com/Eldar88/openldap/internal/entryfile"
	"github.com/Eldar88/openldap/internal/status"
)

// delete implements spec.md §4.4's delete: rmdir the sibling subtree
// directory first (NotEmpty -> NotAllowedOnNonLeaf, abort; NotFound ->
// proceed), then unlink the entry file (NotFound -> NoSuchObject).
func (s *state) delete(raw string) status.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm, serr := s.normalize(raw)
	if serr != nil {
		return serr.Code
	}
	targetFile, serr := s.path(norm)
	if serr != nil {
		return serr.Code
	}
	targetDir := subtreeDirOf(targetFile)

	if serr := entryfile.Rmdir(targetDir); serr != nil {
		return serr.Code
	}
	if serr := entryfile.Unlink(targetFile); serr != nil {
		return serr.Code
	}
	return status.Success
}
