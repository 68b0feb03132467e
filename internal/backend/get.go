package backend

import (
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/status"
)

// getEntry implements spec.md §4.4's get_entry: encode the DN to a
// path, read the file, and (since the file only stores the leaf RDN)
// reconstruct the full DN from the path's parent chain — which here
// is simply "the DN the caller asked for", since encode/decode is
// keyed on the same normalized DN throughout this package.
func (s *state) getEntry(raw string) (*entry.Entry, status.Code) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	norm, serr := s.normalize(raw)
	if serr != nil {
		return nil, serr.Code
	}
	p, serr := s.path(norm)
	if serr != nil {
		return nil, serr.Code
	}
	e, serr := s.decodeAt(p, norm)
	if serr != nil {
		return nil, serr.Code
	}
	return e, status.Success
}
