package backend

import (
	"github.com/Eldar88/openldap/internal/enum"
	"github.com/Eldar88/openldap/internal/status"
)

// SearchRequest is a single search operation's parameters, per spec.md
// §4.4's search: a base DN, a scope, an optional filter, and the
// manageDSAIT flag governing whether referral entries are surfaced as
// ordinary entries or flagged to the sink (spec.md §4.3).
type SearchRequest struct {
	Base        string
	Scope       enum.Scope
	Filter      enum.Filter
	ManageDSAIT bool
}

// search implements spec.md §4.4's search: resolve the base DN to its
// encoded path, then walk it under a shared lock (spec.md §4.5:
// search never blocks other readers, only the writer).
func (s *state) search(req SearchRequest, sink enum.StreamSink) status.Code {
	s.mu.RLock()
	defer s.mu.RUnlock()

	norm, serr := s.normalize(req.Base)
	if serr != nil {
		return serr.Code
	}
	p, serr := s.path(norm)
	if serr != nil {
		return serr.Code
	}
	if serr := enum.Walk(p, req.Scope, req.Filter, req.ManageDSAIT, sink, &s.serializerMu); serr != nil {
		return serr.Code
	}
	return status.Success
}
