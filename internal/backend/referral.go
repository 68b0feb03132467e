package backend

import (
	"github.com/Eldar88/openldap/internal/dn"
	"github.com/Eldar88/openldap/internal/entryfile"
	"github.com/Eldar88/openldap/internal/status"
)

// referralAttr is the attribute a referral entry's redirect targets
// are stored under.
const referralAttr = "ref"

// referralProbe implements spec.md §4.4's referral_probe: walk parent
// DNs outward from target until an existing entry is found or the
// suffix is crossed. If the found entry is a referral, return its
// referral values exactly as stored; they are not rewritten for the
// target DN. If no entry on the path to target exists and
// default referrals are configured, return those. Otherwise return
// success with no referrals, so the caller's own operation proceeds
// and produces NoSuchObject itself if appropriate.
func (s *state) referralProbe(raw string) ([]string, status.Code) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	norm, serr := s.normalize(raw)
	if serr != nil {
		return nil, serr.Code
	}

	cur := norm
	for {
		p, serr := s.path(cur)
		if serr != nil {
			return nil, serr.Code
		}
		exists, serr := entryfile.Exists(p)
		if serr != nil {
			return nil, serr.Code
		}
		if exists {
			e, serr := s.decodeAt(p, cur)
			if serr != nil {
				return nil, serr.Code
			}
			if e.HasValue("objectClass", "referral") {
				if refs := e.Attrs[referralAttr]; len(refs) > 0 {
					return refs, status.Referral
				}
			}
			return nil, status.Success
		}

		if cur == s.cfg.Suffix {
			break
		}
		parent, ok, err := dn.ParentOf(cur)
		if err != nil {
			return nil, status.Other
		}
		if !ok || !dn.HasSuffix(parent, s.cfg.Suffix) {
			break
		}
		cur = parent
	}

	if len(s.cfg.DefaultReferrals) > 0 {
		return s.cfg.DefaultReferrals, status.Referral
	}
	return nil, status.Success
}
