package backend

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Eldar88/openldap/internal/status"
)

// PasswordAttr is the attribute name Bind reads the stored credential
// from, per spec.md §4.4's bind description ("compares the presented
// credential against the entry's password attribute via the injected
// verifier").
const PasswordAttr = "userPassword"

// BcryptVerifier is the default PasswordVerifier: stored is treated as
// a bcrypt hash and compared against candidate. Any stored value that
// isn't a valid bcrypt hash never matches.
func BcryptVerifier(stored string, candidate []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), candidate) == nil
}

// bind implements spec.md §4.4's bind: look up the entry, then ask the
// injected PasswordVerifier to check the presented credential against
// every value of its password attribute. An entry with no password
// attribute can never successfully bind (InvalidCredentials).
func (s *state) bind(raw string, password []byte) status.Code {
	s.mu.RLock()
	defer s.mu.RUnlock()

	norm, serr := s.normalize(raw)
	if serr != nil {
		return serr.Code
	}
	p, serr := s.path(norm)
	if serr != nil {
		return serr.Code
	}
	e, serr := s.decodeAt(p, norm)
	if serr != nil {
		// spec.md §4.4: a nonexistent entry must not be distinguishable
		// from a wrong password, so a lookup miss collapses into
		// InvalidCredentials rather than leaking NoSuchObject — mirrors
		// the original ldif_back_bind's handling of a failed get_entry.
		if serr.Code == status.NoSuchObject {
			return status.InvalidCredentials
		}
		return serr.Code
	}

	stored := e.Attrs[PasswordAttr]
	if len(stored) == 0 {
		return status.InvalidCredentials
	}
	for _, candidate := range stored {
		if s.passwordVerifier(candidate, password) {
			return status.Success
		}
	}
	return status.InvalidCredentials
}
