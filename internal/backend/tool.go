package backend

import (
	"github.com/Eldar88/openldap/internal/dn"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/entryfile"
	"github.com/Eldar88/openldap/internal/enum"
	"github.com/Eldar88/openldap/internal/status"
)

// Cursor is the explicit batch-enumeration cookie spec.md §9 asks for
// ("model it as an explicit cursor object passed to the enumerator,
// not as ambient state, so the streaming and batch paths share one
// implementation"). first lazily fills buf with a full SUBTREE walk
// from the configured suffix; next/get then walk that buffer.
type Cursor struct {
	buf    *enum.Buffer
	filled bool
	pos    int // number of ids already handed out by next
}

func (s *state) toolOpen() *Cursor {
	return &Cursor{buf: enum.NewBuffer()}
}

// toolFirst lazily runs the full SUBTREE enumeration into c's buffer
// and rewinds the cursor; the ids themselves (starting at 1) are
// handed out by toolNext. If the suffix entry does not exist, the
// walk's code (NoSuchObject) is returned.
func (s *state) toolFirst(c *Cursor) status.Code {
	if c.filled {
		c.pos = 0
		return status.Success
	}
	p, serr := s.path(s.cfg.Suffix)
	if serr != nil {
		return serr.Code
	}
	if serr := enum.Walk(p, enum.ScopeSubtree, nil, true, c.buf, &s.serializerMu); serr != nil {
		return serr.Code
	}
	c.filled = true
	c.pos = 0
	return status.Success
}

// toolNext returns the next sequential id (1-based) until the buffer
// is exhausted.
func (s *state) toolNext(c *Cursor) (int, bool) {
	if c.pos >= len(c.buf.Items) {
		return 0, false
	}
	c.pos++
	return c.pos, true
}

// toolGet transfers ownership of the entry at id out of the buffer
// (ids are 1-based, matching toolFirst/toolNext).
func (s *state) toolGet(c *Cursor, id int) (*entry.Entry, bool) {
	if id < 1 || id > len(c.buf.Items) {
		return nil, false
	}
	e := c.buf.Items[id-1]
	c.buf.Items[id-1] = nil
	return e, e != nil
}

// toolImport runs the same parent-directory-bootstrapping logic as
// add, without acquiring the backend lock and without schema
// re-validation (spec.md §4.6: "suitable for offline builds from a
// known-good dump"). Callers are responsible for serializing their
// own import calls.
func (s *state) toolImport(e *entry.Entry) status.Code {
	norm, serr := s.normalize(e.Name)
	if serr != nil {
		return serr.Code
	}
	e.NormName = norm

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
